package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pousadahub/ordering-backend/internal/selection"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/kv"
	"github.com/pousadahub/ordering-backend/pkg/logger"
	"github.com/pousadahub/ordering-backend/pkg/metrics"
)

const cartKey = "cart"

// LineInput is the guest-supplied payload for adding a line.
type LineInput struct {
	ProductID   uuid.UUID        `json:"product_id" validate:"required"`
	ProductName string           `json:"product_name" validate:"required"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Quantity    int              `json:"quantity"`
	Notes       string           `json:"notes" validate:"max=500"`
	AddOns      []AddOnSelection `json:"add_ons" validate:"dive"`
}

// Service owns the persisted cart for each guest device. Every mutation is
// written through to the durable kv scope before it is reported back.
type Service struct {
	store   *selection.Store
	metrics *metrics.OrderingMetrics
	logg    *logger.Logger
}

func NewService(store *selection.Store, m *metrics.OrderingMetrics, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("selection store required")
	}
	return &Service{store: store, metrics: m, logg: logg}, nil
}

// Get returns the guest's cart, empty when nothing is stored.
func (s *Service) Get(ctx context.Context, deviceID string) (Cart, error) {
	var c Cart
	if _, err := s.store.Get(ctx, kv.ScopeDurable, s.key(deviceID), &c); err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

// AddLine appends a new line with a fresh line ID. Quantities below one are
// clamped to one; negative priced payloads are rejected.
func (s *Service) AddLine(ctx context.Context, deviceID string, input LineInput) (Line, error) {
	if input.UnitPrice.IsNegative() {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	for _, a := range input.AddOns {
		if a.UnitPrice.IsNegative() {
			return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "add-on price cannot be negative")
		}
		if a.Quantity < 1 {
			return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "add-on quantity must be at least 1")
		}
	}

	qty := input.Quantity
	if qty < 1 {
		qty = 1
	}
	line := Line{
		ID:          uuid.New(),
		ProductID:   input.ProductID,
		ProductName: input.ProductName,
		UnitPrice:   input.UnitPrice,
		Quantity:    qty,
		Notes:       input.Notes,
		AddOns:      input.AddOns,
	}

	c, err := s.Get(ctx, deviceID)
	if err != nil {
		return Line{}, err
	}
	c.Lines = append(c.Lines, line)
	if err := s.save(ctx, deviceID, c, "add_line"); err != nil {
		return Line{}, err
	}
	return line, nil
}

// AdjustQuantity applies a delta to the line quantity. A resulting quantity of
// zero or less removes the line.
func (s *Service) AdjustQuantity(ctx context.Context, deviceID string, lineID uuid.UUID, delta int) (Cart, error) {
	c, err := s.Get(ctx, deviceID)
	if err != nil {
		return Cart{}, err
	}
	i, ok := c.line(lineID)
	if !ok {
		return Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	c.Lines[i].Quantity += delta
	if c.Lines[i].Quantity <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
	if err := s.save(ctx, deviceID, c, "adjust_quantity"); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// RemoveLine drops the line; removing an absent line is a no-op.
func (s *Service) RemoveLine(ctx context.Context, deviceID string, lineID uuid.UUID) (Cart, error) {
	c, err := s.Get(ctx, deviceID)
	if err != nil {
		return Cart{}, err
	}
	i, ok := c.line(lineID)
	if !ok {
		return c, nil
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	if err := s.save(ctx, deviceID, c, "remove_line"); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, deviceID string) error {
	if err := s.store.Drop(ctx, kv.ScopeDurable, s.key(deviceID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.metrics.IncCartMutation("clear")
	return nil
}

func (s *Service) save(ctx context.Context, deviceID string, c Cart, op string) error {
	if err := s.store.Put(ctx, kv.ScopeDurable, s.key(deviceID), c); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	s.metrics.IncCartMutation(op)
	return nil
}

func (s *Service) key(deviceID string) string {
	return deviceID + ":" + cartKey
}
