package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/pousadahub/ordering-backend/internal/cart"
	"github.com/pousadahub/ordering-backend/internal/guest"
	"github.com/pousadahub/ordering-backend/internal/ordering"
	"github.com/pousadahub/ordering-backend/internal/pricing"
	"github.com/pousadahub/ordering-backend/pkg/db/models"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/geo"
	"github.com/pousadahub/ordering-backend/pkg/logger"
)

type cartStore interface {
	Get(ctx context.Context, deviceID string) (cart.Cart, error)
	Clear(ctx context.Context, deviceID string) error
}

type quoter interface {
	Quote(ctx context.Context, c cart.Cart, oc ordering.Context, dest *geo.Point) (pricing.OrderQuote, error)
}

type contextReader interface {
	Current(ctx context.Context, id guest.Identity) (ordering.Resolution, error)
}

type orderWriter interface {
	Create(ctx context.Context, order *models.Order) error
}

// SubmitInput is the checkout payload.
type SubmitInput struct {
	PaymentMethod string     `json:"payment_method" validate:"required"`
	Destination   *geo.Point `json:"destination,omitempty"`
}

// Service turns a priced cart into a persisted order. Submission is the only
// write path; everything else about an order is immutable once stored.
type Service struct {
	carts    cartStore
	pricer   quoter
	resolver contextReader
	repo     orderWriter
	logg     *logger.Logger
}

func NewService(carts cartStore, pricer quoter, resolver contextReader, repo orderWriter, logg *logger.Logger) (*Service, error) {
	if carts == nil || pricer == nil || resolver == nil || repo == nil {
		return nil, fmt.Errorf("orders service requires cart store, pricer, resolver and repository")
	}
	return &Service{carts: carts, pricer: pricer, resolver: resolver, repo: repo, logg: logg}, nil
}

// Submit prices the guest's cart under their current context, persists the
// order snapshot and clears the cart.
func (s *Service) Submit(ctx context.Context, id guest.Identity, input SubmitInput) (models.Order, error) {
	if !id.Valid() {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "guest identity is required")
	}
	if input.PaymentMethod == "" {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	res, err := s.resolver.Current(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !res.Context.IsResolved() {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeConflict, "ordering context must be resolved before checkout")
	}

	c, err := s.carts.Get(ctx, id.DeviceID)
	if err != nil {
		return models.Order{}, err
	}
	if c.IsEmpty() {
		return models.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	if res.Context.IsAtPartner() {
		if err := checkPaymentMethod(*res.Context.Partner, input.PaymentMethod); err != nil {
			return models.Order{}, err
		}
	}

	quote, err := s.pricer.Quote(ctx, c, res.Context, input.Destination)
	if err != nil {
		return models.Order{}, err
	}

	order, err := buildOrder(id, c, res.Context, quote, input)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.repo.Create(ctx, &order); err != nil {
		return models.Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	if err := s.carts.Clear(ctx, id.DeviceID); err != nil {
		// The order is already committed; a stale cart is recoverable, a
		// duplicate submission is not.
		if s.logg != nil {
			s.logg.Error(ctx, "clearing cart after submission", err)
		}
	}

	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "order_id", order.ID.String())
		s.logg.Info(ctx, "order submitted")
	}
	return order, nil
}

func checkPaymentMethod(partner models.PartnerLocation, method string) error {
	if len(partner.PaymentMethods) == 0 {
		return nil
	}
	if slices.Contains(partner.PaymentMethods, method) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment method %q is not accepted here", method))
}

func buildOrder(id guest.Identity, c cart.Cart, oc ordering.Context, quote pricing.OrderQuote, input SubmitInput) (models.Order, error) {
	order := models.Order{
		ID:            uuid.New(),
		GuestID:       id.DeviceID,
		ContextKind:   string(oc.Kind),
		ItemsTotal:    quote.ItemsTotal,
		DeliveryFee:   quote.DeliveryFee,
		GrandTotal:    quote.GrandTotal,
		DistanceKm:    quote.DistanceKm,
		PaymentMethod: &input.PaymentMethod,
	}
	if oc.IsAtPartner() {
		order.PartnerID = &oc.Partner.ID
		order.PartnerName = &oc.Partner.Name
	}
	if input.Destination != nil {
		order.DeliveryLat = &input.Destination.Lat
		order.DeliveryLng = &input.Destination.Lng
	}

	for _, line := range c.Lines {
		addOns, err := json.Marshal(line.AddOns)
		if err != nil {
			return models.Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode add-ons")
		}
		if len(line.AddOns) == 0 {
			addOns = nil
		}
		order.Lines = append(order.Lines, models.OrderLine{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Notes:       line.Notes,
			AddOns:      addOns,
			Subtotal:    line.Subtotal(),
		})
	}
	return order, nil
}
