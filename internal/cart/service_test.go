package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pousadahub/ordering-backend/internal/selection"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/kv"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(selection.NewStore(kv.NewMemoryStore(), nil), nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceAddLineMintsFreshIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t)
	device := uuid.NewString()
	input := LineInput{ProductID: uuid.New(), ProductName: "Acai 300ml", UnitPrice: dec("12.00"), Quantity: 1}

	first, err := svc.AddLine(ctx, device, input)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	second, err := svc.AddLine(ctx, device, input)
	if err != nil {
		t.Fatalf("AddLine again: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("adding the same product twice must produce distinct lines")
	}

	c, err := svc.Get(ctx, device)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(c.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.Lines))
	}
}

func TestServiceAddLineClampsQuantity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t)
	device := uuid.NewString()

	line, err := svc.AddLine(ctx, device, LineInput{ProductID: uuid.New(), ProductName: "Suco", UnitPrice: dec("7.00"), Quantity: -3})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if line.Quantity != 1 {
		t.Fatalf("quantity should clamp to 1, got %d", line.Quantity)
	}
}

func TestServiceAddLineRejectsNegativePrices(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t)
	device := uuid.NewString()

	_, err := svc.AddLine(ctx, device, LineInput{ProductID: uuid.New(), ProductName: "Suco", UnitPrice: dec("-1.00")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestServiceAdjustQuantity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t)
	device := uuid.NewString()

	line, err := svc.AddLine(ctx, device, LineInput{ProductID: uuid.New(), ProductName: "Acai", UnitPrice: dec("18.00"), Quantity: 2})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	c, err := svc.AdjustQuantity(ctx, device, line.ID, 3)
	if err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	if c.Lines[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", c.Lines[0].Quantity)
	}

	c, err = svc.AdjustQuantity(ctx, device, line.ID, -5)
	if err != nil {
		t.Fatalf("AdjustQuantity to zero: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("dropping to zero must remove the line, got %+v", c.Lines)
	}

	_, err = svc.AdjustQuantity(ctx, device, line.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for removed line, got %v", err)
	}
}

func TestServiceRemoveLineAbsentIsNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t)
	device := uuid.NewString()

	line, err := svc.AddLine(ctx, device, LineInput{ProductID: uuid.New(), ProductName: "Acai", UnitPrice: dec("18.00"), Quantity: 1})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	c, err := svc.RemoveLine(ctx, device, uuid.New())
	if err != nil {
		t.Fatalf("RemoveLine absent: %v", err)
	}
	if len(c.Lines) != 1 {
		t.Fatalf("absent removal must not change the cart, got %d lines", len(c.Lines))
	}

	c, err = svc.RemoveLine(ctx, device, line.ID)
	if err != nil {
		t.Fatalf("RemoveLine: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", c.Lines)
	}
}

func TestServicePersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := selection.NewStore(kv.NewMemoryStore(), nil)
	first, err := NewService(store, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	device := uuid.NewString()
	if _, err := first.AddLine(ctx, device, LineInput{ProductID: uuid.New(), ProductName: "Acai", UnitPrice: dec("18.00"), Quantity: 2}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	second, err := NewService(store, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c, err := second.Get(ctx, device)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.ItemCount() != 2 {
		t.Fatalf("cart should survive service restarts, got %d items", c.ItemCount())
	}
}

func TestServiceClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t)
	device := uuid.NewString()
	if _, err := svc.AddLine(ctx, device, LineInput{ProductID: uuid.New(), ProductName: "Acai", UnitPrice: dec("18.00")}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := svc.Clear(ctx, device); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	c, err := svc.Get(ctx, device)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart after clear, got %+v", c.Lines)
	}
}
