package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pousadahub/ordering-backend/internal/cart"
	"github.com/pousadahub/ordering-backend/internal/guest"
	"github.com/pousadahub/ordering-backend/internal/ordering"
	"github.com/pousadahub/ordering-backend/internal/pricing"
	"github.com/pousadahub/ordering-backend/pkg/db/models"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/geo"
)

type stubCarts struct {
	cart    cart.Cart
	cleared bool
}

func (s *stubCarts) Get(context.Context, string) (cart.Cart, error) { return s.cart, nil }
func (s *stubCarts) Clear(context.Context, string) error {
	s.cleared = true
	return nil
}

type stubQuoter struct {
	quote pricing.OrderQuote
	err   error
}

func (s stubQuoter) Quote(context.Context, cart.Cart, ordering.Context, *geo.Point) (pricing.OrderQuote, error) {
	return s.quote, s.err
}

type stubResolver struct {
	res ordering.Resolution
}

func (s stubResolver) Current(context.Context, guest.Identity) (ordering.Resolution, error) {
	return s.res, nil
}

type stubRepo struct {
	created *models.Order
}

func (s *stubRepo) Create(_ context.Context, order *models.Order) error {
	s.created = order
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func filledCart() cart.Cart {
	return cart.Cart{Lines: []cart.Line{
		{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Acai 500ml", UnitPrice: dec("18.00"), Quantity: 2},
	}}
}

func testIdentity() guest.Identity {
	return guest.Identity{SessionID: uuid.NewString(), DeviceID: uuid.NewString()}
}

func resolvedAt(partner models.PartnerLocation) ordering.Resolution {
	return ordering.Resolution{Context: ordering.AtPartner(partner)}
}

func TestSubmitPersistsOrderAndClearsCart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	partner := models.PartnerLocation{ID: uuid.New(), Name: "Adega Acai"}
	carts := &stubCarts{cart: filledCart()}
	repo := &stubRepo{}
	distance := 1.11
	quote := pricing.OrderQuote{
		ItemsTotal:  dec("36.00"),
		DeliveryFee: dec("7.22"),
		GrandTotal:  dec("43.22"),
		DistanceKm:  &distance,
	}

	svc, err := NewService(carts, stubQuoter{quote: quote}, stubResolver{res: resolvedAt(partner)}, repo, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	id := testIdentity()
	order, err := svc.Submit(ctx, id, SubmitInput{PaymentMethod: "pix", Destination: &geo.Point{Lat: 1.01, Lng: 1.0}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if repo.created == nil {
		t.Fatal("order was not persisted")
	}
	if !carts.cleared {
		t.Fatal("cart was not cleared after submission")
	}
	if order.GuestID != id.DeviceID {
		t.Fatalf("guest id: got %s, want %s", order.GuestID, id.DeviceID)
	}
	if order.PartnerID == nil || *order.PartnerID != partner.ID {
		t.Fatalf("partner id not captured: %+v", order.PartnerID)
	}
	if !order.GrandTotal.Equal(dec("43.22")) {
		t.Fatalf("grand total: got %s", order.GrandTotal)
	}
	if order.DistanceKm == nil || *order.DistanceKm != 1.11 {
		t.Fatalf("distance: got %v", order.DistanceKm)
	}
	if len(order.Lines) != 1 || !order.Lines[0].Subtotal.Equal(dec("36.00")) {
		t.Fatalf("line snapshot wrong: %+v", order.Lines)
	}
}

func TestSubmitRejectsUnresolvedContext(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubCarts{cart: filledCart()}, stubQuoter{}, stubResolver{res: ordering.Resolution{Context: ordering.Unresolved()}}, &stubRepo{}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Submit(context.Background(), testIdentity(), SubmitInput{PaymentMethod: "pix"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	partner := models.PartnerLocation{ID: uuid.New(), Name: "Adega Acai"}
	svc, err := NewService(&stubCarts{}, stubQuoter{}, stubResolver{res: resolvedAt(partner)}, &stubRepo{}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Submit(context.Background(), testIdentity(), SubmitInput{PaymentMethod: "pix"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestSubmitChecksPartnerPaymentMethods(t *testing.T) {
	t.Parallel()

	partner := models.PartnerLocation{
		ID:             uuid.New(),
		Name:           "Adega Acai",
		PaymentMethods: []string{"pix", "cash"},
	}
	repo := &stubRepo{}
	svc, err := NewService(&stubCarts{cart: filledCart()}, stubQuoter{quote: pricing.OrderQuote{ItemsTotal: dec("36.00"), GrandTotal: dec("36.00")}}, stubResolver{res: resolvedAt(partner)}, repo, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Submit(context.Background(), testIdentity(), SubmitInput{PaymentMethod: "credit_card"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for rejected method, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("rejected submission must not persist")
	}

	if _, err := svc.Submit(context.Background(), testIdentity(), SubmitInput{PaymentMethod: "pix"}); err != nil {
		t.Fatalf("accepted method failed: %v", err)
	}
}

func TestSubmitPropagatesPricingErrors(t *testing.T) {
	t.Parallel()

	quoteErr := pkgerrors.New(pkgerrors.CodeInsufficientPricing, "delivery destination coordinates are required")
	svc, err := NewService(&stubCarts{cart: filledCart()}, stubQuoter{err: quoteErr}, stubResolver{res: ordering.Resolution{Context: ordering.Delivery()}}, &stubRepo{}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Submit(context.Background(), testIdentity(), SubmitInput{PaymentMethod: "pix"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientPricing {
		t.Fatalf("expected INSUFFICIENT_PRICING_DATA, got %v", err)
	}
}
