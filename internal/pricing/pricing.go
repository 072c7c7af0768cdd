package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pousadahub/ordering-backend/internal/cart"
	"github.com/pousadahub/ordering-backend/internal/ordering"
	"github.com/pousadahub/ordering-backend/pkg/db/models"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/geo"
	"github.com/pousadahub/ordering-backend/pkg/metrics"
)

// OrderQuote is the fully priced checkout summary. Amounts are rounded to
// cents; DistanceKm is set only when a delivery fee was charged.
type OrderQuote struct {
	ItemsTotal  decimal.Decimal `json:"items_total"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	DistanceKm  *float64        `json:"distance_km,omitempty"`
}

type headquartersLookup interface {
	Headquarters() (models.PartnerLocation, bool)
}

// Engine prices carts against a resolved ordering context. It never mutates
// the cart or the context.
type Engine struct {
	directory headquartersLookup
	metrics   *metrics.OrderingMetrics
}

func NewEngine(dir headquartersLookup, m *metrics.OrderingMetrics) (*Engine, error) {
	if dir == nil {
		return nil, fmt.Errorf("partner directory required")
	}
	return &Engine{directory: dir, metrics: m}, nil
}

// Quote prices the cart under the given context. A delivery fee applies when
// the context is delivery mode, or when it is at a partner that offers
// delivery and a destination was supplied. Missing coordinates where a fee
// applies are reported as an insufficient-pricing error, never guessed at.
func (e *Engine) Quote(_ context.Context, c cart.Cart, oc ordering.Context, dest *geo.Point) (OrderQuote, error) {
	itemsTotal := c.Total()
	quote := OrderQuote{
		ItemsTotal:  itemsTotal,
		DeliveryFee: decimal.Zero,
		GrandTotal:  itemsTotal,
	}

	origin, tariff, applies, err := e.feeBasis(oc, dest)
	if err != nil {
		e.metrics.IncQuote("insufficient_data")
		return OrderQuote{}, err
	}
	if !applies {
		e.metrics.IncQuote("no_fee")
		return quote, nil
	}

	if dest == nil {
		e.metrics.IncQuote("insufficient_data")
		return OrderQuote{}, pkgerrors.New(pkgerrors.CodeInsufficientPricing, "delivery destination coordinates are required")
	}
	if !origin.HasCoordinates() {
		e.metrics.IncQuote("insufficient_data")
		return OrderQuote{}, pkgerrors.New(pkgerrors.CodeInsufficientPricing, "delivery origin has no coordinates")
	}

	distance := geo.DistanceKm(geo.Point{Lat: *origin.Lat, Lng: *origin.Lng}, *dest)
	fee, err := geo.DeliveryFee(distance, tariff.BaseDeliveryFee, tariff.FeePerKm)
	if err != nil {
		e.metrics.IncQuote("insufficient_data")
		return OrderQuote{}, pkgerrors.Wrap(pkgerrors.CodeInsufficientPricing, err, "delivery distance could not be computed")
	}

	quote.DeliveryFee = fee
	quote.GrandTotal = itemsTotal.Add(fee).Round(2)
	quote.DistanceKm = &distance

	e.metrics.IncQuote("priced")
	return quote, nil
}

// feeBasis resolves the delivery origin and tariff for the context. In
// delivery mode fees always apply and the headquarters location is the
// origin; at a partner they apply only when the partner offers delivery and
// the guest asked for a destination quote.
func (e *Engine) feeBasis(oc ordering.Context, dest *geo.Point) (models.PartnerLocation, models.PartnerLocation, bool, error) {
	switch {
	case oc.IsDelivery():
		hq, ok := e.directory.Headquarters()
		if !ok {
			return models.PartnerLocation{}, models.PartnerLocation{}, false,
				pkgerrors.New(pkgerrors.CodeInsufficientPricing, "no headquarters location configured for delivery")
		}
		return hq, hq, true, nil
	case oc.IsAtPartner():
		partner := *oc.Partner
		if partner.DeliveryRadius != nil && dest != nil {
			return partner, partner, true, nil
		}
		return models.PartnerLocation{}, models.PartnerLocation{}, false, nil
	default:
		return models.PartnerLocation{}, models.PartnerLocation{}, false, nil
	}
}
