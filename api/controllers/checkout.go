package controllers

import (
	"net/http"

	"github.com/pousadahub/ordering-backend/api/responses"
	"github.com/pousadahub/ordering-backend/api/validators"
	cartsvc "github.com/pousadahub/ordering-backend/internal/cart"
	"github.com/pousadahub/ordering-backend/internal/ordering"
	"github.com/pousadahub/ordering-backend/internal/pricing"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/geo"
	"github.com/pousadahub/ordering-backend/pkg/logger"
)

type quoteRequest struct {
	Destination *geo.Point `json:"destination"`
}

type quotePayload struct {
	ItemsTotal  string   `json:"items_total"`
	DeliveryFee string   `json:"delivery_fee"`
	GrandTotal  string   `json:"grand_total"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
}

func newQuotePayload(q pricing.OrderQuote) quotePayload {
	return quotePayload{
		ItemsTotal:  q.ItemsTotal.StringFixed(2),
		DeliveryFee: q.DeliveryFee.StringFixed(2),
		GrandTotal:  q.GrandTotal.StringFixed(2),
		DistanceKm:  q.DistanceKm,
	}
}

// CheckoutQuote prices the guest's cart under their current context without
// committing anything.
func CheckoutQuote(carts *cartsvc.Service, engine *pricing.Engine, resolver *ordering.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := resolver.Current(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !res.Context.IsResolved() {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeConflict, "ordering context must be resolved before quoting"))
			return
		}

		c, err := carts.Get(r.Context(), id.DeviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := engine.Quote(r.Context(), c, res.Context, payload.Destination)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuotePayload(quote))
	}
}
