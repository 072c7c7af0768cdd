package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pousadahub/ordering-backend/api/responses"
	"github.com/pousadahub/ordering-backend/api/validators"
	cartsvc "github.com/pousadahub/ordering-backend/internal/cart"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/logger"
)

type cartPayload struct {
	Lines     []cartLinePayload `json:"lines"`
	Total     string            `json:"total"`
	ItemCount int               `json:"item_count"`
}

type cartLinePayload struct {
	cartsvc.Line
	Subtotal string `json:"subtotal"`
}

func newCartPayload(c cartsvc.Cart) cartPayload {
	out := cartPayload{
		Lines:     make([]cartLinePayload, 0, len(c.Lines)),
		Total:     c.Total().StringFixed(2),
		ItemCount: c.ItemCount(),
	}
	for _, line := range c.Lines {
		out.Lines = append(out.Lines, cartLinePayload{Line: line, Subtotal: line.Subtotal().StringFixed(2)})
	}
	return out
}

type adjustQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CartShow returns the guest's cart with derived totals.
func CartShow(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Get(r.Context(), id.DeviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(c))
	}
}

// CartAddLine appends a line to the cart.
func CartAddLine(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartsvc.LineInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.AddLine(r.Context(), id.DeviceID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cartLinePayload{Line: line, Subtotal: line.Subtotal().StringFixed(2)})
	}
}

// CartAdjustLine applies a quantity delta; reaching zero removes the line.
func CartAdjustLine(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := lineIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.AdjustQuantity(r.Context(), id.DeviceID, lineID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(c))
	}
}

// CartRemoveLine drops a line; removing an absent line succeeds.
func CartRemoveLine(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := lineIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.RemoveLine(r.Context(), id.DeviceID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(c))
	}
}

// CartClear empties the cart.
func CartClear(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), id.DeviceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(cartsvc.Cart{}))
	}
}

func lineIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "lineId")
	lineID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line id")
	}
	return lineID, nil
}
