package controllers

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/pousadahub/ordering-backend/api/responses"
	"github.com/pousadahub/ordering-backend/api/validators"
	"github.com/pousadahub/ordering-backend/internal/guest"
	"github.com/pousadahub/ordering-backend/internal/ordering"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/logger"
)

type resolveRequest struct {
	// Query is the raw query string of the page the guest landed on,
	// e.g. "pousada=adega-acai" or "delivery=1".
	Query string `json:"query"`
}

type setContextRequest struct {
	PartnerID *uuid.UUID `json:"partner_id"`
	Delivery  bool       `json:"delivery"`
}

func identityFromRequest(r *http.Request) (guest.Identity, error) {
	id, ok := guest.FromContext(r.Context())
	if !ok {
		return guest.Identity{}, pkgerrors.New(pkgerrors.CodeInternal, "guest session missing")
	}
	return id, nil
}

// ContextShow reports the context stored state alone resolves to.
func ContextShow(resolver *ordering.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := resolver.Current(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newResolutionPayload(res))
	}
}

// ContextResolve runs a full resolution pass against the page URL the client
// reports.
func ContextResolve(resolver *ordering.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload resolveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query, err := url.ParseQuery(payload.Query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid query string"))
			return
		}

		res, err := resolver.Resolve(r.Context(), id, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newResolutionPayload(res))
	}
}

// ContextSet applies an explicit selection from the partner picker.
func ContextSet(resolver *ordering.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setContextRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.PartnerID == nil && !payload.Delivery {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "either partner_id or delivery must be set"))
			return
		}
		if payload.PartnerID != nil && payload.Delivery {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "partner_id and delivery are mutually exclusive"))
			return
		}

		res, err := resolver.SetContext(r.Context(), id, payload.PartnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newResolutionPayload(res))
	}
}

// ContextReset drops every stored selection for the guest.
func ContextReset(resolver *ordering.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := resolver.Reset(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newResolutionPayload(res))
	}
}

type resolutionPayload struct {
	Context ordering.Context  `json:"context"`
	Notices []ordering.Notice `json:"notices,omitempty"`
	Query   string            `json:"query"`
}

func newResolutionPayload(res ordering.Resolution) resolutionPayload {
	return resolutionPayload{
		Context: res.Context,
		Notices: res.Notices,
		Query:   res.Query.Encode(),
	}
}
