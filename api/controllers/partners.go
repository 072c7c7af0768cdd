package controllers

import (
	"fmt"
	"net/http"

	"github.com/pousadahub/ordering-backend/api/responses"
	"github.com/pousadahub/ordering-backend/internal/partners"
	"github.com/pousadahub/ordering-backend/pkg/db/models"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/logger"
)

type partnerPayload struct {
	models.PartnerLocation
	PrepTimeLabel string `json:"prep_time_label,omitempty"`
}

func newPartnerPayload(p models.PartnerLocation) partnerPayload {
	out := partnerPayload{PartnerLocation: p}
	if p.PrepTimeMinMins > 0 && p.PrepTimeMaxMins >= p.PrepTimeMinMins {
		out.PrepTimeLabel = fmt.Sprintf("%d-%d min", p.PrepTimeMinMins, p.PrepTimeMaxMins)
	}
	return out
}

// PartnersList serves the directory snapshot guests pick from.
func PartnersList(dir *partners.Directory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dir == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner directory unavailable"))
			return
		}
		if !dir.Loaded() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "partner directory is still loading"))
			return
		}

		all := dir.All()
		payload := make([]partnerPayload, 0, len(all))
		for _, p := range all {
			payload = append(payload, newPartnerPayload(p))
		}
		responses.WriteSuccess(w, map[string]any{
			"partners":  payload,
			"loaded_at": dir.LoadedAt(),
		})
	}
}

// PartnersRefresh forces a directory reload from the database.
func PartnersRefresh(dir *partners.Directory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dir == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partner directory unavailable"))
			return
		}
		if err := dir.Refresh(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"partners":  len(dir.All()),
			"loaded_at": dir.LoadedAt(),
		})
	}
}
