package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pousadahub/ordering-backend/pkg/logger"
)

const requestIDHeader = "X-Pousada-Request-Id"

// RequestID tags every request with a correlation id, echoed back in the
// response header. Inbound ids are honored only when they parse as UUIDs,
// same rule as the guest cookies; anything else is replaced with a fresh one.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
