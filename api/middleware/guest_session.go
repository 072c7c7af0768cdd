package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pousadahub/ordering-backend/internal/guest"
	"github.com/pousadahub/ordering-backend/pkg/logger"
)

const (
	sessionCookie = "po_session"
	deviceCookie  = "po_guest"

	deviceCookieMaxAge = int(365 * 24 * time.Hour / time.Second)
)

// GuestSession assigns every visitor the two identifiers the storage scopes
// key on: a per-tab-session ID and a durable device ID. Both are minted here
// on first contact and echoed back as cookies.
func GuestSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := cookieValue(r, sessionCookie)
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			deviceID := cookieValue(r, deviceCookie)
			if deviceID == "" {
				deviceID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     deviceCookie,
					Value:    deviceID,
					Path:     "/",
					MaxAge:   deviceCookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := guest.WithIdentity(r.Context(), guest.Identity{
				SessionID: sessionID,
				DeviceID:  deviceID,
			})
			if logg != nil {
				ctx = logg.WithGuestSession(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		// A tampered cookie gets replaced rather than trusted.
		return ""
	}
	return cookie.Value
}
