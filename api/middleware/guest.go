package middleware

import (
	"net/http"
	"strings"

	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

const guestSessionHeader = "X-Guest-Session"

// GuestSession copies the guest cart token from the request header into the
// context. It never rejects: a request with neither a token nor credentials
// fails later, at identity resolution.
func GuestSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(guestSessionHeader))
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithGuestSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithGuestSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
