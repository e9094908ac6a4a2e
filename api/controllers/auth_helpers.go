package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/internal/cart"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

func parseBearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

// mergeGuestCart folds a guest cart into the account that just signed in.
// Failures are logged, not surfaced: the shopper still gets their tokens.
func mergeGuestCart(r *http.Request, cartService cart.Service, userID uuid.UUID, logg *logger.Logger) {
	if cartService == nil {
		return
	}
	sessionID := strings.TrimSpace(r.Header.Get("X-Guest-Session"))
	if sessionID == "" {
		return
	}
	if _, err := cartService.Merge(r.Context(), sessionID, userID); err != nil && logg != nil {
		ctx := logg.WithGuestSession(r.Context(), sessionID)
		logg.Warn(ctx, "guest cart merge failed during sign-in: "+err.Error())
	}
}
