package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/api/middleware"
	"github.com/sxo6luxe/sxo6-backend/internal/cart"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

// resolveIdentity maps the request to a cart identity. A signed-in shopper
// wins over a guest session header when both are present.
func resolveIdentity(r *http.Request) (cart.Identity, error) {
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return cart.Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
		}
		return cart.UserIdentity(userID), nil
	}
	if sessionID := middleware.GuestSessionFromContext(r.Context()); sessionID != "" {
		return cart.GuestIdentity(sessionID), nil
	}
	return cart.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in or provide an X-Guest-Session header")
}

// requireUserID extracts the authenticated user from the context.
func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}

// parsePathUUID reads a UUID path parameter resolved by chi.
func parsePathUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a valid UUID")
	}
	return id, nil
}
