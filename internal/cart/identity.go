package cart

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

// Identity names the owner of a cart: an authenticated user or a guest
// session. Exactly one side is set, mirroring the cart_items CHECK
// constraint.
type Identity struct {
	UserID    *uuid.UUID
	SessionID *string
}

// UserIdentity builds an identity for an authenticated user.
func UserIdentity(userID uuid.UUID) Identity {
	return Identity{UserID: &userID}
}

// GuestIdentity builds an identity for a guest session token.
func GuestIdentity(sessionID string) Identity {
	return Identity{SessionID: &sessionID}
}

func (id Identity) validate() error {
	hasUser := id.UserID != nil && *id.UserID != uuid.Nil
	hasSession := id.SessionID != nil && strings.TrimSpace(*id.SessionID) != ""
	if hasUser == hasSession {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "a user or guest session is required")
	}
	return nil
}
