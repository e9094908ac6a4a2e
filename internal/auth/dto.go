package auth

import (
	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
)

// RegisterRequest captures the sign-up payload.
type RegisterRequest struct {
	Email    string
	Password string
	FullName string
	Phone    *string
}

// LoginRequest captures the credential payload.
type LoginRequest struct {
	Email    string
	Password string
}

// RefreshRequest carries the expired access token plus its refresh token.
type RefreshRequest struct {
	AccessToken  string
	RefreshToken string
}

// UpdatePasswordInput updates a password either for a live session or via a
// reset token. Exactly one of UserID and ResetToken is expected.
type UpdatePasswordInput struct {
	UserID      *uuid.UUID
	ResetToken  *string
	NewPassword string
}

// UserSummary is the profile shape returned to authenticated clients.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name,omitempty"`
	IsAdmin  bool      `json:"is_admin"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserSummary `json:"user"`
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// FromModel maps a profile row to its API summary.
func FromModel(profile *models.Profile) UserSummary {
	if profile == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:       profile.ID,
		Email:    profile.Email,
		FullName: profile.FullName,
		IsAdmin:  profile.IsAdmin,
	}
}
