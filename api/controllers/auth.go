package controllers

import (
	"net/http"

	"github.com/sxo6luxe/sxo6-backend/api/responses"
	"github.com/sxo6luxe/sxo6-backend/api/validators"
	"github.com/sxo6luxe/sxo6-backend/internal/auth"
	"github.com/sxo6luxe/sxo6-backend/internal/cart"
	pkgAuth "github.com/sxo6luxe/sxo6-backend/pkg/auth"
	"github.com/sxo6luxe/sxo6-backend/pkg/config"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	FullName string  `json:"full_name" validate:"omitempty,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type updatePasswordRequest struct {
	NewPassword string  `json:"new_password" validate:"required,min=8,max=72"`
	ResetToken  *string `json:"reset_token" validate:"omitempty,max=255"`
}

// AuthRegister creates an account and signs the shopper in. When the request
// carries a guest session header the guest cart is merged into the new account.
func AuthRegister(service auth.Service, cartService cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := service.Register(r.Context(), auth.RegisterRequest{
			Email:    body.Email,
			Password: body.Password,
			FullName: validators.SanitizeString(body.FullName, 120),
			Phone:    body.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mergeGuestCart(r, cartService, result.User.ID, logg)

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogin exchanges credentials for a token pair, merging any guest cart.
func AuthLogin(service auth.Service, cartService cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := service.Login(r.Context(), auth.LoginRequest{
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mergeGuestCart(r, cartService, result.User.ID, logg)

		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the session tied to the presented access token. Expired
// tokens are accepted so a shopper can always sign out.
func AuthLogout(service auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := parseBearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claims, err := pkgAuth.ParseAccessTokenAllowExpired(cfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}
		if claims.ID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := service.Logout(r.Context(), claims.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthRefresh rotates the refresh token and issues a new access token.
func AuthRefresh(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body refreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := parseBearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := service.Refresh(r.Context(), auth.RefreshRequest{
			AccessToken:  token,
			RefreshToken: body.RefreshToken,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthResetPassword kicks off the reset flow. The response never reveals
// whether the address has an account.
func AuthResetPassword(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body resetPasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := service.RequestPasswordReset(r.Context(), body.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "reset_email_sent"})
	}
}

// AuthUpdatePassword sets a new password, either for the signed-in shopper
// or through a reset token from the email flow.
func AuthUpdatePassword(service auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updatePasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := auth.UpdatePasswordInput{NewPassword: body.NewPassword}
		if body.ResetToken != nil && *body.ResetToken != "" {
			input.ResetToken = body.ResetToken
		} else {
			userID, err := requireUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.UserID = &userID
		}

		if err := service.UpdatePassword(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "password_updated"})
	}
}
