package controllers

import (
	"net/http"

	"github.com/sxo6luxe/sxo6-backend/api/responses"
	"github.com/sxo6luxe/sxo6-backend/api/validators"
	"github.com/sxo6luxe/sxo6-backend/internal/profiles"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

type updateProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=120"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	Nationality *string `json:"nationality" validate:"omitempty,max=56"`
}

// ProfileGet returns the signed-in shopper's profile.
func ProfileGet(service *profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := service.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// ProfileUpdate applies partial changes to the shopper's profile.
func ProfileUpdate(service *profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := profiles.UpdateProfileInput{
			Phone:       body.Phone,
			Nationality: body.Nationality,
		}
		if body.FullName != nil {
			trimmed := validators.SanitizeString(*body.FullName, 120)
			input.FullName = &trimmed
		}

		profile, err := service.Update(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}
