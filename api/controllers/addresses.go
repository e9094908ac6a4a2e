package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sxo6luxe/sxo6-backend/api/responses"
	"github.com/sxo6luxe/sxo6-backend/api/validators"
	"github.com/sxo6luxe/sxo6-backend/internal/addresses"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

type addressRequest struct {
	AddressType  string  `json:"address_type" validate:"required,oneof=shipping billing"`
	FullName     string  `json:"full_name" validate:"required,max=120"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	AddressLine1 string  `json:"address_line1" validate:"required,max=255"`
	AddressLine2 *string `json:"address_line2" validate:"omitempty,max=255"`
	City         string  `json:"city" validate:"required,max=120"`
	State        *string `json:"state" validate:"omitempty,max=120"`
	PostalCode   *string `json:"postal_code" validate:"omitempty,max=20"`
	Country      string  `json:"country" validate:"required,max=56"`
	IsDefault    bool    `json:"is_default"`
}

func (body addressRequest) toInput() addresses.AddressInput {
	return addresses.AddressInput{
		AddressType:  enums.AddressType(body.AddressType),
		FullName:     body.FullName,
		Phone:        body.Phone,
		AddressLine1: body.AddressLine1,
		AddressLine2: body.AddressLine2,
		City:         body.City,
		State:        body.State,
		PostalCode:   body.PostalCode,
		Country:      body.Country,
		IsDefault:    body.IsDefault,
	}
}

func AddressList(service addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := service.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"addresses": rows})
	}
}

func AddressCreate(service addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		address, err := service.Create(r.Context(), userID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, address)
	}
}

func AddressUpdate(service addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addressID, err := parsePathUUID(chi.URLParam(r, "addressID"), "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		address, err := service.Update(r.Context(), userID, addressID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, address)
	}
}

func AddressDelete(service addresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addressID, err := parsePathUUID(chi.URLParam(r, "addressID"), "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := service.Delete(r.Context(), userID, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
