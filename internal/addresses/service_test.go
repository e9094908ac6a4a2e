package addresses

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

var userIDFixture = uuid.New()

func validInput() AddressInput {
	return AddressInput{
		AddressType:  enums.AddressTypeShipping,
		FullName:     "Ada O.",
		AddressLine1: "14 Marina Road",
		City:         "Lagos",
		Country:      "NG",
	}
}

func TestAddressInputValidation(t *testing.T) {
	if err := validInput().validate(); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*AddressInput)
	}{
		{"badType", func(in *AddressInput) { in.AddressType = "warehouse" }},
		{"missingName", func(in *AddressInput) { in.FullName = "  " }},
		{"missingLine1", func(in *AddressInput) { in.AddressLine1 = "" }},
		{"missingCity", func(in *AddressInput) { in.City = "" }},
		{"missingCountry", func(in *AddressInput) { in.Country = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			if err := input.validate(); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestApplyInputTrims(t *testing.T) {
	input := validInput()
	input.FullName = "  Ada O.  "
	input.City = " Lagos "
	input.IsDefault = true

	address := addressFromInput(userIDFixture, input)
	if address.FullName != "Ada O." {
		t.Fatalf("expected trimmed name, got %q", address.FullName)
	}
	if address.City != "Lagos" {
		t.Fatalf("expected trimmed city, got %q", address.City)
	}
	if !address.IsDefault {
		t.Fatal("expected default flag to carry over")
	}
}
