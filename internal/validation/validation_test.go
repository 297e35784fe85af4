package validation

import (
	"errors"
	"testing"

	"vatshop/internal/domain"
)

type sample struct {
	Email   string `json:"email" validate:"required,email"`
	Zipcode string `json:"zipcode" validate:"required,max=5"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=3"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Email: "nope", Zipcode: "123456"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["email"] != "must be a valid email address" {
		t.Fatalf("email message = %q", ve.Fields["email"])
	}
	if ve.Fields["zipcode"] != "must be at most 5 characters" {
		t.Fatalf("zipcode message = %q", ve.Fields["zipcode"])
	}
	if _, ok := ve.Fields["phone"]; ok {
		t.Fatalf("optional empty phone should pass")
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation")
	}
}

func TestStructOK(t *testing.T) {
	if err := Struct(sample{Email: "a@b.co", Zipcode: "1000"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
