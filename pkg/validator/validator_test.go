package validator

import (
	"testing"

	"github.com/google/uuid"
)

type sample struct {
	SKU      string    `json:"sku" validate:"required,max=5"`
	Quantity int       `json:"quantity" validate:"gte=0"`
	Owner    uuid.UUID `json:"owner_id" validate:"uuid_required"`
}

func TestValidateStruct_ReportsJSONFieldNames(t *testing.T) {
	errs := ValidateStruct(&sample{Quantity: -1})
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors got %d", len(errs))
	}
	if errs[0].FailedField != "sku" || errs[0].Tag != "required" {
		t.Fatalf("unexpected first error: %+v", errs[0])
	}
	if errs[1].FailedField != "quantity" || errs[1].Message() != "must be at least 0" {
		t.Fatalf("unexpected second error: %+v (%s)", errs[1], errs[1].Message())
	}
	if errs[2].FailedField != "owner_id" {
		t.Fatalf("unexpected third error: %+v", errs[2])
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	if errs := ValidateStruct(&sample{SKU: "A-1", Owner: uuid.New()}); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}
