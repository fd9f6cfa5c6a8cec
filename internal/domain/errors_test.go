package domain_test

import (
	"errors"
	"testing"

	"github.com/neomorfeo/sendstack/internal/domain"
)

func TestValidationError_Error(t *testing.T) {
	err := &domain.ValidationError{
		Step:   1,
		Fields: map[string]string{"phone": "is required", "email": "must be a valid email"},
	}
	want := "step 1 is invalid: email: must be a valid email; phone: is required"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestStepError_Error(t *testing.T) {
	err := &domain.StepError{Event: "back", Current: 1}
	want := `event "back" is not valid from step 1`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestProgressError_Error(t *testing.T) {
	err := &domain.ProgressError{Field: "progress_percentage", Reason: "must be between 0 and 100"}
	want := "invalid progress_percentage: must be between 0 and 100"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCheckoutError_Unwrap(t *testing.T) {
	cause := errors.New("card_declined")
	err := &domain.CheckoutError{Stage: "create session", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	want := "checkout create session: card_declined"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
