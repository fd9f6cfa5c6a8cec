package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderExists      = errors.New("order already exists")
	ErrPayloadNotFound  = errors.New("transient payload not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidLookup    = errors.New("lookup needs an email or an order id")
	ErrInvalidQuery     = errors.New("domain query is not a usable name")
)

// ValidationError carries the field-to-message map produced by a wizard step.
type ValidationError struct {
	Step   int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("step %d is invalid: %s", e.Step, strings.Join(parts, "; "))
}

// ProgressError is returned when an administrator submits an out-of-range progress update.
type ProgressError struct {
	Field  string
	Reason string
}

func (e *ProgressError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StepError is returned when a wizard navigation event is not valid from the current step.
type StepError struct {
	Event   string
	Current int
}

func (e *StepError) Error() string {
	return fmt.Sprintf("event %q is not valid from step %d", e.Event, e.Current)
}

// CheckoutError marks a terminal failure while registering a checkout session.
type CheckoutError struct {
	Stage string
	Err   error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout %s: %v", e.Stage, e.Err)
}

func (e *CheckoutError) Unwrap() error { return e.Err }
