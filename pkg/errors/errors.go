package errors

import (
	"fmt"

	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden is returned when an authenticated caller lacks access to a resource
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "forbidden"
}

// ErrConflict is returned when there's a conflict (e.g., duplicate registration)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidStateTransition is returned when an invalid order status transition is attempted
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrUpstream is returned when the payment provider (or another upstream) fails.
// ClientAttributable marks failures caused by the inbound request (bad signature,
// unknown session) so handlers map them to a 4xx instead of a 5xx.
type ErrUpstream struct {
	Operation          string
	Message            string
	ClientAttributable bool
}

func (e *ErrUpstream) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("upstream %s failed", e.Operation)
}

// ErrPersistence is returned when the data store is unavailable or a write fails
type ErrPersistence struct {
	Operation string
	Err       error
}

func (e *ErrPersistence) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Operation, e.Err)
}

func (e *ErrPersistence) Unwrap() error {
	return e.Err
}
