package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateEvent means a completion for the same habit, user and day already exists.
	ErrDuplicateEvent = errors.New("completion already recorded for this day")
	ErrSnapshotExists = errors.New("analytics snapshot already recorded for this day")
	// ErrOutOfOrderEvent is matched by every *OutOfOrderEventError.
	ErrOutOfOrderEvent = errors.New("completion precedes last recorded completion")
	// ErrEmailDelivery is matched by every *EmailDeliveryError.
	ErrEmailDelivery      = errors.New("email delivery failed")
	ErrEmailNotConfigured = errors.New("email sender is not configured")
)

// OutOfOrderEventError reports a completion dated before the habit's last completion.
type OutOfOrderEventError struct {
	LastCompleted Date
	EventDay      Date
}

func (e *OutOfOrderEventError) Error() string {
	return fmt.Sprintf("completion for %s precedes last completion %s", e.EventDay, e.LastCompleted)
}

func (e *OutOfOrderEventError) Is(target error) bool {
	return target == ErrOutOfOrderEvent
}

// EmailDeliveryError wraps a failed or timed-out send.
type EmailDeliveryError struct {
	To  string
	Err error
}

func (e *EmailDeliveryError) Error() string {
	return fmt.Sprintf("send email to %s: %v", e.To, e.Err)
}

func (e *EmailDeliveryError) Unwrap() error { return e.Err }

func (e *EmailDeliveryError) Is(target error) bool {
	return target == ErrEmailDelivery
}

// RepositoryError wraps any storage read or write failure.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
