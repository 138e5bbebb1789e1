package booking

import (
	"fmt"
	"time"
)

// ValidationError flags malformed caller input (date, time, amount).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NoAvailabilityError means the specialist has no active rules for the day.
type NoAvailabilityError struct {
	SpecialistID string
	Date         string
}

func (e *NoAvailabilityError) Error() string {
	return fmt.Sprintf("specialist %s has no availability on %s", e.SpecialistID, e.Date)
}

// SlotConflictError means the (specialist, date, startTime) tuple is already
// held by a live request or a confirmed session. Callers should re-query
// available slots.
type SlotConflictError struct {
	SpecialistID string
	Date         string
	StartTime    string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %s %s is no longer available for specialist %s", e.Date, e.StartTime, e.SpecialistID)
}

// RequestExpiredError means the payment deadline passed before the
// transition; the slot is released.
type RequestExpiredError struct {
	RequestID string
	ExpiresAt time.Time
}

func (e *RequestExpiredError) Error() string {
	return fmt.Sprintf("session request %s expired at %s", e.RequestID, e.ExpiresAt.Format(time.RFC3339))
}

// InvalidStateError means a transition was attempted from the wrong status.
type InvalidStateError struct {
	Entity  string
	ID      string
	Current string
	Action  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %s in status %s", e.Action, e.Entity, e.ID, e.Current)
}

// NotFoundError means no request or session exists with the given id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConcurrentModificationError means a conditional write lost a race at the
// store layer; the caller may safely re-read and retry.
type ConcurrentModificationError struct {
	Entity string
	ID     string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Entity, e.ID)
}
