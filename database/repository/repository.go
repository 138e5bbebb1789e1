// Package repository holds the sentinel errors shared by the Mongo
// repositories. Services translate these into their own typed errors;
// handlers never see them directly.
package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("repository: document not found")

	// ErrNotMatched is returned by conditional writes whose status filter
	// matched no document. The caller re-reads to tell a missing document
	// from a lost race from an illegal transition.
	ErrNotMatched = errors.New("repository: conditional write matched no document")

	// ErrDuplicateSlot is returned when an insert violates the unique index
	// on (specialistId, date, startTime): another live request or a
	// confirmed session already holds the tuple.
	ErrDuplicateSlot = errors.New("repository: slot tuple already occupied")

	// ErrDuplicateRequestRef is returned when a session insert violates the
	// unique index on sessionRequestId.
	ErrDuplicateRequestRef = errors.New("repository: session already exists for request")
)
