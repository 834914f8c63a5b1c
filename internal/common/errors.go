package common

import "errors"

var (
	// ErrRecordNotFound is the generic missing-row error. Callers translate it
	// to a 404 at the edge.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNoContent marks an empty filter result that is a successful outcome
	// rather than a miss.
	ErrNoContent = errors.New("no content")
)
