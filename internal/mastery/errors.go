package mastery

import (
	"errors"
	"fmt"
)

// ErrInvalidQuality is returned when a review grade falls outside [0,5].
var ErrInvalidQuality = errors.New("mastery: invalid quality")

// PersistenceError indicates the progress store failed to read or write a
// record. For writes, the review had already been computed when the store
// failed; callers decide whether to retry or surface it.
type PersistenceError struct {
	Op  string
	Key Key
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("mastery: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
