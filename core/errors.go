package core

import (
	"errors"
	"timetracker/database"
)

// Error kinds surfaced by EventService. Match them with errors.Is; the
// underlying cause stays reachable through errors.As.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
)

// Error pairs a kind with the error that caused it.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// classify tags a store error with its kind. Meaning is not changed, only
// labelled; nil stays nil.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var vErr *database.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, database.ErrInvalidName):
		return &Error{Kind: ErrValidation, Err: err}
	case errors.Is(err, database.ErrEventNotFound):
		return &Error{Kind: ErrNotFound, Err: err}
	case errors.Is(err, database.ErrConflict):
		return &Error{Kind: ErrConflict, Err: err}
	default:
		return &Error{Kind: ErrStorage, Err: err}
	}
}
