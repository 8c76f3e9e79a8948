package models

import "errors"

// Domain specific errors shared across services and handlers.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")
	ErrCloningDisabled = errors.New("cloning is disabled for this card")
	ErrCardInactive    = errors.New("card is no longer active")
)
