package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrRoomNotFound  = errors.New("room not found")

	// ErrExternalRefConflict is returned by the repository when the unique
	// index on external_id rejects an insert. The creation path retries
	// with a fresh reference; ErrConflict surfaces once retries run out.
	ErrExternalRefConflict = errors.New("external reference already in use")
	ErrConflict            = errors.New("could not allocate a unique payment reference")

	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("payment gateway error")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}
