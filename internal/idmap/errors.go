package idmap

import (
	"errors"
	"fmt"

	"declid/internal/declid"
)

var (
	// ErrNotDefined matches every *NotDefinedError.
	ErrNotDefined = errors.New("id is not defined")

	// ErrUnsupportedMutation matches every *UnsupportedMutationError.
	ErrUnsupportedMutation = errors.New("unsupported mutation of an immutable id map")
)

// NotDefinedError is returned by Get for an absent identifier.
type NotDefinedError struct {
	Id declid.Id
}

func (e *NotDefinedError) Error() string {
	return fmt.Sprintf("%s is not defined in the IdMap", declid.Describe(e.Id))
}

func (e *NotDefinedError) Is(target error) bool { return target == ErrNotDefined }

// UnsupportedMutationError reports an attempt to change a map in place.
type UnsupportedMutationError struct {
	Op string
}

func (e *UnsupportedMutationError) Error() string {
	return fmt.Sprintf("idmap: %s: %v, derive a new map with With or Without", e.Op, ErrUnsupportedMutation)
}

func (e *UnsupportedMutationError) Is(target error) bool { return target == ErrUnsupportedMutation }
