package declid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidId is wrapped by constructor validation failures.
	ErrInvalidId = errors.New("invalid declaration id")

	// ErrMalformedEncoding is wrapped by Parse failures.
	ErrMalformedEncoding = errors.New("malformed declaration id encoding")

	// ErrUnresolvable matches every *UnresolvableError.
	ErrUnresolvable = errors.New("declaration id is not resolvable")

	// ErrAnonymousClassNameNotAvailable reports an anonymous class whose
	// runtime name was not captured.
	ErrAnonymousClassNameNotAvailable = errors.New("anonymous class runtime name is not available")

	// ErrNoReflector reports a resolution attempt without a Reflector.
	ErrNoReflector = errors.New("no reflector")
)

// UnresolvableError is returned by Resolve when the runtime information
// required to reflect Id is missing.
type UnresolvableError struct {
	Id  Id
	Err error
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %v", Describe(e.Id), e.Err)
}

func (e *UnresolvableError) Unwrap() error { return e.Err }

// Is makes every UnresolvableError match ErrUnresolvable.
func (e *UnresolvableError) Is(target error) bool {
	return target == ErrUnresolvable
}

// SyntaxError describes a malformed encoding.
type SyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %s at offset %d in %q", ErrMalformedEncoding, e.Msg, e.Offset, e.Input)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformedEncoding }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidId, fmt.Sprintf(format, args...))
}
