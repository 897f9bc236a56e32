package reflection

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError.
var ErrNotFound = errors.New("declaration does not exist")

// NotFoundError reports a lookup of a declaration the runtime does not have.
type NotFoundError struct {
	What string // "class", "function", "method", ...
	Name string // qualified name, e.g. "App\User::save"
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.What, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
