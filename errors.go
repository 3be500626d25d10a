package qtypes

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies compile-time failures.
type ErrorKind int

const (
	ConfigError   ErrorKind = iota // sizing misuse
	CapacityError                  // not enough bits for an allocation, width or distribution
	DomainError                    // operation invalid for the value's current state or arguments
	StateError                     // extraction before measurement, use after free, faulted backend
)

var kindName = map[ErrorKind]string{
	ConfigError:   "config",
	CapacityError: "capacity",
	DomainError:   "domain",
	StateError:    "state",
}

func (k ErrorKind) String() string {
	return kindName[k]
}

/*
Error is the single error type raised by the compiler. Op names the operation that
discovered the problem, Err carries the origin error (with a stack, courtesy of pkg/errors).
*/
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// Sentinels for errors.Is matching on kind alone.
var (
	ErrConfig   = &Error{Kind: ConfigError}
	ErrCapacity = &Error{Kind: CapacityError}
	ErrDomain   = &Error{Kind: DomainError}
	ErrState    = &Error{Kind: StateError}
)

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error [%s]: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match against a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

func newError(kind ErrorKind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

func wrapError(kind ErrorKind, op string, err error, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.Wrap(err, msg)}
}
