package ecs

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrUnknownSystem is returned by CallSystem when no configured instance
	// matches the requested name, or its kind is not installed.
	ErrUnknownSystem = errors.New("ecs: unknown system")
	// ErrUnknownMethod is returned by CallSystem when the system kind has no
	// method of the requested name.
	ErrUnknownMethod = errors.New("ecs: unknown method")
	// ErrBadArguments is returned by CallSystem when the supplied arguments do
	// not fit the method signature.
	ErrBadArguments = errors.New("ecs: bad arguments")
	// ErrNoHost is returned by Start when the world was built without a Host.
	ErrNoHost = errors.New("ecs: no host configured")
)

// PhaseError reports the failure of one system instance in one phase.
type PhaseError struct {
	Index  int
	System string
	Pass   Pass
	Phase  Phase
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("ecs: system %q (#%d) failed in %s %s: %v", e.System, e.Index, e.Pass, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking system call.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// protect runs fn, converting a panic into a *PanicError.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
