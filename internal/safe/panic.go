package safe

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// PanicError carries a recovered panic value and the stack it was raised on
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Unwrap returns the panic value when it was an error
func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}

// NewPanicError wraps a recovered value and its stack
func NewPanicError(value any, stack []byte) error {
	return &PanicError{Value: value, Stack: stack}
}

// Call runs fn and converts a panic into a *PanicError
func Call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewPanicError(r, debug.Stack())
		}
	}()

	return fn()
}

// StackOf returns the stack of a *PanicError in err's chain
func StackOf(err error) []byte {
	var p *PanicError
	if errors.As(err, &p) {
		return p.Stack
	}
	return nil
}
