package weave

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glimte/afterdo-go/callbacks"
	"github.com/glimte/afterdo-go/internal/safe"
)

var (
	// ErrNoMethodSpecified is matched by every NoMethodSpecifiedError
	ErrNoMethodSpecified = errors.New("no method specified")
	// ErrNilCallback is returned when registering a nil callback
	ErrNilCallback = errors.New("callback cannot be nil")
	// ErrCallback is matched by every CallbackError
	ErrCallback = errors.New("callback failed")
)

// NoMethodSpecifiedError is returned when a registration names no method
type NoMethodSpecifiedError struct {
	Phase callbacks.Phase
}

func (e *NoMethodSpecifiedError) Error() string {
	return fmt.Sprintf("%s takes at least one method name", e.Phase)
}

// Is makes errors.Is(err, ErrNoMethodSpecified) work
func (e *NoMethodSpecifiedError) Is(target error) bool {
	return target == ErrNoMethodSpecified
}

// CallbackError reports a callback that returned an error or panicked while
// a wrapped method was invoked
type CallbackError struct {
	Method     string
	Phase      callbacks.Phase
	Receiver   string
	Args       []any
	CallbackID string
	Source     string
	CauseType  string
	Err        error

	// Stack is the stack of the panic, when the callback panicked
	Stack []byte
}

func newCallbackError(p *callbacks.Payload, err error) *CallbackError {
	e := &CallbackError{
		Method:    p.Method(),
		Phase:     p.Phase(),
		Receiver:  p.Receiver().String(),
		Args:      p.Args(),
		CauseType: causeType(err),
		Err:       err,
		Stack:     safe.StackOf(err),
	}
	if cb := p.Callback(); cb != nil {
		e.CallbackID = cb.ID
		e.Source = cb.Source()
	}
	return e
}

// causeType names the dynamic type of the innermost meaningful error
func causeType(err error) string {
	var p *safe.PanicError
	if errors.As(err, &p) {
		return fmt.Sprintf("panic(%T)", p.Value)
	}
	return fmt.Sprintf("%T", err)
}

func (e *CallbackError) Error() string {
	args := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		args = append(args, fmt.Sprint(a))
	}

	return fmt.Sprintf("%s callback for method %s on the instance %s with the following arguments: [%s] defined at %s resulted in the following error: %s: %v",
		e.Phase, e.Method, e.Receiver, strings.Join(args, ", "), e.Source, e.CauseType, e.Err)
}

// Unwrap returns the original failure
func (e *CallbackError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCallback) work
func (e *CallbackError) Is(target error) bool {
	return target == ErrCallback
}

// IsCallbackError reports whether err was raised by a callback rather than
// by the wrapped method itself
func IsCallbackError(err error) bool {
	var cbErr *CallbackError
	return errors.As(err, &cbErr)
}
