package callbacks

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotAFunction is returned by Adapt for values that cannot be called
var ErrNotAFunction = errors.New("callback must be a function")

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ArgumentTypeError reports a callback parameter that cannot take the value
// found at its position
type ArgumentTypeError struct {
	Index int
	Want  reflect.Type
	Got   reflect.Type
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("callback parameter %d expects %s, got %s", e.Index, e.Want, e.Got)
}

// Adapt turns an arbitrary function into a Func. The values of Payload.Raw
// are bound to the function's parameters by position: missing values become
// zero values, surplus values are dropped and a variadic parameter collects
// whatever is left. Binding happens on every run, so a type mismatch surfaces
// as an *ArgumentTypeError returned from the callback.
//
// The function may return nothing, an error, or one value (ignored) followed
// by an error.
func Adapt(fn any) (Func, error) {
	switch f := fn.(type) {
	case nil:
		return nil, ErrNotAFunction
	case Func:
		return f, nil
	case func(*Payload) error:
		return f, nil
	case func(*Payload):
		return func(p *Payload) error {
			f(p)
			return nil
		}, nil
	case func():
		return func(*Payload) error {
			f()
			return nil
		}, nil
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %T", ErrNotAFunction, fn)
	}
	if v.IsNil() {
		return nil, ErrNotAFunction
	}

	t := v.Type()
	if err := checkResults(t); err != nil {
		return nil, err
	}

	return func(p *Payload) error {
		in, err := bind(t, p.Raw())
		if err != nil {
			return err
		}
		return resultError(t, v.Call(in))
	}, nil
}

func checkResults(t reflect.Type) error {
	switch t.NumOut() {
	case 0, 1:
		return nil
	case 2:
		if t.Out(1) == errorType {
			return nil
		}
	}
	return fmt.Errorf("unsupported callback results for %s: want (), (error), (T) or (T, error)", t)
}

func resultError(t reflect.Type, out []reflect.Value) error {
	if len(out) == 0 {
		return nil
	}

	last := len(out) - 1
	if t.Out(last) != errorType || out[last].IsNil() {
		return nil
	}
	return out[last].Interface().(error)
}

func bind(t reflect.Type, raw []any) ([]reflect.Value, error) {
	n := t.NumIn()
	fixed := n
	if t.IsVariadic() {
		fixed = n - 1
	}

	in := make([]reflect.Value, 0, max(n, len(raw)))
	for i := 0; i < fixed; i++ {
		if i >= len(raw) {
			in = append(in, reflect.Zero(t.In(i)))
			continue
		}
		v, err := convert(raw[i], t.In(i), i)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}

	if t.IsVariadic() {
		elem := t.In(n - 1).Elem()
		for i := fixed; i < len(raw); i++ {
			v, err := convert(raw[i], elem, i)
			if err != nil {
				return nil, err
			}
			in = append(in, v)
		}
	}

	return in, nil
}

func convert(value any, want reflect.Type, index int) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(want), nil
	}

	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(want) {
		return reflect.Value{}, &ArgumentTypeError{Index: index, Want: want, Got: v.Type()}
	}
	return v, nil
}
