package objects

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchMethod is matched by every NoSuchMethodError
	ErrNoSuchMethod = errors.New("no such method")
	// ErrPrivateMethod is matched by every PrivateMethodError
	ErrPrivateMethod = errors.New("private method called")
	// ErrTypeNameTaken is returned when a registry already holds another
	// descriptor under the same name
	ErrTypeNameTaken = errors.New("type name already registered")
)

// NoSuchMethodError is returned when a method name does not resolve on a type
type NoSuchMethodError struct {
	Type   string
	Method string
	Super  bool
}

func (e *NoSuchMethodError) Error() string {
	if e.Super {
		return fmt.Sprintf("no superclass method %s after %s", e.Method, e.Type)
	}
	return fmt.Sprintf("there is no method %s on %s", e.Method, e.Type)
}

// Is makes errors.Is(err, ErrNoSuchMethod) work
func (e *NoSuchMethodError) Is(target error) bool {
	return target == ErrNoSuchMethod
}

// PrivateMethodError is returned when Call targets a private method
type PrivateMethodError struct {
	Type   string
	Method string
}

func (e *PrivateMethodError) Error() string {
	return fmt.Sprintf("private method %s called for an instance of %s", e.Method, e.Type)
}

// Is makes errors.Is(err, ErrPrivateMethod) work
func (e *PrivateMethodError) Is(target error) bool {
	return target == ErrPrivateMethod
}
