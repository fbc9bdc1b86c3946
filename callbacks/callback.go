package callbacks

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/google/uuid"
)

// Phase tells whether a callback runs before or after the original method
type Phase int

const (
	// Before callbacks run prior to the original method
	Before Phase = iota
	// After callbacks run once the original method returned without error
	After
)

// Phases lists every phase in execution order
var Phases = []Phase{Before, After}

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParsePhase parses "before" or "after"
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "before":
		return Before, nil
	case "after":
		return After, nil
	default:
		return 0, fmt.Errorf("unknown phase %q", s)
	}
}

// Func is a callback. A returned error aborts the invocation.
type Func func(p *Payload) error

// Callback is a registered callback function with its provenance
type Callback struct {
	ID   string
	Fn   Func
	File string
	Line int
}

// New wraps fn, recording where fn was defined
func New(fn Func) *Callback {
	return NewFrom(fn, fn)
}

// NewFrom wraps fn but records the definition site of origin. It is used when
// fn is an adapter around a user supplied function.
func NewFrom(origin any, fn Func) *Callback {
	cb := &Callback{
		ID: uuid.New().String(),
		Fn: fn,
	}
	cb.File, cb.Line = definedAt(origin)
	return cb
}

// Source returns file:line of the callback definition
func (c *Callback) Source() string {
	if c.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}

func definedAt(fn any) (string, int) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", 0
	}

	pc := v.Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "", 0
	}
	return f.FileLine(pc)
}
