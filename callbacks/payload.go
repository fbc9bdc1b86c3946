package callbacks

import (
	"github.com/glimte/afterdo-go/objects"
	"github.com/google/uuid"
)

// ArgumentPolicy decides which values follow the call arguments in Payload.Raw
type ArgumentPolicy int

const (
	// ArgsOnly passes the call arguments only
	ArgsOnly ArgumentPolicy = iota
	// ArgsAndReceiver appends the receiver
	ArgsAndReceiver
	// ArgsMethodAndReceiver appends the method name, the return value
	// (after-callbacks only) and the receiver
	ArgsMethodAndReceiver
)

// DefaultArgumentPolicy is used when no policy is configured
const DefaultArgumentPolicy = ArgsAndReceiver

// String returns the policy name
func (p ArgumentPolicy) String() string {
	switch p {
	case ArgsOnly:
		return "args"
	case ArgsAndReceiver:
		return "args+receiver"
	case ArgsMethodAndReceiver:
		return "args+method+receiver"
	default:
		return "unknown"
	}
}

// Invocation is created for every call of a wrapped method and shared by all
// of its callbacks
type Invocation struct {
	id       string
	method   string
	receiver *objects.Object
	args     []any

	returnValue any
	returned    bool

	values *Values
}

// NewInvocation creates the context of one wrapped method call
func NewInvocation(method string, receiver *objects.Object, args []any) *Invocation {
	return &Invocation{
		id:       uuid.New().String(),
		method:   method,
		receiver: receiver,
		args:     args,
		values:   NewValues(),
	}
}

// ID returns the invocation id
func (i *Invocation) ID() string {
	return i.id
}

// Method returns the invoked method name
func (i *Invocation) Method() string {
	return i.method
}

// Receiver returns the object the method was invoked on
func (i *Invocation) Receiver() *objects.Object {
	return i.receiver
}

// Args returns a copy of the call arguments
func (i *Invocation) Args() []any {
	return append([]any(nil), i.args...)
}

// SetReturnValue records the original method's result
func (i *Invocation) SetReturnValue(v any) {
	i.returnValue = v
	i.returned = true
}

// ReturnValue returns the original method's result, if it already returned
func (i *Invocation) ReturnValue() (any, bool) {
	return i.returnValue, i.returned
}

// Values returns the value bag shared by the invocation's callbacks
func (i *Invocation) Values() *Values {
	return i.values
}

// Payload is what a callback receives
type Payload struct {
	invocation *Invocation
	phase      Phase
	policy     ArgumentPolicy
	callback   *Callback
}

// NewPayload builds the payload for one callback run
func NewPayload(inv *Invocation, phase Phase, policy ArgumentPolicy, cb *Callback) *Payload {
	return &Payload{
		invocation: inv,
		phase:      phase,
		policy:     policy,
		callback:   cb,
	}
}

// Phase returns the phase the callback runs in
func (p *Payload) Phase() Phase {
	return p.phase
}

// Method returns the invoked method name
func (p *Payload) Method() string {
	return p.invocation.method
}

// Receiver returns the object the method was invoked on
func (p *Payload) Receiver() *objects.Object {
	return p.invocation.receiver
}

// Args returns a copy of the call arguments
func (p *Payload) Args() []any {
	return p.invocation.Args()
}

// NumArgs returns the number of call arguments
func (p *Payload) NumArgs() int {
	return len(p.invocation.args)
}

// Arg returns the i-th call argument, or nil when out of range
func (p *Payload) Arg(i int) any {
	if i < 0 || i >= len(p.invocation.args) {
		return nil
	}
	return p.invocation.args[i]
}

// ReturnValue returns the original method's result. It is only available
// to after-callbacks.
func (p *Payload) ReturnValue() (any, bool) {
	if p.phase != After {
		return nil, false
	}
	return p.invocation.ReturnValue()
}

// Values returns the value bag shared by the invocation's callbacks
func (p *Payload) Values() *Values {
	return p.invocation.values
}

// InvocationID returns the id shared by all callbacks of one call
func (p *Payload) InvocationID() string {
	return p.invocation.id
}

// Callback returns the callback being run
func (p *Payload) Callback() *Callback {
	return p.callback
}

// Policy returns the argument policy Raw follows
func (p *Payload) Policy() ArgumentPolicy {
	return p.policy
}

// Raw returns the positional values a callback sees: the call arguments,
// then depending on the policy the method name, the return value (after
// phase only) and the receiver, which is always last when present.
func (p *Payload) Raw() []any {
	raw := p.Args()

	switch p.policy {
	case ArgsAndReceiver:
		raw = append(raw, p.invocation.receiver)
	case ArgsMethodAndReceiver:
		raw = append(raw, p.invocation.method)
		if p.phase == After {
			raw = append(raw, p.invocation.returnValue)
		}
		raw = append(raw, p.invocation.receiver)
	}

	return raw
}
