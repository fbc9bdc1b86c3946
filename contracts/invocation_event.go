package contracts

import (
	"fmt"
	"strings"

	"github.com/glimte/afterdo-go/callbacks"
)

// InvocationEventType is the message type of every InvocationEvent
const InvocationEventType = "afterdo.InvocationEvent"

// InvocationEvent reports that a callback ran for a wrapped method call.
// The correlation ID is the invocation ID.
type InvocationEvent struct {
	BaseMessage
	TypeName       string   `json:"typeName"`
	Method         string   `json:"method"`
	Phase          string   `json:"phase"`
	Receiver       string   `json:"receiver"`
	ReceiverID     string   `json:"receiverId"`
	Args           []string `json:"args"`
	ReturnValue    string   `json:"returnValue,omitempty"`
	CallbackID     string   `json:"callbackId,omitempty"`
	CallbackSource string   `json:"callbackSource,omitempty"`
}

// NewInvocationEvent describes the callback run p belongs to. Arguments and
// the return value are rendered with fmt so that any value can be carried.
func NewInvocationEvent(p *callbacks.Payload) *InvocationEvent {
	evt := &InvocationEvent{
		BaseMessage: NewBaseMessage(InvocationEventType),
		Method:      p.Method(),
		Phase:       p.Phase().String(),
	}
	evt.SetCorrelationID(p.InvocationID())

	if r := p.Receiver(); r != nil {
		evt.TypeName = r.Type().Name()
		evt.Receiver = r.String()
		evt.ReceiverID = r.ID().String()
	}

	args := p.Args()
	evt.Args = make([]string, 0, len(args))
	for _, a := range args {
		evt.Args = append(evt.Args, fmt.Sprint(a))
	}

	if v, ok := p.ReturnValue(); ok {
		evt.ReturnValue = fmt.Sprint(v)
	}

	if cb := p.Callback(); cb != nil {
		evt.CallbackID = cb.ID
		evt.CallbackSource = cb.Source()
	}

	return evt
}

// RoutingKey returns prefix.type.method.phase
func (e *InvocationEvent) RoutingKey(prefix string) string {
	parts := make([]string, 0, 4)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	return strings.Join(append(parts, e.TypeName, e.Method, e.Phase), ".")
}

// Validate checks the fields a consumer needs to route the event
func (e *InvocationEvent) Validate() error {
	switch {
	case e.ID == "":
		return &ValidationError{Field: "id"}
	case e.TypeName == "":
		return &ValidationError{Field: "typeName"}
	case e.Method == "":
		return &ValidationError{Field: "method"}
	}

	if _, err := callbacks.ParsePhase(e.Phase); err != nil {
		return &ValidationError{Field: "phase", Err: err}
	}
	return nil
}
