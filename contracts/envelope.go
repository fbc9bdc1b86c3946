package contracts

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope wraps messages for transport
type Envelope struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Timestamp     string                 `json:"timestamp"`
	CorrelationID string                 `json:"correlationId,omitempty"`
	Headers       map[string]interface{} `json:"headers,omitempty"`
	Body          jsoniter.RawMessage    `json:"body"`
}

// NewEnvelope serializes msg into an envelope
func NewEnvelope(msg Message, headers map[string]interface{}) (*Envelope, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", msg.GetType(), err)
	}

	return &Envelope{
		ID:            msg.GetID(),
		Type:          msg.GetType(),
		Timestamp:     msg.GetTimestamp().Format(time.RFC3339Nano),
		CorrelationID: msg.GetCorrelationID(),
		Headers:       headers,
		Body:          body,
	}, nil
}

// Marshal encodes the envelope
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEnvelope decodes an envelope
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return &env, nil
}

// InvocationEvent decodes the body of an envelope carrying an InvocationEvent
func (e *Envelope) InvocationEvent() (*InvocationEvent, error) {
	if e.Type != InvocationEventType {
		return nil, fmt.Errorf("envelope %s carries %s, not %s", e.ID, e.Type, InvocationEventType)
	}

	var evt InvocationEvent
	if err := json.Unmarshal(e.Body, &evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", e.Type, err)
	}
	return &evt, nil
}
