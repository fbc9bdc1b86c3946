package rabbitmq

import (
	"fmt"
	"time"
)

// ConnectionError represents a connection-related error
type ConnectionError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("rabbitmq connection error: %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// PublishError represents a publish-related error
type PublishError struct {
	Exchange   string
	RoutingKey string
	Attempts   int
	Err        error
	Timestamp  time.Time
}

func (e *PublishError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("rabbitmq publish error: exchange=%s, routingKey=%s failed after %d attempts: %v", e.Exchange, e.RoutingKey, e.Attempts, e.Err)
	}
	return fmt.Sprintf("rabbitmq publish error: exchange=%s, routingKey=%s: %v", e.Exchange, e.RoutingKey, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
