// Package reliability provides retry policies for operations that talk to
// external systems, such as publishing callback events to a broker.
//
// Example usage:
//
//	policy := reliability.NewExponentialBackoff(100*time.Millisecond, 2*time.Second, 2.0, 3)
//	err := reliability.Retry(ctx, policy, func() error {
//		return publish(ctx)
//	})
//
// Errors wrapped with Permanent are never retried.
package reliability
