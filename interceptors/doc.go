// Package interceptors provides a chain of interceptors around callback execution.
//
// Every callback run by a wrapped method passes through the interceptor chain
// configured for its type before the callback function itself is invoked. This
// keeps cross-cutting concerns such as logging or metrics out of the callbacks.
// This package provides:
//   - Interceptor interface and chain management
//   - Built-in interceptors for logging, metrics and filtering
//   - Builder pattern for easy chain construction
//
// Example usage:
//
//	chain := interceptors.NewChainBuilder(logger).
//		WithLogging().
//		WithMetrics(collector).
//		WithFiltering(interceptors.NewMethodFilter("bark"), interceptors.SkipSilently).
//		Build()
//
//	afterdo.Attach(dog, afterdo.WithInterceptorChain(chain))
//
// Interceptors are executed in the order they are added to the chain, with the
// callback being called last. An error returned anywhere in the chain is
// treated like an error of the callback itself.
package interceptors
