// Package contracts defines the messages afterdo emits about intercepted
// method calls.
//
// An InvocationEvent describes one callback run: the type and method that
// were invoked, the phase, the receiver and the call arguments. Events are
// wrapped in an Envelope for transport and correlated by invocation, so the
// before and after events of a single call share a correlation ID.
package contracts
