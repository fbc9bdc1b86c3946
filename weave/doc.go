// Package weave is the method interception engine.
//
// A Core is attached to an objects.Type and owns that type's callback
// registry. Registering the first callback for a method wraps it: the
// original implementation is kept as a private method named AliasPrefix+name
// and a wrapper takes its place. The wrapper is installed once per
// implementation no matter how many callbacks are registered.
//
// When a wrapped method is invoked the wrapper walks the receiver type's
// ancestors, innermost first, and collects the cores of every type whose
// implementation of the method is that wrapper. It then runs
//
//  1. the before-callbacks of those cores, in registration order
//  2. the original implementation
//  3. the after-callbacks, in the same order
//
// and returns the original's result. Errors of the original are returned as
// they are and skip the after-callbacks. A callback that returns an error or
// panics ends the invocation with a *CallbackError; the remaining callbacks
// of that invocation do not run.
package weave
