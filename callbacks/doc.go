// Package callbacks holds the callback model: phases, the per-type callback
// registry and the payload handed to each callback.
//
// A callback receives a *Payload with named accessors for the call arguments,
// the method name, the receiver and, for after-callbacks, the return value.
// Payload.Raw flattens those into a positional list according to the
// ArgumentPolicy the capability was attached with; Adapt binds that list to
// an ordinary Go function:
//
//	cb, err := callbacks.Adapt(func(a, b int, self *objects.Object) {
//		fmt.Println(a+b, self)
//	})
package callbacks
