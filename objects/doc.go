// Package objects provides explicit type descriptors with method tables.
//
// Go types cannot gain or lose methods at runtime, so code that wants to be
// intercepted declares its methods on a Type instead:
//
//	dog := objects.NewType("Dog")
//	dog.Define("bark", func(self *objects.Object, args ...any) (any, error) {
//		return "Woooof", nil
//	})
//
//	out, err := dog.New(nil).Call("bark")
//
// Types inherit methods from their parents (WithParents) and can have modules
// prepended in front of their own methods (WithPrepended). Ancestors returns
// the resulting lookup order, which is also the order in which per-type
// extensions such as callback registries are consulted.
package objects
