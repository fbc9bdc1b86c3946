package weave

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glimte/afterdo-go/callbacks"
	"github.com/glimte/afterdo-go/interceptors"
	"github.com/glimte/afterdo-go/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dummy mirrors a small class with methods of different arities
type dummy struct {
	typ       *objects.Type
	zeroCalls int
}

func newDummy() *dummy {
	d := &dummy{typ: objects.NewType("Dummy")}
	d.typ.Define("zero", func(self *objects.Object, args ...any) (any, error) {
		d.zeroCalls++
		return 0, nil
	})
	d.typ.Define("one", func(self *objects.Object, args ...any) (any, error) {
		return args[0], nil
	})
	d.typ.Define("two", func(self *objects.Object, args ...any) (any, error) {
		return args[1], nil
	})
	d.typ.DefinePrivate("secret", func(self *objects.Object, args ...any) (any, error) {
		return "hidden", nil
	})
	return d
}

func counter(n *int) callbacks.Func {
	return func(*callbacks.Payload) error {
		*n++
		return nil
	}
}

func sortedMethodNames(t *objects.Type) []string {
	names := t.OwnMethodNames()
	sort.Strings(names)
	return names
}

func TestFor(t *testing.T) {
	t.Run("returns the same core for a type", func(t *testing.T) {
		d := newDummy()

		first := For(d.typ, WithArgumentPolicy(callbacks.ArgsOnly))
		second := For(d.typ, WithArgumentPolicy(callbacks.ArgsMethodAndReceiver))

		assert.Same(t, first, second)
		assert.Equal(t, callbacks.ArgsOnly, second.Policy(), "options only apply on creation")
		assert.Same(t, d.typ, first.Type())
	})

	t.Run("Lookup finds attached cores only", func(t *testing.T) {
		d := newDummy()

		_, ok := Lookup(d.typ)
		assert.False(t, ok)

		c := For(d.typ)
		found, ok := Lookup(d.typ)
		assert.True(t, ok)
		assert.Same(t, c, found)
	})

	t.Run("default policy appends the receiver", func(t *testing.T) {
		assert.Equal(t, callbacks.ArgsAndReceiver, For(newDummy().typ).Policy())
	})
}

func TestDefineCallback(t *testing.T) {
	t.Run("does not change the return value", func(t *testing.T) {
		d := newDummy()
		obj := d.typ.New(nil)
		before, err := obj.Call("one", 5)
		require.NoError(t, err)

		require.NoError(t, For(d.typ).DefineCallback(callbacks.After, func(*callbacks.Payload) error { return nil }, "one"))

		after, err := obj.Call("one", 5)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("runs every callback once in registration order", func(t *testing.T) {
		d := newDummy()
		core := For(d.typ)
		var order []int
		for i := 1; i <= 3; i++ {
			i := i
			require.NoError(t, core.DefineCallback(callbacks.After, func(*callbacks.Payload) error {
				order = append(order, i)
				return nil
			}, "zero"))
		}

		_, err := d.typ.New(nil).Call("zero")

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, order)
		assert.Equal(t, 1, d.zeroCalls)
	})

	t.Run("wraps a method only once", func(t *testing.T) {
		d := newDummy()
		core := For(d.typ)
		n := 0
		require.NoError(t, core.DefineCallback(callbacks.After, counter(&n), "zero"))
		first, _ := d.typ.OwnMethod("zero")
		require.NoError(t, core.DefineCallback(callbacks.Before, counter(&n), "zero"))
		require.NoError(t, core.DefineCallback(callbacks.After, counter(&n), "zero"))
		second, _ := d.typ.OwnMethod("zero")

		assert.Same(t, first, second)
		assert.Nil(t, wrapperOf(wrapperOf(second).original), "no nested wrappers")
		assert.True(t, IsWrapped(d.typ, "zero"))

		_, err := d.typ.New(nil).Call("zero")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, 1, d.zeroCalls)
	})

	t.Run("concurrent registrations share one wrapper", func(t *testing.T) {
		d := newDummy()
		core := For(d.typ)
		var n int32
		cb := func(*callbacks.Payload) error {
			atomic.AddInt32(&n, 1)
			return nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, core.DefineCallback(callbacks.After, cb, "zero"))
			}()
		}
		wg.Wait()

		m, _ := d.typ.OwnMethod("zero")
		require.NotNil(t, wrapperOf(m))
		assert.Nil(t, wrapperOf(wrapperOf(m).original), "no nested wrappers")

		_, err := d.typ.New(nil).Call("zero")
		require.NoError(t, err)
		assert.Equal(t, int32(20), atomic.LoadInt32(&n))
		assert.Equal(t, 1, d.zeroCalls)
	})

	t.Run("preserves the original under a private alias", func(t *testing.T) {
		d := newDummy()
		n := 0
		require.NoError(t, For(d.typ).DefineCallback(callbacks.After, counter(&n), "zero"))
		obj := d.typ.New(nil)

		assert.False(t, obj.RespondTo(AliasName("zero")))
		assert.True(t, IsAlias(AliasName("zero")))

		out, err := obj.Send(AliasName("zero"))
		require.NoError(t, err)
		assert.Equal(t, 0, out)
		assert.Equal(t, 0, n, "the alias bypasses callbacks")
	})

	t.Run("registers one callback for several methods", func(t *testing.T) {
		d := newDummy()
		n := 0
		require.NoError(t, For(d.typ).DefineCallback(callbacks.After, counter(&n), "zero", "one", "two"))
		obj := d.typ.New(nil)

		_, _ = obj.Call("zero")
		_, _ = obj.Call("one", 4)
		_, _ = obj.Call("two", 4, 5)

		assert.Equal(t, 3, n)
	})

	t.Run("private methods keep their visibility", func(t *testing.T) {
		d := newDummy()
		n := 0
		require.NoError(t, For(d.typ).DefineCallback(callbacks.Before, counter(&n), "secret"))
		obj := d.typ.New(nil)

		_, err := obj.Call("secret")
		assert.ErrorIs(t, err, objects.ErrPrivateMethod)

		out, err := obj.Send("secret")
		require.NoError(t, err)
		assert.Equal(t, "hidden", out)
		assert.Equal(t, 1, n)
	})

	t.Run("fails without method names", func(t *testing.T) {
		d := newDummy()

		err := For(d.typ).DefineCallback(callbacks.After, func(*callbacks.Payload) error { return nil })

		assert.ErrorIs(t, err, ErrNoMethodSpecified)
		assert.EqualError(t, err, "after takes at least one method name")
	})

	t.Run("fails for undefined methods without touching the type", func(t *testing.T) {
		d := newDummy()
		methodsBefore := sortedMethodNames(d.typ)
		core := For(d.typ)

		err := core.DefineCallback(callbacks.After, func(*callbacks.Payload) error { return nil }, "zero", "non_existing_method")

		var nsm *objects.NoSuchMethodError
		require.ErrorAs(t, err, &nsm)
		assert.Equal(t, "non_existing_method", nsm.Method)
		assert.ErrorIs(t, err, objects.ErrNoSuchMethod)
		assert.Equal(t, methodsBefore, sortedMethodNames(d.typ))
		assert.False(t, IsWrapped(d.typ, "zero"))
		assert.Equal(t, 0, core.Callbacks().Count())
	})

	t.Run("rejects nil callbacks", func(t *testing.T) {
		err := For(newDummy().typ).DefineCallback(callbacks.After, nil, "zero")
		assert.ErrorIs(t, err, ErrNilCallback)
	})

	t.Run("adapts arbitrary functions", func(t *testing.T) {
		d := newDummy()
		var a, b int
		var self *objects.Object
		require.NoError(t, For(d.typ).DefineCallbackFunc(callbacks.After, func(x, y int, obj *objects.Object) {
			a, b, self = x, y, obj
		}, "two"))
		obj := d.typ.New(nil)

		_, err := obj.Call("two", 1, 2)

		require.NoError(t, err)
		assert.Equal(t, 1, a)
		assert.Equal(t, 2, b)
		assert.Same(t, obj, self)
	})

	t.Run("DefineCallbackFunc rejects non functions", func(t *testing.T) {
		err := For(newDummy().typ).DefineCallbackFunc(callbacks.After, "nope", "zero")
		assert.ErrorIs(t, err, callbacks.ErrNotAFunction)
	})
}

func TestRemoveAllCallbacks(t *testing.T) {
	d := newDummy()
	core := For(d.typ)
	n := 0
	require.NoError(t, core.DefineCallback(callbacks.After, counter(&n), "zero"))
	require.NoError(t, core.DefineCallback(callbacks.Before, counter(&n), "one"))

	core.RemoveAllCallbacks()

	obj := d.typ.New(nil)
	out, err := obj.Call("zero")
	require.NoError(t, err)
	assert.Equal(t, 0, out)
	_, err = obj.Call("one", 1)
	require.NoError(t, err)

	assert.Equal(t, 0, n)
	assert.Equal(t, 0, core.Callbacks().Count())
	assert.True(t, IsWrapped(d.typ, "zero"), "methods stay wrapped")

	require.NoError(t, core.DefineCallback(callbacks.After, counter(&n), "zero"))
	_, _ = obj.Call("zero")
	assert.Equal(t, 1, n)
}

func TestCallbacksSnapshot(t *testing.T) {
	d := newDummy()
	core := For(d.typ)
	require.NoError(t, core.DefineCallback(callbacks.After, func(*callbacks.Payload) error { return nil }, "zero", "one"))
	require.NoError(t, core.DefineCallback(callbacks.Before, func(*callbacks.Payload) error { return nil }, "zero"))

	snap := core.Callbacks()

	assert.Len(t, snap.After["zero"], 1)
	assert.Len(t, snap.After["one"], 1)
	assert.Len(t, snap.Before["zero"], 1)
	assert.Equal(t, snap.After["zero"][0].ID, snap.After["one"][0].ID, "one callback registered for two methods")
	assert.Contains(t, snap.Before["zero"][0].Source, "core_test.go")
}

func TestInterceptorChainIntegration(t *testing.T) {
	t.Run("callbacks run through the chain", func(t *testing.T) {
		d := newDummy()
		var order []string
		chain := interceptors.NewInterceptorChain(nil).Add(interceptors.NewInterceptorFunc("trace", func(p *callbacks.Payload, next interceptors.Handler) error {
			order = append(order, "enter "+p.Phase().String())
			err := next.Handle(p)
			order = append(order, "leave "+p.Phase().String())
			return err
		}))
		core := For(d.typ, WithInterceptorChain(chain))
		require.NoError(t, core.DefineCallback(callbacks.After, func(*callbacks.Payload) error {
			order = append(order, "callback")
			return nil
		}, "zero"))

		_, err := d.typ.New(nil).Call("zero")

		require.NoError(t, err)
		assert.Equal(t, []string{"enter after", "callback", "leave after"}, order)
	})

	t.Run("chain failures become callback errors", func(t *testing.T) {
		d := newDummy()
		chain := interceptors.NewChainBuilder(nil).
			WithFiltering(interceptors.NewMethodFilter("one"), interceptors.SkipWithError).
			Build()
		core := For(d.typ, WithInterceptorChain(chain))
		require.NoError(t, core.DefineCallback(callbacks.After, func(*callbacks.Payload) error { return nil }, "zero"))

		_, err := d.typ.New(nil).Call("zero")

		assert.True(t, IsCallbackError(err))
		assert.True(t, errors.Is(err, interceptors.ErrCallbackFiltered))
	})
}
