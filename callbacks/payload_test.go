package callbacks

import (
	"testing"

	"github.com/glimte/afterdo-go/objects"
	"github.com/stretchr/testify/assert"
)

func TestPayload(t *testing.T) {
	receiver := objects.NewType("Example").New(nil)

	newInvocation := func() *Invocation {
		inv := NewInvocation("two", receiver, []any{1, 2})
		inv.SetReturnValue("result")
		return inv
	}

	t.Run("Raw follows the argument policy", func(t *testing.T) {
		tests := []struct {
			name   string
			phase  Phase
			policy ArgumentPolicy
			want   []any
		}{
			{"args only", After, ArgsOnly, []any{1, 2}},
			{"receiver last", Before, ArgsAndReceiver, []any{1, 2, receiver}},
			{"receiver last after", After, ArgsAndReceiver, []any{1, 2, receiver}},
			{"method before", Before, ArgsMethodAndReceiver, []any{1, 2, "two", receiver}},
			{"method and return after", After, ArgsMethodAndReceiver, []any{1, 2, "two", "result", receiver}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := NewPayload(newInvocation(), tt.phase, tt.policy, nil)
				assert.Equal(t, tt.want, p.Raw())
			})
		}
	})

	t.Run("named accessors", func(t *testing.T) {
		inv := newInvocation()
		p := NewPayload(inv, After, ArgsOnly, nil)

		assert.Equal(t, "two", p.Method())
		assert.Same(t, receiver, p.Receiver())
		assert.Equal(t, []any{1, 2}, p.Args())
		assert.Equal(t, 2, p.NumArgs())
		assert.Equal(t, 2, p.Arg(1))
		assert.Nil(t, p.Arg(5))
		assert.Equal(t, After, p.Phase())
		assert.Equal(t, inv.ID(), p.InvocationID())

		v, ok := p.ReturnValue()
		assert.True(t, ok)
		assert.Equal(t, "result", v)
	})

	t.Run("before-callbacks see no return value", func(t *testing.T) {
		p := NewPayload(newInvocation(), Before, ArgsOnly, nil)

		_, ok := p.ReturnValue()
		assert.False(t, ok)
	})

	t.Run("Args cannot modify the invocation", func(t *testing.T) {
		p := NewPayload(newInvocation(), Before, ArgsOnly, nil)
		args := p.Args()
		args[0] = 99

		assert.Equal(t, 1, p.Arg(0))
	})

	t.Run("values are shared across payloads of one invocation", func(t *testing.T) {
		inv := newInvocation()
		NewPayload(inv, Before, ArgsOnly, nil).Values().Set("started", true)

		v, ok := NewPayload(inv, After, ArgsOnly, nil).Values().Get("started")
		assert.True(t, ok)
		assert.Equal(t, true, v)
	})
}

func TestValues(t *testing.T) {
	v := NewValues()
	v.Set("name", "rex")
	v.Set("legs", 4)

	s, ok := v.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "rex", s)

	_, ok = v.GetString("legs")
	assert.False(t, ok)

	n, ok := v.GetInt("legs")
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	v.Delete("name")
	_, ok = v.Get("name")
	assert.False(t, ok)
	assert.Equal(t, 1, v.Len())
}
