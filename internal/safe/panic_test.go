package safe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPanicError(t *testing.T) {
	err := NewPanicError("info", []byte("stack"))
	assert.Equal(t, "panic: info", err.Error())
	assert.Equal(t, []byte("stack"), StackOf(err))
}

func TestCall(t *testing.T) {
	t.Run("returns the function's error", func(t *testing.T) {
		boom := errors.New("boom")
		assert.Same(t, boom, Call(func() error { return boom }))
		assert.NoError(t, Call(func() error { return nil }))
	})

	t.Run("recovers panics with stack", func(t *testing.T) {
		err := Call(func() error { panic("kaboom") })

		var p *PanicError
		require.ErrorAs(t, err, &p)
		assert.Equal(t, "kaboom", p.Value)
		assert.Contains(t, string(p.Stack), "panic_test.go")
	})

	t.Run("panicked errors stay matchable", func(t *testing.T) {
		boom := errors.New("boom")
		err := Call(func() error { panic(boom) })

		assert.ErrorIs(t, err, boom)
	})

	t.Run("no stack outside panics", func(t *testing.T) {
		assert.Nil(t, StackOf(errors.New("plain")))
	})
}
