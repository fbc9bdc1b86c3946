package interceptors

import (
	"errors"
	"testing"

	"github.com/glimte/afterdo-go/callbacks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock filter for testing
type mockFilter struct {
	mock.Mock
}

func (m *mockFilter) ShouldRun(p *callbacks.Payload) (bool, error) {
	args := m.Called(p)
	return args.Bool(0), args.Error(1)
}

// Mock interceptor for testing
type mockInterceptor struct {
	mock.Mock
}

func (m *mockInterceptor) Intercept(p *callbacks.Payload, next Handler) error {
	args := m.Called(p, next)
	return args.Error(0)
}

func (m *mockInterceptor) Name() string {
	args := m.Called()
	return args.String(0)
}

func TestFilteringInterceptor(t *testing.T) {
	t.Run("Runs callback when filter returns true", func(t *testing.T) {
		filter := new(mockFilter)
		interceptor := NewFilteringInterceptor(filter, SkipSilently, nil)
		p := newTestPayload(callbacks.After)
		handler := new(mockHandler)

		filter.On("ShouldRun", p).Return(true, nil)
		handler.On("Handle", p).Return(nil)

		err := interceptor.Intercept(p, handler)

		assert.NoError(t, err)
		filter.AssertExpectations(t)
		handler.AssertExpectations(t)
	})

	t.Run("Skips callback silently", func(t *testing.T) {
		filter := new(mockFilter)
		interceptor := NewFilteringInterceptor(filter, SkipSilently, nil)
		p := newTestPayload(callbacks.After)
		handler := new(mockHandler)

		filter.On("ShouldRun", p).Return(false, nil)

		err := interceptor.Intercept(p, handler)

		assert.NoError(t, err)
		handler.AssertNotCalled(t, "Handle", mock.Anything)
	})

	t.Run("Skips callback with log", func(t *testing.T) {
		interceptor := NewFilteringInterceptor(NewMethodFilter("eat"), SkipWithLog, nil)
		handler := new(mockHandler)

		err := interceptor.Intercept(newTestPayload(callbacks.After), handler)

		assert.NoError(t, err)
		handler.AssertNotCalled(t, "Handle", mock.Anything)
	})

	t.Run("Skips callback with error", func(t *testing.T) {
		filter := new(mockFilter)
		interceptor := NewFilteringInterceptor(filter, SkipWithError, nil)
		p := newTestPayload(callbacks.Before)
		handler := new(mockHandler)

		filter.On("ShouldRun", p).Return(false, nil)

		err := interceptor.Intercept(p, handler)

		assert.ErrorIs(t, err, ErrCallbackFiltered)
		assert.Contains(t, err.Error(), "method=bark")
		handler.AssertNotCalled(t, "Handle", mock.Anything)
	})

	t.Run("Returns filter errors", func(t *testing.T) {
		filter := new(mockFilter)
		interceptor := NewFilteringInterceptor(filter, SkipSilently, nil)
		p := newTestPayload(callbacks.Before)
		filterErr := errors.New("filter broke")

		filter.On("ShouldRun", p).Return(false, filterErr)

		err := interceptor.Intercept(p, new(mockHandler))

		assert.ErrorIs(t, err, filterErr)
	})
}

func TestFilters(t *testing.T) {
	after := newTestPayload(callbacks.After)
	before := newTestPayload(callbacks.Before)

	yes := FilterFunc(func(*callbacks.Payload) (bool, error) { return true, nil })
	no := FilterFunc(func(*callbacks.Payload) (bool, error) { return false, nil })
	broken := FilterFunc(func(*callbacks.Payload) (bool, error) { return false, errors.New("broken") })

	tests := []struct {
		name    string
		filter  Filter
		payload *callbacks.Payload
		want    bool
		wantErr bool
	}{
		{"method allowed", NewMethodFilter("bark"), after, true, false},
		{"method denied", NewMethodFilter("eat"), after, false, false},
		{"phase matches", NewPhaseFilter(callbacks.After), after, true, false},
		{"phase differs", NewPhaseFilter(callbacks.After), before, false, false},
		{"composite all true", NewCompositeFilter(yes, yes), after, true, false},
		{"composite one false", NewCompositeFilter(yes, no), after, false, false},
		{"composite error", NewCompositeFilter(broken), after, false, true},
		{"or one true", NewOrFilter(no, yes), after, true, false},
		{"or all false", NewOrFilter(no, no), after, false, false},
		{"or error", NewOrFilter(broken, yes), after, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.ShouldRun(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("value filter reads the invocation values", func(t *testing.T) {
		p := newTestPayload(callbacks.After)
		filter := NewValueFilter("audited", true)

		got, _ := filter.ShouldRun(p)
		assert.False(t, got)

		p.Values().Set("audited", true)
		got, _ = filter.ShouldRun(p)
		assert.True(t, got)
	})
}

func TestConditionalInterceptor(t *testing.T) {
	t.Run("Runs wrapped interceptor when condition holds", func(t *testing.T) {
		inner := new(mockInterceptor)
		interceptor := NewConditionalInterceptor(NewPhaseFilter(callbacks.After), inner)
		p := newTestPayload(callbacks.After)
		handler := new(mockHandler)

		inner.On("Intercept", p, handler).Return(nil)

		err := interceptor.Intercept(p, handler)

		assert.NoError(t, err)
		inner.AssertExpectations(t)
	})

	t.Run("Bypasses wrapped interceptor otherwise", func(t *testing.T) {
		inner := new(mockInterceptor)
		interceptor := NewConditionalInterceptor(NewPhaseFilter(callbacks.After), inner)
		p := newTestPayload(callbacks.Before)
		handler := new(mockHandler)

		handler.On("Handle", p).Return(nil)

		err := interceptor.Intercept(p, handler)

		assert.NoError(t, err)
		inner.AssertNotCalled(t, "Intercept", mock.Anything, mock.Anything)
		handler.AssertExpectations(t)
	})

	t.Run("Name includes the wrapped interceptor", func(t *testing.T) {
		inner := new(mockInterceptor)
		inner.On("Name").Return("Inner")

		interceptor := NewConditionalInterceptor(NewPhaseFilter(callbacks.After), inner)

		assert.Equal(t, "ConditionalInterceptor[Inner]", interceptor.Name())
	})
}
