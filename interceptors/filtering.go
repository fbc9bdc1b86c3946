package interceptors

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/glimte/afterdo-go/callbacks"
)

// ErrCallbackFiltered is returned by a FilteringInterceptor using SkipWithError
var ErrCallbackFiltered = errors.New("callback filtered")

// Filter decides whether a callback runs for a payload
type Filter interface {
	// ShouldRun returns true if the callback should run
	ShouldRun(p *callbacks.Payload) (bool, error)
}

// FilterFunc is a function adapter for Filter
type FilterFunc func(p *callbacks.Payload) (bool, error)

// ShouldRun implements Filter
func (f FilterFunc) ShouldRun(p *callbacks.Payload) (bool, error) {
	return f(p)
}

// SkipBehavior defines what happens when a callback is filtered out
type SkipBehavior int

const (
	// SkipSilently skips the callback without error
	SkipSilently SkipBehavior = iota
	// SkipWithError fails the callback with ErrCallbackFiltered
	SkipWithError
	// SkipWithLog logs that the callback was skipped
	SkipWithLog
)

// FilteringInterceptor filters callbacks based on conditions
type FilteringInterceptor struct {
	filter       Filter
	skipBehavior SkipBehavior
	logger       *slog.Logger
}

// NewFilteringInterceptor creates a new filtering interceptor
func NewFilteringInterceptor(filter Filter, skipBehavior SkipBehavior, logger *slog.Logger) *FilteringInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &FilteringInterceptor{
		filter:       filter,
		skipBehavior: skipBehavior,
		logger:       logger,
	}
}

// Intercept implements Interceptor
func (i *FilteringInterceptor) Intercept(p *callbacks.Payload, next Handler) error {
	shouldRun, err := i.filter.ShouldRun(p)
	if err != nil {
		return fmt.Errorf("filter error: %w", err)
	}

	if !shouldRun {
		switch i.skipBehavior {
		case SkipWithError:
			return fmt.Errorf("%w: method=%s, phase=%s", ErrCallbackFiltered, p.Method(), p.Phase())
		case SkipWithLog:
			i.logger.Info("callback skipped by filter",
				"method", p.Method(),
				"phase", p.Phase().String(),
				"invocationId", p.InvocationID(),
			)
			return nil
		default: // SkipSilently
			return nil
		}
	}

	return next.Handle(p)
}

// Name implements Interceptor
func (i *FilteringInterceptor) Name() string {
	return "FilteringInterceptor"
}

// CompositeFilter combines multiple filters with AND logic
type CompositeFilter struct {
	filters []Filter
}

// NewCompositeFilter creates a new composite filter
func NewCompositeFilter(filters ...Filter) *CompositeFilter {
	return &CompositeFilter{filters: filters}
}

// ShouldRun implements Filter - all filters must return true
func (f *CompositeFilter) ShouldRun(p *callbacks.Payload) (bool, error) {
	for _, filter := range f.filters {
		shouldRun, err := filter.ShouldRun(p)
		if err != nil {
			return false, err
		}
		if !shouldRun {
			return false, nil
		}
	}
	return true, nil
}

// OrFilter combines multiple filters with OR logic
type OrFilter struct {
	filters []Filter
}

// NewOrFilter creates a new OR filter
func NewOrFilter(filters ...Filter) *OrFilter {
	return &OrFilter{filters: filters}
}

// ShouldRun implements Filter - at least one filter must return true
func (f *OrFilter) ShouldRun(p *callbacks.Payload) (bool, error) {
	for _, filter := range f.filters {
		shouldRun, err := filter.ShouldRun(p)
		if err != nil {
			return false, err
		}
		if shouldRun {
			return true, nil
		}
	}
	return false, nil
}

// MethodFilter only lets callbacks of the listed methods run
type MethodFilter struct {
	allowed map[string]bool
}

// NewMethodFilter creates a filter that only allows specific methods
func NewMethodFilter(methods ...string) *MethodFilter {
	allowed := make(map[string]bool)
	for _, m := range methods {
		allowed[m] = true
	}
	return &MethodFilter{allowed: allowed}
}

// ShouldRun implements Filter
func (f *MethodFilter) ShouldRun(p *callbacks.Payload) (bool, error) {
	return f.allowed[p.Method()], nil
}

// PhaseFilter only lets callbacks of one phase run
type PhaseFilter struct {
	phase callbacks.Phase
}

// NewPhaseFilter creates a filter for a single phase
func NewPhaseFilter(phase callbacks.Phase) *PhaseFilter {
	return &PhaseFilter{phase: phase}
}

// ShouldRun implements Filter
func (f *PhaseFilter) ShouldRun(p *callbacks.Payload) (bool, error) {
	return p.Phase() == f.phase, nil
}

// ConditionalInterceptor executes an interceptor only if a condition is met
type ConditionalInterceptor struct {
	condition   Filter
	interceptor Interceptor
}

// NewConditionalInterceptor creates a new conditional interceptor
func NewConditionalInterceptor(condition Filter, interceptor Interceptor) *ConditionalInterceptor {
	return &ConditionalInterceptor{
		condition:   condition,
		interceptor: interceptor,
	}
}

// Intercept implements Interceptor
func (i *ConditionalInterceptor) Intercept(p *callbacks.Payload, next Handler) error {
	shouldExecute, err := i.condition.ShouldRun(p)
	if err != nil {
		return err
	}

	if shouldExecute {
		return i.interceptor.Intercept(p, next)
	}

	return next.Handle(p)
}

// Name implements Interceptor
func (i *ConditionalInterceptor) Name() string {
	return fmt.Sprintf("ConditionalInterceptor[%s]", i.interceptor.Name())
}

// ValueFilter lets callbacks run when the invocation's value bag holds the
// expected value under key, e.g. a flag set by an earlier before-callback
type ValueFilter struct {
	key           string
	expectedValue any
}

// NewValueFilter creates a filter that checks invocation values
func NewValueFilter(key string, expectedValue any) *ValueFilter {
	return &ValueFilter{
		key:           key,
		expectedValue: expectedValue,
	}
}

// ShouldRun implements Filter
func (f *ValueFilter) ShouldRun(p *callbacks.Payload) (bool, error) {
	value, exists := p.Values().Get(f.key)
	if !exists {
		return false, nil
	}

	return value == f.expectedValue, nil
}
