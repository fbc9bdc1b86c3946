package interceptors

import (
	"log/slog"
	"time"

	"github.com/glimte/afterdo-go/callbacks"
)

// Handler runs a callback for a payload
type Handler interface {
	Handle(p *callbacks.Payload) error
}

// HandlerFunc is a function adapter for Handler
type HandlerFunc func(p *callbacks.Payload) error

// Handle implements Handler
func (f HandlerFunc) Handle(p *callbacks.Payload) error {
	return f(p)
}

// Interceptor wraps the execution of every callback
type Interceptor interface {
	// Intercept runs around next, which eventually invokes the callback
	Intercept(p *callbacks.Payload, next Handler) error

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// InterceptorFunc is a function adapter for Interceptor
type InterceptorFunc struct {
	name string
	fn   func(p *callbacks.Payload, next Handler) error
}

// NewInterceptorFunc creates a new function-based interceptor
func NewInterceptorFunc(name string, fn func(p *callbacks.Payload, next Handler) error) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Intercept implements Interceptor
func (i *InterceptorFunc) Intercept(p *callbacks.Payload, next Handler) error {
	return i.fn(p, next)
}

// Name implements Interceptor
func (i *InterceptorFunc) Name() string {
	return i.name
}

// InterceptorChain manages a chain of interceptors
type InterceptorChain struct {
	interceptors []Interceptor
	logger       *slog.Logger
}

// NewInterceptorChain creates a new interceptor chain
func NewInterceptorChain(logger *slog.Logger) *InterceptorChain {
	if logger == nil {
		logger = slog.Default()
	}

	return &InterceptorChain{
		interceptors: make([]Interceptor, 0),
		logger:       logger,
	}
}

// Add adds an interceptor to the chain
func (c *InterceptorChain) Add(interceptor Interceptor) *InterceptorChain {
	c.interceptors = append(c.interceptors, interceptor)
	return c
}

// Len returns the number of interceptors
func (c *InterceptorChain) Len() int {
	return len(c.interceptors)
}

// Names lists the interceptors in execution order
func (c *InterceptorChain) Names() []string {
	names := make([]string, 0, len(c.interceptors))
	for _, i := range c.interceptors {
		names = append(names, i.Name())
	}
	return names
}

// Execute runs p through the chain, calling final last
func (c *InterceptorChain) Execute(p *callbacks.Payload, final Handler) error {
	if c == nil || len(c.interceptors) == 0 {
		return final.Handle(p)
	}

	// Build the chain in reverse order
	handler := final
	for i := len(c.interceptors) - 1; i >= 0; i-- {
		interceptor := c.interceptors[i]
		currentHandler := handler
		handler = HandlerFunc(func(p *callbacks.Payload) error {
			return interceptor.Intercept(p, currentHandler)
		})
	}

	return handler.Handle(p)
}

// Built-in interceptors

// LoggingInterceptor logs callback execution
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingInterceptor{logger: logger}
}

// Intercept implements Interceptor
func (i *LoggingInterceptor) Intercept(p *callbacks.Payload, next Handler) error {
	start := time.Now()
	attrs := []any{
		"method", p.Method(),
		"phase", p.Phase().String(),
		"receiver", p.Receiver().String(),
		"invocationId", p.InvocationID(),
	}
	if cb := p.Callback(); cb != nil {
		attrs = append(attrs, "callbackId", cb.ID, "source", cb.Source())
	}

	i.logger.Debug("running callback", attrs...)

	err := next.Handle(p)
	attrs = append(attrs, "duration", time.Since(start))

	if err != nil {
		i.logger.Error("callback failed", append(attrs, "error", err)...)
	} else {
		i.logger.Debug("callback finished", attrs...)
	}

	return err
}

// Name implements Interceptor
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}

// MetricsInterceptor collects metrics about callback execution
type MetricsInterceptor struct {
	collector MetricsCollector
}

// MetricsCollector defines the interface for collecting metrics
type MetricsCollector interface {
	IncrementCallbackCount(method string, phase string)
	RecordCallbackTime(method string, phase string, duration time.Duration)
	IncrementErrorCount(method string, phase string, errorType string)
}

// NewMetricsInterceptor creates a new metrics interceptor
func NewMetricsInterceptor(collector MetricsCollector) *MetricsInterceptor {
	return &MetricsInterceptor{collector: collector}
}

// Intercept implements Interceptor
func (i *MetricsInterceptor) Intercept(p *callbacks.Payload, next Handler) error {
	start := time.Now()
	method := metricKey(p)
	phase := p.Phase().String()

	i.collector.IncrementCallbackCount(method, phase)

	err := next.Handle(p)
	i.collector.RecordCallbackTime(method, phase, time.Since(start))

	if err != nil {
		i.collector.IncrementErrorCount(method, phase, "callback_error")
	}

	return err
}

// Name implements Interceptor
func (i *MetricsInterceptor) Name() string {
	return "MetricsInterceptor"
}

// metricKey qualifies the method with the receiver's type, e.g. Dog.bark
func metricKey(p *callbacks.Payload) string {
	if r := p.Receiver(); r != nil {
		return r.Type().Name() + "." + p.Method()
	}
	return p.Method()
}

// ChainBuilder builds a common interceptor chain
type ChainBuilder struct {
	chain  *InterceptorChain
	logger *slog.Logger
}

// NewChainBuilder creates a new builder
func NewChainBuilder(logger *slog.Logger) *ChainBuilder {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChainBuilder{
		chain:  NewInterceptorChain(logger),
		logger: logger,
	}
}

// WithLogging adds logging interceptor
func (b *ChainBuilder) WithLogging() *ChainBuilder {
	b.chain.Add(NewLoggingInterceptor(b.logger))
	return b
}

// WithMetrics adds metrics interceptor
func (b *ChainBuilder) WithMetrics(collector MetricsCollector) *ChainBuilder {
	b.chain.Add(NewMetricsInterceptor(collector))
	return b
}

// WithFiltering adds filtering interceptor
func (b *ChainBuilder) WithFiltering(filter Filter, skipBehavior SkipBehavior) *ChainBuilder {
	b.chain.Add(NewFilteringInterceptor(filter, skipBehavior, b.logger))
	return b
}

// WithCustom adds a custom interceptor
func (b *ChainBuilder) WithCustom(interceptor Interceptor) *ChainBuilder {
	b.chain.Add(interceptor)
	return b
}

// Build returns the built interceptor chain
func (b *ChainBuilder) Build() *InterceptorChain {
	return b.chain
}
