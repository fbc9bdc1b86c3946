package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/glimte/afterdo-go/interceptors"
)

const maxSamples = 100

// SimpleMetricsCollector implements a basic in-memory metrics collector for
// callback runs. Methods are keyed the way MetricsInterceptor reports them,
// e.g. Dog.bark.
type SimpleMetricsCollector struct {
	mu sync.RWMutex

	// Run counters by method and phase
	callbackCounters map[string]map[string]int64

	// Error counters by method and error type
	errorCounters map[string]map[string]int64

	// Timing stats by method and phase
	callbackTimes map[string]map[string]*TimeStats
}

// TimeStats tracks timing statistics
type TimeStats struct {
	Count   int64
	TotalUs int64
	MinUs   int64
	MaxUs   int64
	samples []int64 // last maxSamples samples for percentiles
}

// NewSimpleMetricsCollector creates a new in-memory metrics collector
func NewSimpleMetricsCollector() *SimpleMetricsCollector {
	return &SimpleMetricsCollector{
		callbackCounters: make(map[string]map[string]int64),
		errorCounters:    make(map[string]map[string]int64),
		callbackTimes:    make(map[string]map[string]*TimeStats),
	}
}

// IncrementCallbackCount implements interceptors.MetricsCollector
func (c *SimpleMetricsCollector) IncrementCallbackCount(method string, phase string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.callbackCounters[method] == nil {
		c.callbackCounters[method] = make(map[string]int64)
	}
	c.callbackCounters[method][phase]++
}

// RecordCallbackTime implements interceptors.MetricsCollector
func (c *SimpleMetricsCollector) RecordCallbackTime(method string, phase string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	durationUs := duration.Microseconds()

	if c.callbackTimes[method] == nil {
		c.callbackTimes[method] = make(map[string]*TimeStats)
	}
	stats, exists := c.callbackTimes[method][phase]
	if !exists {
		stats = &TimeStats{
			MinUs:   durationUs,
			MaxUs:   durationUs,
			samples: make([]int64, 0, maxSamples),
		}
		c.callbackTimes[method][phase] = stats
	}

	stats.Count++
	stats.TotalUs += durationUs

	if durationUs < stats.MinUs {
		stats.MinUs = durationUs
	}
	if durationUs > stats.MaxUs {
		stats.MaxUs = durationUs
	}

	if len(stats.samples) >= maxSamples {
		stats.samples = stats.samples[1:]
	}
	stats.samples = append(stats.samples, durationUs)
}

// IncrementErrorCount implements interceptors.MetricsCollector
func (c *SimpleMetricsCollector) IncrementErrorCount(method string, phase string, errorType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.errorCounters[method] == nil {
		c.errorCounters[method] = make(map[string]int64)
	}
	c.errorCounters[method][errorType]++
}

// CallbackCount returns how often callbacks of method ran in phase
func (c *SimpleMetricsCollector) CallbackCount(method, phase string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.callbackCounters[method][phase]
}

// GetMetricsSummary returns a summary of all collected metrics
func (c *SimpleMetricsCollector) GetMetricsSummary() MetricsSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := MetricsSummary{
		CallbackCounts: make(map[string]map[string]int64),
		ErrorCounts:    make(map[string]map[string]int64),
		TimingStats:    make(map[string]map[string]TimingStats),
	}

	for method, phases := range c.callbackCounters {
		summary.CallbackCounts[method] = make(map[string]int64)
		for phase, count := range phases {
			summary.CallbackCounts[method][phase] = count
		}
	}

	for method, errors := range c.errorCounters {
		summary.ErrorCounts[method] = make(map[string]int64)
		for errorType, count := range errors {
			summary.ErrorCounts[method][errorType] = count
		}
	}

	for method, phases := range c.callbackTimes {
		summary.TimingStats[method] = make(map[string]TimingStats)
		for phase, stats := range phases {
			timing := TimingStats{
				Count: stats.Count,
				MinUs: stats.MinUs,
				MaxUs: stats.MaxUs,
			}
			if stats.Count > 0 {
				timing.AvgUs = stats.TotalUs / stats.Count
			}
			if len(stats.samples) > 0 {
				sorted := sortedCopy(stats.samples)
				timing.P50Us = percentile(sorted, 0.50)
				timing.P95Us = percentile(sorted, 0.95)
				timing.P99Us = percentile(sorted, 0.99)
			}
			summary.TimingStats[method][phase] = timing
		}
	}

	return summary
}

func sortedCopy(samples []int64) []int64 {
	sorted := make([]int64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// percentile picks the value at p from sorted samples
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)-1) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// MetricsSummary represents a snapshot of all metrics
type MetricsSummary struct {
	CallbackCounts map[string]map[string]int64       `json:"callback_counts"`
	ErrorCounts    map[string]map[string]int64       `json:"error_counts"`
	TimingStats    map[string]map[string]TimingStats `json:"timing_stats"`
}

// TotalCallbacks returns the number of callback runs across all methods
func (s MetricsSummary) TotalCallbacks() int64 {
	var total int64
	for _, phases := range s.CallbackCounts {
		for _, count := range phases {
			total += count
		}
	}
	return total
}

// TotalErrors returns the number of failed callback runs across all methods
func (s MetricsSummary) TotalErrors() int64 {
	var total int64
	for _, errors := range s.ErrorCounts {
		for _, count := range errors {
			total += count
		}
	}
	return total
}

// TimingStats represents callback time statistics for one method and phase
type TimingStats struct {
	Count int64 `json:"count"`
	AvgUs int64 `json:"avg_us"`
	MinUs int64 `json:"min_us"`
	MaxUs int64 `json:"max_us"`
	P50Us int64 `json:"p50_us"`
	P95Us int64 `json:"p95_us"`
	P99Us int64 `json:"p99_us"`
}

// Reset clears all collected metrics
func (c *SimpleMetricsCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.callbackCounters = make(map[string]map[string]int64)
	c.errorCounters = make(map[string]map[string]int64)
	c.callbackTimes = make(map[string]map[string]*TimeStats)
}

var _ interceptors.MetricsCollector = (*SimpleMetricsCollector)(nil)
