package observability

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// latencyBounds are the upper bounds (exclusive) of the latency buckets.
// The last bucket is unbounded.
var latencyBounds = [...]time.Duration{
	time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
}

// PerformanceMonitor aggregates per-route request metrics and connection
// counts. All methods are safe for concurrent use.
type PerformanceMonitor struct {
	enabled  atomic.Bool
	handlers sync.Map // route -> *HandlerMetrics

	global struct {
		totalRequests atomic.Uint64
		totalErrors   atomic.Uint64
		totalConns    atomic.Uint64
		activeConns   atomic.Int64
	}
}

// HandlerMetrics stores per-route metrics
type HandlerMetrics struct {
	Name          string
	Count         atomic.Uint64
	Errors        atomic.Uint64
	TotalDuration atomic.Uint64
	MinDuration   atomic.Uint64
	MaxDuration   atomic.Uint64

	latencyBuckets [len(latencyBounds) + 1]atomic.Uint64
}

// Bottleneck is a route whose numbers look unhealthy
type Bottleneck struct {
	Type     string
	Location string
	Severity int
	Details  string
}

// NewPerformanceMonitor creates an enabled monitor
func NewPerformanceMonitor() *PerformanceMonitor {
	pm := &PerformanceMonitor{}
	pm.enabled.Store(true)
	return pm
}

// SetEnabled turns recording on or off
func (pm *PerformanceMonitor) SetEnabled(on bool) {
	pm.enabled.Store(on)
}

// ConnOpened counts an accepted connection
func (pm *PerformanceMonitor) ConnOpened() {
	pm.global.totalConns.Add(1)
	pm.global.activeConns.Add(1)
}

// ConnClosed counts a finished connection
func (pm *PerformanceMonitor) ConnClosed() {
	pm.global.activeConns.Add(-1)
}

// ActiveConns returns the number of open connections
func (pm *PerformanceMonitor) ActiveConns() int64 {
	return pm.global.activeConns.Load()
}

// RecordRequest records one request/response cycle
func (pm *PerformanceMonitor) RecordRequest(route string, duration time.Duration, isError bool) {
	if !pm.enabled.Load() {
		return
	}

	val, _ := pm.handlers.LoadOrStore(route, &HandlerMetrics{Name: route})
	metrics := val.(*HandlerMetrics)

	metrics.Count.Add(1)
	pm.global.totalRequests.Add(1)
	if isError {
		metrics.Errors.Add(1)
		pm.global.totalErrors.Add(1)
	}

	d := uint64(duration.Nanoseconds())
	metrics.TotalDuration.Add(d)
	updateMinMax(metrics, d)
	metrics.latencyBuckets[bucketFor(duration)].Add(1)
}

func updateMinMax(m *HandlerMetrics, d uint64) {
	for {
		min := m.MinDuration.Load()
		if min != 0 && d >= min {
			break
		}
		if m.MinDuration.CompareAndSwap(min, d) {
			break
		}
	}
	for {
		max := m.MaxDuration.Load()
		if d <= max {
			break
		}
		if m.MaxDuration.CompareAndSwap(max, d) {
			break
		}
	}
}

func bucketFor(d time.Duration) int {
	for i, bound := range latencyBounds {
		if d < bound {
			return i
		}
	}
	return len(latencyBounds)
}

// HandlerSnapshot is a point-in-time copy of HandlerMetrics
type HandlerSnapshot struct {
	Name    string
	Count   uint64
	Errors  uint64
	Avg     time.Duration
	Min     time.Duration
	Max     time.Duration
	Buckets []uint64
}

// Snapshot returns per-route metrics sorted by route name
func (pm *PerformanceMonitor) Snapshot() []HandlerSnapshot {
	var out []HandlerSnapshot

	pm.handlers.Range(func(_, value any) bool {
		m := value.(*HandlerMetrics)
		s := HandlerSnapshot{
			Name:    m.Name,
			Count:   m.Count.Load(),
			Errors:  m.Errors.Load(),
			Min:     time.Duration(m.MinDuration.Load()),
			Max:     time.Duration(m.MaxDuration.Load()),
			Buckets: make([]uint64, len(m.latencyBuckets)),
		}
		if s.Count > 0 {
			s.Avg = time.Duration(m.TotalDuration.Load() / s.Count)
		}
		for i := range m.latencyBuckets {
			s.Buckets[i] = m.latencyBuckets[i].Load()
		}
		out = append(out, s)
		return true
	})

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Bottlenecks flags routes with high average latency or error rate
func (pm *PerformanceMonitor) Bottlenecks() []Bottleneck {
	var found []Bottleneck

	for _, s := range pm.Snapshot() {
		if s.Count == 0 {
			continue
		}

		if s.Avg > 100*time.Millisecond {
			found = append(found, Bottleneck{
				Type:     "latency",
				Location: s.Name,
				Severity: 8,
				Details:  fmt.Sprintf("High latency (%v avg)", s.Avg),
			})
		}

		rate := float64(s.Errors) / float64(s.Count)
		if rate > 0.05 {
			found = append(found, Bottleneck{
				Type:     "errors",
				Location: s.Name,
				Severity: 10,
				Details:  fmt.Sprintf("%.1f%% error rate", rate*100),
			})
		}
	}

	return found
}

// LogSummary writes totals, one line per route and any bottlenecks
func (pm *PerformanceMonitor) LogSummary(log zerolog.Logger) {
	log.Info().
		Uint64("requests", pm.global.totalRequests.Load()).
		Uint64("errors", pm.global.totalErrors.Load()).
		Uint64("connections", pm.global.totalConns.Load()).
		Int64("active", pm.global.activeConns.Load()).
		Msg("request summary")

	for _, s := range pm.Snapshot() {
		log.Info().
			Str("route", s.Name).
			Uint64("count", s.Count).
			Uint64("errors", s.Errors).
			Dur("avg", s.Avg).
			Dur("min", s.Min).
			Dur("max", s.Max).
			Msg("route stats")
	}

	for _, b := range pm.Bottlenecks() {
		log.Warn().Str("type", b.Type).Str("route", b.Location).Int("severity", b.Severity).Msg(b.Details)
	}
}
