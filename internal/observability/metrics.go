package observability

import (
	"sync"
	"time"
)

// Metrics is a small in-process facade for upstream-call accounting.
// It exists so platform clients can record calls without a handle on the
// app wiring; the active instance is process-global.
type Metrics struct {
	mu        sync.Mutex
	upstreams map[string]*UpstreamStats
}

type UpstreamStats struct {
	Provider       string  `json:"provider"`
	Path           string  `json:"path"`
	Requests       int64   `json:"requests"`
	Failures       int64   `json:"failures"`
	TotalLatencyMS int64   `json:"total_latency_ms"`
	LastStatus     int     `json:"last_status"`
	AvgLatencyMS   float64 `json:"avg_latency_ms"`
}

var (
	currentMu sync.RWMutex
	current   *Metrics
)

func NewMetrics() *Metrics {
	return &Metrics{upstreams: map[string]*UpstreamStats{}}
}

// SetCurrent installs m as the process-global metrics sink.
func SetCurrent(m *Metrics) {
	currentMu.Lock()
	current = m
	currentMu.Unlock()
}

func Current() *Metrics {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

func (m *Metrics) ObserveUpstreamRequest(provider, path string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := provider + " " + path
	s := m.upstreams[key]
	if s == nil {
		s = &UpstreamStats{Provider: provider, Path: path}
		m.upstreams[key] = s
	}
	s.Requests++
	if status == 0 || status >= 400 {
		s.Failures++
	}
	s.TotalLatencyMS += latency.Milliseconds()
	s.LastStatus = status
}

// Snapshot returns a copy of the accumulated upstream stats.
func (m *Metrics) Snapshot() []UpstreamStats {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]UpstreamStats, 0, len(m.upstreams))
	for _, s := range m.upstreams {
		cp := *s
		if cp.Requests > 0 {
			cp.AvgLatencyMS = float64(cp.TotalLatencyMS) / float64(cp.Requests)
		}
		out = append(out, cp)
	}
	return out
}
