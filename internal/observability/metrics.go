package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	latencyTotal map[string]time.Duration
	admissions   int64
	rejections   int64
	cacheHits    int64
	cacheMisses  int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests            map[string]int64 `json:"requests"`
	Errors              map[string]int64 `json:"errors"`
	AvgLatencyMillis    map[string]int64 `json:"avg_latency_ms"`
	AssignmentsAdmitted int64            `json:"assignments_admitted"`
	AssignmentsRejected int64            `json:"assignments_rejected"`
	CapacityCacheHits   int64            `json:"capacity_cache_hits"`
	CapacityCacheMisses int64            `json:"capacity_cache_misses"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		latencyTotal: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latencyTotal[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordAdmission counts an assignment admission decision.
func (m *Metrics) RecordAdmission(admitted bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if admitted {
		m.admissions++
	} else {
		m.rejections++
	}
}

// RecordCacheLookup counts a capacity cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		Requests:            make(map[string]int64, len(m.requestCount)),
		Errors:              make(map[string]int64, len(m.errorCount)),
		AvgLatencyMillis:    make(map[string]int64, len(m.latencyTotal)),
		AssignmentsAdmitted: m.admissions,
		AssignmentsRejected: m.rejections,
		CapacityCacheHits:   m.cacheHits,
		CapacityCacheMisses: m.cacheMisses,
	}
	for k, v := range m.requestCount {
		snap.Requests[k] = v
		if v > 0 {
			snap.AvgLatencyMillis[k] = (m.latencyTotal[k] / time.Duration(v)).Milliseconds()
		}
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
