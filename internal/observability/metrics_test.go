package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/assignments", "POST", 201, 10*time.Millisecond)
	m.RecordRequest("/api/assignments", "POST", 201, 30*time.Millisecond)
	m.RecordError("/api/assignments", "POST", "CAPACITY_EXCEEDED")
	m.RecordAdmission(true)
	m.RecordAdmission(false)
	m.RecordCacheLookup(true)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/assignments|POST|201"])
	assert.Equal(t, int64(20), snap.AvgLatencyMillis["/api/assignments|POST|201"])
	assert.Equal(t, int64(1), snap.Errors["/api/assignments|POST|CAPACITY_EXCEEDED"])
	assert.Equal(t, int64(1), snap.AssignmentsAdmitted)
	assert.Equal(t, int64(1), snap.AssignmentsRejected)
	assert.Equal(t, int64(1), snap.CapacityCacheHits)
	assert.Zero(t, snap.CapacityCacheMisses)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordAdmission(true)
		m.RecordCacheLookup(false)
	})
}
