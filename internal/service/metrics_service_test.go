package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest("GET", "/api/v1/calendars/plans", 200, 20*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/calendars/plans", 200, 40*time.Millisecond)
	m.ObserveDBQuery("lessons.pool", 10*time.Millisecond)
	m.ObserveAllocation(&calendar.Stats{Cells: 72, Lessons: 4, Empty: 68}, 6*time.Millisecond, nil)
	m.ObserveAllocation(nil, time.Millisecond, errors.New("boom"))

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 30.0, snapshot.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(1), snapshot.DBQueryCount)
	assert.InDelta(t, 10.0, snapshot.AverageDBQueryDurationMs, 0.001)
	assert.Equal(t, uint64(1), snapshot.CalendarAllocations)
	assert.InDelta(t, 6.0, snapshot.AverageAllocationDurationMs, 0.001)
	assert.Greater(t, snapshot.Goroutines, 0)
	assert.False(t, snapshot.GeneratedAt.IsZero())
}

func TestMetricsServiceHandlerExposesCalendarCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveAllocation(&calendar.Stats{Lessons: 3, Missing: 1}, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `calendar_allocations_total{outcome="ok"} 1`))
	assert.True(t, strings.Contains(body, `calendar_cells_total{kind="lesson"} 3`))
	assert.True(t, strings.Contains(body, `calendar_cells_total{kind="missing"} 1`))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveAllocation(nil, time.Millisecond, nil)
	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
