package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yearprogress/yearprogress/internal/events"
	"github.com/yearprogress/yearprogress/internal/progress"
)

func newTestServer(t *testing.T) (*httptest.Server, *events.Store) {
	t.Helper()
	loc, err := progress.ResolveZone(progress.DefaultTimezone)
	require.NoError(t, err)

	store := events.NewStore(filepath.Join(t.TempDir(), "events.json"), events.DefaultEvents(), zap.NewNop())
	srv := New(store, Options{
		Zone:       progress.DefaultTimezone,
		Location:   loc,
		TargetYear: 2026,
		Clock:      func() time.Time { return time.Date(2026, 1, 3, 0, 0, 0, 0, loc) },
	}, zap.NewNop())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestStatus(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap progress.Snapshot
	decode(t, resp, &snap)

	assert.Equal(t, "Asia/Jakarta", snap.Timezone)
	assert.Equal(t, 2026, snap.Info.Year)
	assert.Equal(t, 3, snap.Info.DayOfYear)
	assert.Equal(t, 362, snap.Info.DaysRemaining)
	assert.InDelta(t, 0.82, snap.Info.Progress, 0.01)
	require.Len(t, snap.Markers, 2)
	assert.Equal(t, "Ramadan", snap.Markers[0].Name)
	assert.Equal(t, 48, snap.Markers[0].DaysRemaining)
	assert.InDelta(t, 13.97, snap.Markers[0].Position, 0.01)
}

func TestStatus_YearOverride(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/status?year=2028")
	require.NoError(t, err)

	var snap progress.Snapshot
	decode(t, resp, &snap)
	assert.Equal(t, 2028, snap.Info.Year)
	assert.Equal(t, 366, snap.Info.TotalDays)
	assert.True(t, snap.Info.IsLeapYear)
}

func TestStatus_BadYear(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/status?year=soon")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	decode(t, resp, &body)
	assert.Contains(t, body.Error, "year")
}

func TestEventsLifecycle(t *testing.T) {
	ts, store := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/events", "application/json",
		strings.NewReader(`{"name":"Independence Day","date":"2026-08-17","color":"#ef4444"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created events.Event
	decode(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Independence Day", created.Name)

	resp, err = http.Get(ts.URL + "/api/v1/events")
	require.NoError(t, err)
	var listed []events.Event
	decode(t, resp, &listed)
	require.Len(t, listed, 3)
	assert.Equal(t, created.ID, listed[2].ID)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/events/"+created.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	evs, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, evs, 2)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddEvent_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"missing name", `{"date":"2026-08-17"}`},
		{"unparseable date", `{"name":"X","date":"someday"}`},
		{"missing date", `{"name":"X"}`},
		{"bad color", `{"name":"X","date":"2026-08-17","color":"red"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t)

			resp, err := http.Post(ts.URL+"/api/v1/events", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body ErrorResponse
			decode(t, resp, &body)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestMetrics(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "yearprogress_day_of_year 3")
	assert.Contains(t, out, "yearprogress_days_remaining 362")
	assert.Contains(t, out, "yearprogress_events_total 2")
	assert.Contains(t, out, "yearprogress_progress_percent 0.82")
}
