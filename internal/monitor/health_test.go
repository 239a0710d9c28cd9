package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshot struct{ status SnapshotStatus }

func (f *fakeSnapshot) SnapshotStatus() SnapshotStatus { return f.status }

type fakePublisher struct{ connected bool }

func (f *fakePublisher) IsConnected() bool { return f.connected }

type fakeClients struct{ n int }

func (f *fakeClients) ClientCount() int { return f.n }

func newTestMux(h *Health) *http.ServeMux {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func TestHealth_Status(t *testing.T) {
	snap := &fakeSnapshot{status: SnapshotStatus{URL: "http://upstream", Loaded: true, Records: 3}}
	h := NewHealth(snap, &fakePublisher{connected: true}, &fakeClients{n: 2})

	rec := httptest.NewRecorder()
	newTestMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Healthy)
	assert.Equal(t, 3, status.Snapshot.Records)
	assert.True(t, status.NATS.Enabled)
	assert.True(t, status.NATS.Connected)
	assert.Equal(t, 2, status.WebSocket.Clients)
}

func TestHealth_NilRefs(t *testing.T) {
	h := NewHealth(nil, nil, nil)
	status := h.GetHealthStatus()

	assert.True(t, status.Healthy)
	assert.False(t, status.NATS.Enabled)
	assert.Equal(t, 0, status.WebSocket.Clients)
}

func TestHealth_Ready(t *testing.T) {
	snap := &fakeSnapshot{}
	h := NewHealth(snap, nil, nil)
	mux := newTestMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// 上游失败时不就绪
	snap.status.LastError = "connection refused"
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// 存活检查不受影响
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth_SetHealthy(t *testing.T) {
	h := NewHealth(nil, nil, nil)
	mux := newTestMux(h)

	h.SetHealthy(false)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetHealthy(true)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics_Endpoint(t *testing.T) {
	IncCacheHit("snapshot")
	h := NewHealth(nil, nil, nil)

	rec := httptest.NewRecorder()
	newTestMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "liquidity_dashboard_cache_hit_total")
}
