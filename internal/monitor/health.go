package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotRef 快照状态引用接口
type SnapshotRef interface {
	SnapshotStatus() SnapshotStatus
}

// PublisherRef NATS发布器引用接口
type PublisherRef interface {
	IsConnected() bool
}

// ClientsRef websocket 连接数引用接口
type ClientsRef interface {
	ClientCount() int
}

// Health 健康检查和指标处理器，挂载到 dashboard 的 mux 上
type Health struct {
	snapshot     SnapshotRef
	publisher    PublisherRef
	clients      ClientsRef
	mu           sync.RWMutex
	healthy      bool
	healthySince time.Time
	startTime    time.Time
}

// NewHealth 创建健康检查处理器，publisher / clients 可为 nil
func NewHealth(snapshot SnapshotRef, publisher PublisherRef, clients ClientsRef) *Health {
	now := time.Now()
	return &Health{
		snapshot:     snapshot,
		publisher:    publisher,
		clients:      clients,
		healthy:      true,
		healthySince: now,
		startTime:    now,
	}
}

// Register 注册健康检查与 Prometheus 端点
func (h *Health) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.healthHandler)
	mux.HandleFunc("GET /health/ready", h.readyHandler)
	mux.HandleFunc("GET /health/live", h.liveHandler)
	mux.HandleFunc("GET /status", h.statusHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// SetHealthy 设置健康状态（关闭时置为 false）
func (h *Health) SetHealthy(healthy bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if healthy && !h.healthy {
		h.healthySince = time.Now()
	}
	h.healthy = healthy
}

func (h *Health) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := h.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

// readyHandler 就绪：健康且最近一次上游拉取没有失败
func (h *Health) readyHandler(w http.ResponseWriter, r *http.Request) {
	if !h.isReady() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Health) liveHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Health) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.GetHealthStatus())
}

func (h *Health) isReady() bool {
	h.mu.RLock()
	healthy := h.healthy
	h.mu.RUnlock()

	if !healthy {
		return false
	}
	if h.snapshot != nil && h.snapshot.SnapshotStatus().LastError != "" {
		return false
	}
	return true
}

// GetHealthStatus 获取健康状态
func (h *Health) GetHealthStatus() HealthStatus {
	h.mu.RLock()
	healthy := h.healthy
	healthySince := h.healthySince
	h.mu.RUnlock()

	status := HealthStatus{
		Healthy:      healthy,
		HealthySince: healthySince.Format(time.RFC3339),
		Uptime:       time.Since(h.startTime).String(),
	}

	if h.snapshot != nil {
		status.Snapshot = h.snapshot.SnapshotStatus()
	}
	if h.publisher != nil {
		status.NATS.Enabled = true
		status.NATS.Connected = h.publisher.IsConnected()
	}
	if h.clients != nil {
		status.WebSocket.Clients = h.clients.ClientCount()
	}

	return status
}

// HealthStatus 健康状态结构
type HealthStatus struct {
	Healthy      bool            `json:"healthy"`
	HealthySince string          `json:"healthy_since"`
	Uptime       string          `json:"uptime"`
	Snapshot     SnapshotStatus  `json:"snapshot"`
	NATS         NATSStatus      `json:"nats"`
	WebSocket    WebSocketStatus `json:"websocket"`
}

// SnapshotStatus 上游快照状态
type SnapshotStatus struct {
	URL       string `json:"url"`
	Loaded    bool   `json:"loaded"`
	Records   int    `json:"records"`
	FetchedAt string `json:"fetched_at,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// NATSStatus NATS连接状态
type NATSStatus struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// WebSocketStatus 页面推送连接状态
type WebSocketStatus struct {
	Clients int `json:"clients"`
}
