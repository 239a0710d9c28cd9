package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/utrading/utrading-liquidity-dashboard/internal/monitor"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/goplus"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

const TypeSnapshotRefreshed = "snapshot_refreshed"

// Message 推送给页面的消息
type Message struct {
	Type      string `json:"type"`
	URL       string `json:"url,omitempty"`
	Records   int    `json:"records"`
	FetchedAt int64  `json:"fetched_at"` // 毫秒
	ExpiresAt int64  `json:"expires_at"`
}

// SnapshotRefreshed 快照刷新通知
func SnapshotRefreshed(url string, records int, fetchedAt, expiresAt time.Time) Message {
	return Message{
		Type:      TypeSnapshotRefreshed,
		URL:       url,
		Records:   records,
		FetchedAt: fetchedAt.UnixMilli(),
		ExpiresAt: expiresAt.UnixMilli(),
	}
}

// Hub 管理页面连接并广播快照刷新
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// 允许任意 Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
	}
}

// ServeHTTP 升级连接并启动读写协程
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("ws upgrade failed")
		return
	}

	c := newClient(h, conn)
	if !h.register(c) {
		c.Close()
		return
	}

	goplus.Go(c.writePump)
	goplus.Go(c.readPump)
}

// Broadcast 序列化一次后投递给所有连接，慢连接被断开
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error().Err(err).Msg("marshal ws message failed")
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(data) {
			logger.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("ws client too slow, dropping")
			h.unregister(c)
			c.Close()
		}
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 断开所有连接，之后的连接请求直接关闭
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.Close()
	}
	monitor.SetWebSocketClients(0)
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	monitor.SetWebSocketClients(len(h.clients))
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	monitor.SetWebSocketClients(len(h.clients))
}
