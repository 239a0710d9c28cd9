package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/utrading/utrading-liquidity-dashboard/internal/chart"
	"github.com/utrading/utrading-liquidity-dashboard/internal/dashboard"
	"github.com/utrading/utrading-liquidity-dashboard/internal/monitor"
	"github.com/utrading/utrading-liquidity-dashboard/internal/render"
	"github.com/utrading/utrading-liquidity-dashboard/internal/table"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/goplus"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

// Server dashboard HTTP 服务
type Server struct {
	svc     *dashboard.Service
	handler http.Handler
	srv     *http.Server
}

// New 注册全部路由；ws 与 health 可为 nil
func New(addr string, svc *dashboard.Service, ws http.Handler, health *monitor.Health) *Server {
	s := &Server{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/table", s.handleTable)
	mux.HandleFunc("GET /api/charts", s.handleCharts)
	mux.HandleFunc("GET /charts/{file}", s.handleChartImage)
	if ws != nil {
		mux.Handle("GET /ws", ws)
	}
	if health != nil {
		health.Register(mux)
	}

	s.handler = instrument(mux)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler 带指标统计的根 handler（测试用）
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start 后台启动监听
func (s *Server) Start() {
	goplus.Go(func() {
		logger.Info().Str("addr", s.srv.Addr).Msg("dashboard server started")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("dashboard server error")
		}
	})
}

// Shutdown 停止接受新请求并等待进行中的请求
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) thresholds(r *http.Request) (table.Thresholds, error) {
	return table.ParseThresholds(r.URL.Query(), s.svc.Defaults())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	entry, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":        entry.URL,
		"fetched_at": entry.FetchedAt,
		"expires_at": entry.ExpiresAt,
		"records":    entry.Records,
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	th, err := s.thresholds(r)
	if err != nil {
		writeError(w, err)
		return
	}

	v, err := s.svc.View(r.Context(), th)
	if err != nil {
		writeError(w, err)
		return
	}

	column, desc := sortParams(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"thresholds": v.Thresholds,
		"fetched_at": v.FetchedAt,
		"expires_at": v.ExpiresAt,
		"sort":       column,
		"order":      order(desc),
		"table":      v.Table.Sort(column, desc),
		"filtered":   v.Filtered.Sort(column, desc),
	})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	th, err := s.thresholds(r)
	if err != nil {
		writeError(w, err)
		return
	}

	v, err := s.svc.View(r.Context(), th)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"thresholds": v.Thresholds,
		"fetched_at": v.FetchedAt,
		"charts":     v.Charts,
	})
}

// handleChartImage /charts/{kind}.{svg|png}
func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	name, ext, ok := strings.Cut(r.PathValue("file"), ".")
	if !ok {
		http.NotFound(w, r)
		return
	}
	kind, err := chart.ParseKind(name)
	if err != nil {
		writeError(w, err)
		return
	}
	format, err := render.ParseFormat(ext)
	if err != nil {
		writeError(w, err)
		return
	}
	th, err := s.thresholds(r)
	if err != nil {
		writeError(w, err)
		return
	}

	img, err := s.svc.Chart(r.Context(), kind, format, th)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

func sortParams(r *http.Request) (string, bool) {
	q := r.URL.Query()
	column := q.Get("sort")
	if !table.IsSortColumn(column) {
		return "", false
	}
	return column, strings.EqualFold(q.Get("order"), "desc")
}

func order(desc bool) string {
	if desc {
		return "desc"
	}
	return "asc"
}

// statusFor 错误到 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, render.ErrNoData):
		return http.StatusNoContent
	case errors.Is(err, table.ErrInvalidThreshold):
		return http.StatusBadRequest
	case errors.Is(err, chart.ErrUnknownKind), errors.Is(err, render.ErrUnsupportedFormat):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		// 其余均为上游拉取失败
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}
	if code >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", code).Msg("request failed")
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("write json response failed")
	}
}

// statusRecorder 记录响应码，并透传 Hijack 供 websocket 升级
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijack")
	}
	if r.status == 0 {
		r.status = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// instrument 按路由模式统计请求
func instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		mux.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		_, route := mux.Handler(r)
		if route == "" {
			route = "unmatched"
		}
		monitor.IncHTTPRequest(route, strconv.Itoa(rec.status))

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
