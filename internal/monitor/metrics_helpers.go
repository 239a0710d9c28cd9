package monitor

import "time"

// 便捷函数供外部调用，无需访问 Metrics 实例

// ObserveFetch 记录上游拉取耗时与结果
func ObserveFetch(start time.Time, err error) {
	GetMetrics().ObserveFetch(time.Since(start).Seconds(), err)
}

// SetSnapshot 记录快照行数与刷新时间
func SetSnapshot(records int, fetchedAt time.Time) {
	GetMetrics().SetSnapshot(records, float64(fetchedAt.UnixNano())/1e9)
}

// SetFilteredRows 设置最近一次过滤后的行数
func SetFilteredRows(count int) {
	GetMetrics().SetFilteredRows(count)
}

// IncCacheHit 增加缓存命中计数
func IncCacheHit(cacheType string) {
	GetMetrics().IncCacheHit(cacheType)
}

// IncCacheMiss 增加缓存未命中计数
func IncCacheMiss(cacheType string) {
	GetMetrics().IncCacheMiss(cacheType)
}

// ObserveRender 记录单张图表渲染耗时
func ObserveRender(kind string, start time.Time, err error) {
	GetMetrics().ObserveRender(kind, time.Since(start).Seconds(), err)
}

func IncHTTPRequest(route, code string) {
	GetMetrics().IncHTTPRequest(route, code)
}

func SetWebSocketClients(count int) {
	GetMetrics().SetWebSocketClients(count)
}

func IncEventsPublished(status string) {
	GetMetrics().IncEventsPublished(status)
}
