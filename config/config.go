package config

import (
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

// 环境变量覆盖项（.env 由 main 通过 godotenv 加载）
const (
	EnvEndpoint     = "LIQ_DASHBOARD_ENDPOINT"
	EnvListenAddr   = "LIQ_DASHBOARD_LISTEN_ADDR"
	EnvNATSEndpoint = "LIQ_DASHBOARD_NATS_ENDPOINT"
)

type Dashboard struct {
	Endpoint         string        `toml:"endpoint"`
	ListenAddr       string        `toml:"listen_addr"`
	CacheTTL         time.Duration `toml:"cache_ttl"`
	FetchTimeout     time.Duration `toml:"fetch_timeout"`
	PrefetchInterval time.Duration `toml:"prefetch_interval"` // 0 表示关闭预取
	TopN             int           `toml:"top_n"`
	ChartWidth       int           `toml:"chart_width"`
	ChartHeight      int           `toml:"chart_height"`
	RenderPoolSize   int           `toml:"render_pool_size"`
}

// Filters 页面默认过滤阈值
type Filters struct {
	MinShortLiquidity float64 `toml:"min_short_liquidity"`
	MinLongLiquidity  float64 `toml:"min_long_liquidity"`
	MinFDV            float64 `toml:"min_fdv"`
}

type NATS struct {
	Endpoint string `toml:"endpoint"` // 为空时不发布
	Subject  string `toml:"subject"`
}

type Logger struct {
	Level      string `toml:"level"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"`
	Compress   bool   `toml:"compress"`
	Console    bool   `toml:"console"`
}

type Config struct {
	Dashboard Dashboard `toml:"dashboard"`
	Filters   Filters   `toml:"filters"`
	NATS      NATS      `toml:"nats"`
	Logger    Logger    `toml:"log"`
}

var (
	cfg         *Config
	cfgPath     string
	cfgLock     sync.RWMutex
	lastModTime time.Time
	stopChan    chan struct{}
	stopOnce    sync.Once
)

func Default() *Config {
	return &Config{
		Dashboard: Dashboard{
			Endpoint:         "http://159.223.14.10:4137/marginfi/getBanksOverLiquidity",
			ListenAddr:       "0.0.0.0:8501",
			CacheTTL:         5 * time.Minute,
			FetchTimeout:     30 * time.Second,
			PrefetchInterval: 0,
			TopN:             10,
			ChartWidth:       1024,
			ChartHeight:      480,
			RenderPoolSize:   5,
		},
		NATS: NATS{
			Subject: "liquidity_snapshot",
		},
		Logger: Logger{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 60,
			MaxAge:     7,
			Compress:   false,
			Console:    true,
		},
	}
}

func Load(path string) error {
	c := Default()
	if _, err := toml.DecodeFile(path, c); err != nil {
		return err
	}
	applyEnv(c)
	c.normalize()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	cfgLock.Lock()
	defer cfgLock.Unlock()
	cfg = c
	cfgPath = path
	lastModTime = info.ModTime()

	return nil
}

// Set 直接替换当前配置（无配置文件时使用，例如测试）
func Set(c *Config) {
	cfgLock.Lock()
	defer cfgLock.Unlock()
	cfg = c
}

func Get() *Config {
	cfgLock.RLock()
	defer cfgLock.RUnlock()
	if cfg == nil {
		return Default()
	}
	return cfg
}

// applyEnv 环境变量优先于配置文件
func applyEnv(c *Config) {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Dashboard.Endpoint = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.Dashboard.ListenAddr = v
	}
	if v := os.Getenv(EnvNATSEndpoint); v != "" {
		c.NATS.Endpoint = v
	}
}

// normalize 非法值回退为默认值
func (c *Config) normalize() {
	d := Default()
	if c.Dashboard.CacheTTL <= 0 {
		c.Dashboard.CacheTTL = d.Dashboard.CacheTTL
	}
	if c.Dashboard.FetchTimeout <= 0 {
		c.Dashboard.FetchTimeout = d.Dashboard.FetchTimeout
	}
	if c.Dashboard.PrefetchInterval < 0 {
		c.Dashboard.PrefetchInterval = 0
	}
	if c.Dashboard.TopN <= 0 {
		c.Dashboard.TopN = d.Dashboard.TopN
	}
	if c.Dashboard.ChartWidth <= 0 {
		c.Dashboard.ChartWidth = d.Dashboard.ChartWidth
	}
	if c.Dashboard.ChartHeight <= 0 {
		c.Dashboard.ChartHeight = d.Dashboard.ChartHeight
	}
	if c.Dashboard.RenderPoolSize <= 0 {
		c.Dashboard.RenderPoolSize = d.Dashboard.RenderPoolSize
	}
	if c.Filters.MinShortLiquidity < 0 {
		c.Filters.MinShortLiquidity = 0
	}
	if c.Filters.MinLongLiquidity < 0 {
		c.Filters.MinLongLiquidity = 0
	}
	if c.Filters.MinFDV < 0 {
		c.Filters.MinFDV = 0
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = d.NATS.Subject
	}
}

// Init 初始化配置并启动定期重载（默认10秒）
func Init(path string) error {
	return InitWithInterval(path, 10*time.Second)
}

// InitWithInterval 初始化配置并指定重载间隔
func InitWithInterval(path string, interval time.Duration) error {
	if err := Load(path); err != nil {
		return err
	}

	stopChan = make(chan struct{})
	stopOnce = sync.Once{}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				reloadIfNeeded()
			case <-stopChan:
				return
			}
		}
	}()

	return nil
}

// Stop 停止配置重载
func Stop() {
	if stopChan == nil {
		return
	}
	stopOnce.Do(func() {
		close(stopChan)
	})
}

// reloadIfNeeded 仅在文件修改时重载
// endpoint / listen_addr / cache_ttl 在启动时已绑定，重载只影响按请求读取的字段（如 filters）
func reloadIfNeeded() {
	cfgLock.RLock()
	path := cfgPath
	lastMod := lastModTime
	cfgLock.RUnlock()

	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Error().Err(err).Msg("config stat failed")
		return
	}

	if info.ModTime().After(lastMod) {
		if err = Load(path); err != nil {
			logger.Error().Err(err).Msg("config reload failed")
		} else {
			logger.Info().Msg("config reloaded")
		}
	}
}
