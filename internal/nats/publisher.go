package nats

import (
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/utrading/utrading-liquidity-dashboard/internal/monitor"
	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

// Publisher NATS 发布器
type Publisher struct {
	*nats.Conn
	subject string
	mu      sync.RWMutex
	closed  bool
}

// NewPublisher 创建 NATS 发布器，subject 为空时使用 TopicLiquiditySnapshot
func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("liquidity-dashboard"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			monitor.GetMetrics().SetNATSConnected(false)
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			monitor.GetMetrics().SetNATSConnected(true)
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}

	if subject == "" {
		subject = TopicLiquiditySnapshot
	}

	p := &Publisher{
		Conn:    conn,
		subject: subject,
	}

	// 更新指标
	monitor.GetMetrics().SetNATSConnected(true)

	return p, nil
}

// PublishSnapshot 发布快照刷新事件
func (p *Publisher) PublishSnapshot(event *SnapshotEvent) error {
	data, err := event.Marshal()
	if err != nil {
		monitor.IncEventsPublished("error")
		return err
	}

	if err := p.Publish(p.subject, data); err != nil {
		monitor.IncEventsPublished("error")
		logger.Error().Err(err).Str("subject", p.subject).Msg("publish snapshot event failed")
		return err
	}

	monitor.IncEventsPublished("success")
	return nil
}

// IsConnected 检查发布器是否已连接
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed && p.Conn != nil && p.Conn.IsConnected()
}

// Close 关闭连接
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	// 更新指标
	monitor.GetMetrics().SetNATSConnected(false)

	if p.Conn != nil {
		if err := p.Conn.Drain(); err != nil {
			p.Conn.Close()
		}
	}
	return nil
}
