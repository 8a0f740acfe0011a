package sentry

import (
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
)

// BeforeSendFunc 事件发送前回调，返回 nil 表示丢弃
type BeforeSendFunc func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event

// Option 客户端选项
type Option func(*Client)

// WithBeforeSend 设置事件发送前回调
func WithBeforeSend(fn BeforeSendFunc) Option {
	return func(c *Client) {
		c.beforeSend = fn
	}
}

// Client Sentry 客户端
type Client struct {
	hub        *sentry.Hub
	config     *Config
	beforeSend BeforeSendFunc
	closed     atomic.Bool

	// 统计信息
	stats struct {
		eventsTotal    atomic.Uint64
		eventsCaptured atomic.Uint64
		eventsDropped  atomic.Uint64
	}
}

// New 创建 Sentry 客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	clientOpts := cfg.clientOptions()
	if c.beforeSend != nil {
		clientOpts.BeforeSend = c.beforeSend
	}

	client, err := sentry.NewClient(clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sentry client")
	}

	// 独立 Hub，不影响 sentry 全局状态
	c.hub = sentry.NewHub(client, sentry.NewScope())
	c.hub.ConfigureScope(func(scope *sentry.Scope) {
		for key, value := range cfg.Tags {
			scope.SetTag(key, value)
		}
	})

	return c, nil
}

// CaptureException 上报错误，不带额外标签
func (c *Client) CaptureException(err error) *sentry.EventID {
	return c.Report(err, nil)
}

// Report 上报错误，tags 只作用于本次事件
func (c *Client) Report(err error, tags map[string]string) *sentry.EventID {
	if err == nil {
		return nil
	}
	return c.capture(sentry.LevelError, tags, func() *sentry.EventID {
		return c.hub.CaptureException(err)
	})
}

// CaptureMessage 上报文本，例如循环切换
func (c *Client) CaptureMessage(message string, level Level) *sentry.EventID {
	return c.capture(level.sdk(), nil, func() *sentry.EventID {
		return c.hub.CaptureMessage(message)
	})
}

func (c *Client) capture(level sentry.Level, tags map[string]string, send func() *sentry.EventID) *sentry.EventID {
	if c.closed.Load() {
		return nil
	}

	var id *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetTags(tags)
		id = send()
	})

	c.stats.eventsTotal.Add(1)
	if id != nil && *id != "" {
		c.stats.eventsCaptured.Add(1)
	} else {
		c.stats.eventsDropped.Add(1)
	}
	return id
}

// Flush 等待所有事件上报完成
func (c *Client) Flush(timeout time.Duration) bool {
	return c.hub.Flush(timeout)
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}

	c.hub.Flush(c.config.ShutdownTimeout)
	return nil
}

// Stats 获取统计信息
func (c *Client) Stats() Stats {
	return Stats{
		EventsTotal:    c.stats.eventsTotal.Load(),
		EventsCaptured: c.stats.eventsCaptured.Load(),
		EventsDropped:  c.stats.eventsDropped.Load(),
	}
}

// IsClosed 是否已关闭
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
