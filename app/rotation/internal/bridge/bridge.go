// Package bridge 外部工具与循环之间的 websocket 桥接
//
// 推荐通道每条文本消息是一条施法推荐，不回复；
// 开关通道每条文本消息是一个开关名称，回复 "ok" 或 "error: <原因>"
package bridge

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/pkg/config"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
	"github.com/lk2023060901/xdooria-rotation/pkg/websocket"
)

// 通道名称，用作指标标签
const (
	ChannelHekili = "hekili"
	ChannelToggle = "toggle"
)

// 消息处理结果，用作指标标签
const (
	ResultAccepted  = "accepted"
	ResultUnchanged = "unchanged"
	ResultRejected  = "rejected"
)

// ErrInvalidConfig 无效配置
var ErrInvalidConfig = errors.New("bridge: invalid config")

// Publisher 推荐消息的接收方
type Publisher interface {
	Publish(msg string) (bool, error)
}

// Toggler 开关请求的接收方
type Toggler interface {
	Toggle(name string) error
}

// Recorder 桥接指标
type Recorder interface {
	RecordBridgeMessage(channel, result string)
}

// Config 桥接配置
type Config struct {
	// Enabled 是否启动桥接
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	// HekiliPath 推荐通道路径
	HekiliPath string `mapstructure:"hekili_path" json:"hekili_path" yaml:"hekili_path" validate:"required,startswith=/"`
	// TogglePath 开关通道路径
	TogglePath string `mapstructure:"toggle_path" json:"toggle_path" yaml:"toggle_path" validate:"required,startswith=/,nefield=HekiliPath"`
	// Server websocket 服务端配置
	Server websocket.ServerConfig `mapstructure:"server" json:"server" yaml:"server"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		HekiliPath: "/hekili",
		TogglePath: "/toggle",
		Server:     *websocket.DefaultServerConfig(),
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := config.NewValidator().Validate(c); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	return c.Server.Validate()
}

// Option 桥接选项
type Option func(*Bridge)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l.Named("bridge")
		}
	}
}

// WithRecorder 设置指标
func WithRecorder(r Recorder) Option {
	return func(b *Bridge) {
		if r != nil {
			b.recorder = r
		}
	}
}

// Bridge 桥接服务
type Bridge struct {
	cfg       *Config
	log       logger.Logger
	recorder  Recorder
	publisher Publisher
	toggler   Toggler
	server    *websocket.Server
}

// New 创建桥接服务
func New(cfg *Config, pub Publisher, tog Toggler, opts ...Option) (*Bridge, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to merge bridge config")
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}
	if pub == nil || tog == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "publisher and toggler are required")
	}

	b := &Bridge{
		cfg:       newCfg,
		log:       logger.NewNoop(),
		recorder:  nopRecorder{},
		publisher: pub,
		toggler:   tog,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.server, err = websocket.NewServer(&newCfg.Server, websocket.WithLogger(b.log))
	if err != nil {
		return nil, err
	}
	if err := b.server.Handle(newCfg.HekiliPath, b.onRecommendation); err != nil {
		return nil, err
	}
	if err := b.server.Handle(newCfg.TogglePath, b.onToggle); err != nil {
		return nil, err
	}
	return b, nil
}

// Server 底层 websocket 服务端
func (b *Bridge) Server() *websocket.Server {
	return b.server
}

// Start 开始监听
func (b *Bridge) Start() error {
	return b.server.Start()
}

// Stop 停止监听
func (b *Bridge) Stop() error {
	return b.server.Stop()
}

func (b *Bridge) onRecommendation(_ *websocket.Connection, text string) error {
	changed, err := b.publisher.Publish(text)
	switch {
	case err != nil:
		b.recorder.RecordBridgeMessage(ChannelHekili, ResultRejected)
		b.log.Debug("recommendation rejected", "message", text, "error", err)
	case changed:
		b.recorder.RecordBridgeMessage(ChannelHekili, ResultAccepted)
	default:
		b.recorder.RecordBridgeMessage(ChannelHekili, ResultUnchanged)
	}
	return nil
}

func (b *Bridge) onToggle(conn *websocket.Connection, text string) error {
	name := strings.TrimSpace(text)
	if err := b.toggler.Toggle(name); err != nil {
		b.recorder.RecordBridgeMessage(ChannelToggle, ResultRejected)
		return conn.SendText("error: " + err.Error())
	}
	b.recorder.RecordBridgeMessage(ChannelToggle, ResultAccepted)
	return conn.SendText("ok")
}

type nopRecorder struct{}

func (nopRecorder) RecordBridgeMessage(string, string) {}
