// Package websocket 基于 gorilla/websocket 的文本消息服务端
package websocket

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/pkg/config"
)

// ServerConfig 服务端配置
type ServerConfig struct {
	// 监听地址
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr" validate:"required"`

	// 缓冲区配置
	ReadBufferSize  int   `mapstructure:"read_buffer_size" json:"read_buffer_size" yaml:"read_buffer_size" validate:"gt=0"`
	WriteBufferSize int   `mapstructure:"write_buffer_size" json:"write_buffer_size" yaml:"write_buffer_size" validate:"gt=0"`
	MaxMessageSize  int64 `mapstructure:"max_message_size" json:"max_message_size" yaml:"max_message_size" validate:"gt=0"`

	// 超时配置
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" json:"handshake_timeout" yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	PongTimeout      time.Duration `mapstructure:"pong_timeout" json:"pong_timeout" yaml:"pong_timeout"`
	PingInterval     time.Duration `mapstructure:"ping_interval" json:"ping_interval" yaml:"ping_interval"`

	// MaxConnections 同时在线的连接上限，0 表示不限制
	MaxConnections int `mapstructure:"max_connections" json:"max_connections" yaml:"max_connections" validate:"min=0"`

	// 跨域配置（运行时设置，不序列化）
	CheckOrigin func(r *http.Request) bool `mapstructure:"-" json:"-" yaml:"-"`
}

// DefaultServerConfig 返回默认服务端配置
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:             "127.0.0.1:8765",
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		MaxMessageSize:   4 * 1024,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PongTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		MaxConnections:   16,
	}
}

// Validate 验证服务端配置
func (c *ServerConfig) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if err := config.NewValidator().Validate(c); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	if c.PingInterval > 0 && c.PongTimeout > 0 && c.PingInterval >= c.PongTimeout {
		return errors.Wrap(ErrInvalidConfig, "ping_interval must be less than pong_timeout")
	}
	return nil
}
