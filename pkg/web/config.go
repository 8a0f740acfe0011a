// Package web 基于 gin 的 HTTP 服务
package web

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/xdooria-rotation/pkg/config"
)

// Config Web 服务配置
type Config struct {
	Addr         string        `mapstructure:"addr" json:"addr" yaml:"addr" validate:"required"`
	Mode         string        `mapstructure:"mode" json:"mode" yaml:"mode" validate:"oneof=debug release test"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout" validate:"gt=0"`

	// EnableCORS 允许浏览器跨域访问
	EnableCORS bool `mapstructure:"enable_cors" json:"enable_cors" yaml:"enable_cors"`

	// 全局限流，RequestsPerSecond 为 0 表示不限流
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second" validate:"min=0"`
	Burst             int     `mapstructure:"burst" json:"burst" yaml:"burst" validate:"min=0"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:8080",
		Mode:         gin.ReleaseMode,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		Burst:        10,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := config.NewValidator().Validate(c); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	return nil
}
