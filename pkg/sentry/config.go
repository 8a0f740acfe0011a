// Package sentry 循环故障上报，使用独立 Hub 不影响全局 SDK 状态
package sentry

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"

	"github.com/lk2023060901/xdooria-rotation/pkg/config"
)

// Config Sentry 配置
type Config struct {
	DSN         string `mapstructure:"dsn" json:"dsn" yaml:"dsn"`
	Environment string `mapstructure:"environment" json:"environment" yaml:"environment"`
	Release     string `mapstructure:"release" json:"release" yaml:"release"`
	// ServerName 为空时使用主机名
	ServerName string `mapstructure:"server_name" json:"server_name" yaml:"server_name"`

	SampleRate       float64 `mapstructure:"sample_rate" json:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
	AttachStacktrace bool    `mapstructure:"attach_stacktrace" json:"attach_stacktrace" yaml:"attach_stacktrace"`
	MaxBreadcrumbs   int     `mapstructure:"max_breadcrumbs" json:"max_breadcrumbs" yaml:"max_breadcrumbs" validate:"min=0"`

	// ShutdownTimeout Close 时等待未发送事件的时间
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`

	Debug bool `mapstructure:"debug" json:"debug" yaml:"debug"`

	// Tags 附加到每个事件的标签
	Tags map[string]string `mapstructure:"tags" json:"tags" yaml:"tags"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Environment:      "production",
		SampleRate:       1.0,
		AttachStacktrace: true,
		MaxBreadcrumbs:   30,
		ShutdownTimeout:  2 * time.Second,
		Tags:             make(map[string]string),
	}
}

// Validate 校验配置，DSN 为必填
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.DSN == "" {
		return ErrInvalidDSN
	}
	if err := config.NewValidator().Validate(c); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	return nil
}

func (c *Config) clientOptions() sentry.ClientOptions {
	serverName := c.ServerName
	if serverName == "" {
		serverName, _ = os.Hostname()
	}
	return sentry.ClientOptions{
		Dsn:              c.DSN,
		Environment:      c.Environment,
		Release:          c.Release,
		ServerName:       serverName,
		SampleRate:       c.SampleRate,
		AttachStacktrace: c.AttachStacktrace,
		MaxBreadcrumbs:   c.MaxBreadcrumbs,
		Debug:            c.Debug,
	}
}
