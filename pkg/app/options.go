package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// Options 应用选项
type Options struct {
	// ID 进程实例 ID，每次启动随机生成
	ID          string
	Name        string
	StopTimeout time.Duration
	Logger      logger.Logger

	// Loggers 具名日志，Shutdown 时一并刷新
	Loggers *LoggerRegistry
}

// Option 应用选项函数
type Option func(*Options)

// DefaultOptions 默认选项
func DefaultOptions() Options {
	return Options{
		ID:          uuid.NewString(),
		Name:        AppName,
		StopTimeout: 10 * time.Second,
		Logger:      logger.Default(),
	}
}

// WithName 设置应用名称
func WithName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Name = name
		}
	}
}

// WithLogger 设置应用日志
func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithLoggerRegistry 使用已创建的具名日志表
func WithLoggerRegistry(r *LoggerRegistry) Option {
	return func(o *Options) {
		if r != nil {
			o.Loggers = r
		}
	}
}

// WithStopTimeout 设置停止所有服务的最长等待时间
func WithStopTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.StopTimeout = d
		}
	}
}
