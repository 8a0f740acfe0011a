package app

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// LoggerRegistry 具名日志，例如单独输出到文件的 driver 日志
type LoggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]logger.Logger
}

// NewLoggerRegistry 创建具名日志表
func NewLoggerRegistry() *LoggerRegistry {
	return &LoggerRegistry{loggers: make(map[string]logger.Logger)}
}

// Register 注册具名日志，同名覆盖
func (r *LoggerRegistry) Register(name string, l logger.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = l
}

// Get 获取具名日志，不存在时返回 nil
func (r *LoggerRegistry) Get(name string) logger.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loggers[name]
}

// Names 已注册的名称，按字典序
func (r *LoggerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetOr 获取具名日志，未配置时返回 fallback
func (r *LoggerRegistry) GetOr(name string, fallback logger.Logger) logger.Logger {
	if l := r.Get(name); l != nil {
		return l
	}
	return fallback
}

// SyncAll 刷新所有具名日志
func (r *LoggerRegistry) SyncAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.loggers {
		_ = l.Sync()
	}
}

// InitLoggers 按配置创建具名日志，遇到第一个错误即返回
// 注册的日志不带名称前缀，由使用方自行 Named
func (r *LoggerRegistry) InitLoggers(configs map[string]*logger.Config) error {
	for name, cfg := range configs {
		if cfg == nil {
			continue
		}
		l, err := logger.New(cfg)
		if err != nil {
			return errors.Wrapf(err, "failed to create logger %q", name)
		}
		r.Register(name, l)
	}
	return nil
}
