// Package config 配置文件加载、热更新、合并与校验
package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Manager 配置管理器
// 读取方法并发安全，Watch 回调在文件重新读取后触发
type Manager interface {
	LoadFile(path string) error
	BindEnv(prefix string)
	Unmarshal(v any) error
	UnmarshalKey(key string, v any) error
	SetDefault(key string, value any)
	Get(key string) any
	GetString(key string) string
	GetInt(key string) int
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	IsSet(key string) bool
	AllSettings() map[string]any
	Watch(onChange func()) error
}

// 编辑器保存一次文件通常会产生多个写事件
const watchDebounce = 100 * time.Millisecond

type manager struct {
	mu sync.RWMutex
	v  *viper.Viper

	listeners []func()
	watching  bool
	pending   *time.Timer
}

// NewManager 创建配置管理器
func NewManager(opts ...Option) Manager {
	m := &manager{v: viper.New()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrConfigFileNotFound, "%s", path)
		}
		return errors.Wrapf(err, "stat %s", path)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.SetConfigFile(path)
	return errors.Wrapf(m.v.ReadInConfig(), "failed to read %s", path)
}

// BindEnv 环境变量覆盖配置，例如 ROTATION_DRIVER_FRAME_INTERVAL 对应 driver.frame_interval
func (m *manager) BindEnv(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prefix != "" {
		m.v.SetEnvPrefix(prefix)
	}
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	m.v.AutomaticEnv()
}

func (m *manager) Unmarshal(v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return errors.Wrap(m.v.Unmarshal(v), "failed to unmarshal config")
}

func (m *manager) UnmarshalKey(key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return errors.Wrapf(m.v.UnmarshalKey(key, v), "failed to unmarshal %q", key)
}

func (m *manager) SetDefault(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.SetDefault(key, value)
}

func lookup[T any](m *manager, read func(*viper.Viper, string) T, key string) T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return read(m.v, key)
}

func (m *manager) Get(key string) any                   { return lookup(m, (*viper.Viper).Get, key) }
func (m *manager) GetString(key string) string          { return lookup(m, (*viper.Viper).GetString, key) }
func (m *manager) GetInt(key string) int                { return lookup(m, (*viper.Viper).GetInt, key) }
func (m *manager) GetFloat64(key string) float64        { return lookup(m, (*viper.Viper).GetFloat64, key) }
func (m *manager) GetBool(key string) bool              { return lookup(m, (*viper.Viper).GetBool, key) }
func (m *manager) GetDuration(key string) time.Duration { return lookup(m, (*viper.Viper).GetDuration, key) }
func (m *manager) IsSet(key string) bool                { return lookup(m, (*viper.Viper).IsSet, key) }

func (m *manager) AllSettings() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.AllSettings()
}

// Watch 注册变更回调，首次调用时开始监听已加载的文件
func (m *manager) Watch(onChange func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.v.ConfigFileUsed() == "" {
		return errors.Wrap(ErrConfigFileNotFound, "no config file loaded")
	}
	m.listeners = append(m.listeners, onChange)
	if m.watching {
		return nil
	}
	m.watching = true
	m.v.OnConfigChange(m.changed)
	m.v.WatchConfig()
	return nil
}

// changed 合并短时间内的连续事件，只在最后一次之后通知
func (m *manager) changed(fsnotify.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		m.pending = time.AfterFunc(watchDebounce, m.notify)
		return
	}
	m.pending.Reset(watchDebounce)
}

func (m *manager) notify() {
	m.mu.RLock()
	listeners := append([]func(){}, m.listeners...)
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
