package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Option 管理器选项
type Option func(*manager)

// WithViper 使用外部创建的 viper 实例，应放在其他选项之前
func WithViper(v *viper.Viper) Option {
	return func(m *manager) {
		if v != nil {
			m.v = v
		}
	}
}

// WithDefaults 批量设置默认值
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for k, v := range defaults {
			m.v.SetDefault(k, v)
		}
	}
}

// WithConfigType 文件扩展名无法识别格式时指定类型，如 yaml
func WithConfigType(typ string) Option {
	return func(m *manager) { m.v.SetConfigType(typ) }
}

// WithEnvPrefix 同 BindEnv
func WithEnvPrefix(prefix string) Option {
	return func(m *manager) {
		if prefix == "" {
			return
		}
		m.v.SetEnvPrefix(prefix)
		m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		m.v.AutomaticEnv()
	}
}
