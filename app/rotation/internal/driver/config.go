package driver

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/pkg/config"
)

// Config 驱动配置
type Config struct {
	// FrameInterval 帧间隔
	FrameInterval time.Duration `mapstructure:"frame_interval" json:"frame_interval" yaml:"frame_interval" validate:"gt=0"`
	// Behavior 指定循环名称，为空时按专精与场景选择
	Behavior string `mapstructure:"behavior" json:"behavior" yaml:"behavior"`
	// Specialization 当前专精
	Specialization string `mapstructure:"specialization" json:"specialization" yaml:"specialization"`
	// Context 场景：any/pve/pvp
	Context string `mapstructure:"context" json:"context" yaml:"context" validate:"omitempty,oneof=any pve pvp"`
	// FaultLogRate 故障日志每秒条数上限
	FaultLogRate float64 `mapstructure:"fault_log_rate" json:"fault_log_rate" yaml:"fault_log_rate" validate:"gt=0"`
	// FaultLogBurst 故障日志突发上限
	FaultLogBurst int `mapstructure:"fault_log_burst" json:"fault_log_burst" yaml:"fault_log_burst" validate:"min=1"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		FrameInterval: 100 * time.Millisecond,
		Context:       "any",
		FaultLogRate:  1,
		FaultLogBurst: 5,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := config.NewValidator().Validate(c); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	return nil
}
