package logger

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-rotation/pkg/config"
)

// Level 日志等级
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
	PanicLevel Level = "panic"
	FatalLevel Level = "fatal"
)

// Format 日志格式
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// RotationType 轮换类型
type RotationType string

const (
	RotationBySize RotationType = "size"
	RotationByTime RotationType = "time"
)

// Config 日志配置
type Config struct {
	Level  Level  `mapstructure:"level" validate:"omitempty,oneof=debug info warn error panic fatal"`
	Format Format `mapstructure:"format" validate:"omitempty,oneof=json console"`

	EnableConsole bool `mapstructure:"enable_console"`
	EnableFile    bool `mapstructure:"enable_file"`
	// OutputPath 启用文件输出时必填
	OutputPath string `mapstructure:"output_path"`

	// TimeFormat 默认 2006-01-02 15:04:05.000，帧日志需要毫秒
	TimeFormat string `mapstructure:"time_format"`

	Rotation RotationConfig `mapstructure:"rotation"`

	EnableStacktrace bool  `mapstructure:"enable_stacktrace"`
	StacktraceLevel  Level `mapstructure:"stacktrace_level" validate:"omitempty,oneof=debug info warn error panic fatal"`

	// 采样：每秒前 SamplingInitial 条全部输出，之后每 SamplingThereafter 条输出 1 条
	EnableSampling     bool `mapstructure:"enable_sampling"`
	SamplingInitial    int  `mapstructure:"sampling_initial" validate:"min=0"`
	SamplingThereafter int  `mapstructure:"sampling_thereafter" validate:"min=0"`

	Development bool `mapstructure:"development"`

	GlobalFields map[string]interface{} `mapstructure:"global_fields"`
}

// RotationConfig 文件轮换配置
// size 使用 lumberjack，time 使用 file-rotatelogs
type RotationConfig struct {
	Type RotationType `mapstructure:"type" validate:"omitempty,oneof=size time"`

	// 按大小，MaxSize 单位 MB，MaxAge 单位天
	MaxSize    int  `mapstructure:"max_size" validate:"min=0"`
	MaxBackups int  `mapstructure:"max_backups" validate:"min=0"`
	MaxAge     int  `mapstructure:"max_age" validate:"min=0"`
	Compress   bool `mapstructure:"compress"`

	// 按时间
	RotationTime    time.Duration `mapstructure:"rotation_time" validate:"min=0"`
	MaxAgeTime      time.Duration `mapstructure:"max_age_time" validate:"min=0"`
	RotationPattern string        `mapstructure:"rotation_pattern"`
}

// DefaultConfig 默认配置，只输出到控制台
func DefaultConfig() *Config {
	return &Config{
		Level:         InfoLevel,
		Format:        ConsoleFormat,
		EnableConsole: true,
		TimeFormat:    "2006-01-02 15:04:05.000",
		Rotation: RotationConfig{
			Type:            RotationBySize,
			MaxSize:         50,
			MaxBackups:      5,
			MaxAge:          7,
			Compress:        true,
			RotationTime:    24 * time.Hour,
			MaxAgeTime:      7 * 24 * time.Hour,
			RotationPattern: ".%Y%m%d",
		},
		EnableStacktrace:   true,
		StacktraceLevel:    ErrorLevel,
		SamplingInitial:    100,
		SamplingThereafter: 100,
		GlobalFields:       make(map[string]interface{}),
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.EnableFile && c.OutputPath == "" {
		return ErrInvalidOutputPath
	}
	if !c.EnableConsole && !c.EnableFile {
		return ErrNoOutputEnabled
	}
	if err := config.NewValidator().Validate(c); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	return nil
}
