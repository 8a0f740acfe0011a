package logger

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidConfig 配置项取值无效
	ErrInvalidConfig = errors.New("logger: invalid config")
	// ErrInvalidOutputPath 启用文件输出但没有路径
	ErrInvalidOutputPath = errors.New("logger: output path is required when file output is enabled")
	// ErrNoOutputEnabled 控制台与文件输出都关闭
	ErrNoOutputEnabled = errors.New("logger: at least one output must be enabled")
	// ErrUnknownRotation 未知的轮换类型
	ErrUnknownRotation = errors.New("logger: unknown rotation type")
)
