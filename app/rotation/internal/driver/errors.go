package driver

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("driver: invalid config")

	// ErrOverlap 上一帧尚未结束
	ErrOverlap = errors.New("driver: step already in progress")

	// ErrNoBehavior 没有激活的循环
	ErrNoBehavior = errors.New("driver: no active behavior")

	// ErrAlreadyRunning 驱动已启动
	ErrAlreadyRunning = errors.New("driver: already running")

	// ErrNilBehavior 循环为空
	ErrNilBehavior = errors.New("driver: nil behavior")

	// ErrUnknownToggle 当前循环不支持该开关
	ErrUnknownToggle = errors.New("driver: unknown toggle")

	// ErrHookPanic 帧钩子 panic
	ErrHookPanic = errors.New("driver: frame hook panicked")
)
