package world

import "github.com/cockroachdb/errors"

var (
	// ErrNotKnown 技能未学会
	ErrNotKnown = errors.New("world: spell not known")

	// ErrNotReady 技能冷却中
	ErrNotReady = errors.New("world: not ready")

	// ErrGlobalCooldown 公共冷却中
	ErrGlobalCooldown = errors.New("world: on global cooldown")

	// ErrInvalidTarget 目标无效
	ErrInvalidTarget = errors.New("world: invalid target")

	// ErrOutOfRange 目标超出范围
	ErrOutOfRange = errors.New("world: out of range")

	// ErrInsufficientResource 资源不足
	ErrInsufficientResource = errors.New("world: insufficient resource")

	// ErrBusy 正在施法
	ErrBusy = errors.New("world: already casting")

	// ErrNoItem 物品不存在或不可用
	ErrNoItem = errors.New("world: item unavailable")
)
