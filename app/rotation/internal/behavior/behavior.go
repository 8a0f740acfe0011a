// Package behavior 定义一个职业循环（Behavior）以及按专精选择循环的注册表
package behavior

import (
	"strings"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/data"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// Specialization 职业专精，形如 "deathknight.unholy"
type Specialization string

// SpecAll 适用于任意专精
const SpecAll Specialization = "all"

// Context 循环适用的场景
type Context int

const (
	ContextAny Context = iota
	ContextPvE
	ContextPvP
)

var contextNames = [...]string{"any", "pve", "pvp"}

func (c Context) String() string {
	if c < ContextAny || c > ContextPvP {
		return "unknown"
	}
	return contextNames[c]
}

// ParseContext 解析场景名称，空字符串视为 any
func ParseContext(s string) (Context, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ContextAny, true
	}
	for i, name := range contextNames {
		if name == s {
			return Context(i), true
		}
	}
	return ContextAny, false
}

// Matches 两个场景是否兼容，any 与任何场景兼容
func (c Context) Matches(o Context) bool {
	return c == ContextAny || o == ContextAny || c == o
}

// Behavior 一个职业循环
//
// 跨帧的可变状态（计时器、窗口、上次施放等）作为实现结构体的字段保存，
// 行为树节点本身不持有跨帧状态。Build 每次都构建一棵新的树
type Behavior interface {
	Name() string
	Specialization() Specialization
	Context() Context
	Build() bt.Node
}

// Toggler 带运行时开关的循环，例如手动开启的铺 HoT 窗口或爆发
// Toggle 可以在任意 goroutine 调用，请求在下一帧生效，返回是否认识该开关
type Toggler interface {
	Toggle(name string) bool
}

// Deps 构建 Behavior 所需的依赖
type Deps struct {
	Game     world.Game
	Settings *settings.Store
	Logger   logger.Logger
	Observer spell.CastObserver
	Dispels  *data.DispelTable
}

// Log 返回日志器，未设置时使用默认日志器
func (d Deps) Log() logger.Logger {
	if d.Logger == nil {
		return logger.Default()
	}
	return d.Logger
}

// Store 返回设置存储，未设置时创建只含默认值的存储
func (d Deps) Store() *settings.Store {
	if d.Settings == nil {
		return settings.NewStore(nil, d.Log())
	}
	return d.Settings
}

// Spells 创建绑定到 Game 的技能节点构建器
func (d Deps) Spells() *spell.Builder {
	opts := []spell.Option{spell.WithLogger(d.Log())}
	if d.Observer != nil {
		opts = append(opts, spell.WithObserver(d.Observer))
	}
	if d.Dispels != nil {
		opts = append(opts, spell.WithDispelTable(d.Dispels))
	}
	return spell.New(d.Game, opts...)
}

// Factory 创建 Behavior
type Factory func(deps Deps) (Behavior, error)
