package spell

import (
	"math"
	"time"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/data"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// Never 从未施放过时 TimeSinceLastCast 的返回值
const Never = time.Duration(math.MaxInt64)

// CastObserver 指令结果观察者，err 为 nil 表示成功
type CastObserver interface {
	ObserveCast(spell string, err error)
}

// Option Builder 选项
type Option func(*Builder)

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		b.log = l
	}
}

// WithDispelTable 设置驱散优先级表
func WithDispelTable(t *data.DispelTable) Option {
	return func(b *Builder) {
		b.dispels = t
	}
}

// WithObserver 设置指令观察者
func WithObserver(o CastObserver) Option {
	return func(b *Builder) {
		b.observer = o
	}
}

// Builder 把技能名称和条件组装成行为树节点
// 施法历史属于 Builder 实例，每个 Behavior 各自持有一个
type Builder struct {
	game     world.Game
	log      logger.Logger
	dispels  *data.DispelTable
	observer CastObserver
	ids      map[string]spellRef
	last     map[world.SpellID]time.Time
}

type spellRef struct {
	id    world.SpellID
	known bool
}

// New 创建 Builder
func New(game world.Game, opts ...Option) *Builder {
	b := &Builder{
		game: game,
		ids:  make(map[string]spellRef),
		last: make(map[world.SpellID]time.Time),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.Default()
	}
	if b.dispels == nil {
		b.dispels = data.DefaultDispelTable()
	}
	return b
}

// Game 底层游戏接口
func (b *Builder) Game() world.Game {
	return b.game
}

// resolve 名称到 ID，结果缓存，未知名称只记录一次日志
func (b *Builder) resolve(name string) spellRef {
	if ref, ok := b.ids[name]; ok {
		return ref
	}
	id, ok := b.game.SpellID(name)
	ref := spellRef{id: id, known: ok}
	if !ok {
		b.log.Warn("unknown spell, node will always fail", "spell", name)
	}
	b.ids[name] = ref
	return ref
}

// ready 技能已学会、冷却完成且资源足够
func (b *Builder) ready(ref spellRef) bool {
	if !ref.known || !b.game.Known(ref.id) {
		return false
	}
	return b.game.Cooldown(ref.id).Ready() && b.game.Usable(ref.id)
}

func (b *Builder) castOn(ref spellRef, name string, target world.Unit) error {
	err := b.game.Cast(ref.id, target)
	if b.observer != nil {
		b.observer.ObserveCast(name, err)
	}
	if err != nil {
		b.log.Debug("cast failed", "spell", name, "target", target.Name(), "error", err)
		return err
	}
	b.last[ref.id] = b.game.Now()
	b.log.Debug("cast", "spell", name, "target", target.Name())
	return nil
}

// Has 技能是否已学会
func (b *Builder) Has(name string) bool {
	ref := b.resolve(name)
	return ref.known && b.game.Known(ref.id)
}

// IsGlobalCooldown 是否处于公共冷却
func (b *Builder) IsGlobalCooldown() bool {
	return b.game.GlobalCooldown() > 0
}

// TimeSinceLastCast 距该 Builder 上次成功施放的时间，从未施放时为 Never
func (b *Builder) TimeSinceLastCast(name string) time.Duration {
	ref := b.resolve(name)
	at, ok := b.last[ref.id]
	if !ref.known || !ok {
		return Never
	}
	return b.game.Now().Sub(at)
}

// CooldownRemaining 冷却剩余时间，未知技能视为永远不可用
func (b *Builder) CooldownRemaining(name string) time.Duration {
	ref := b.resolve(name)
	if !ref.known {
		return Never
	}
	return b.game.Cooldown(ref.id).Remaining
}

// OnCooldown 技能是否冷却中
func (b *Builder) OnCooldown(name string) bool {
	ref := b.resolve(name)
	if !ref.known {
		return true
	}
	return !b.game.Cooldown(ref.id).Ready()
}

// Charges 当前充能数
func (b *Builder) Charges(name string) int {
	ref := b.resolve(name)
	if !ref.known {
		return 0
	}
	return b.game.Cooldown(ref.id).Charges
}

// Lookup 先按 ID 再按名称查找已学会的技能
func (b *Builder) Lookup(id world.SpellID, name string) (world.SpellID, bool) {
	if id != 0 && b.game.Known(id) {
		return id, true
	}
	if name == "" {
		return 0, false
	}
	ref := b.resolve(name)
	if !ref.known || !b.game.Known(ref.id) {
		return 0, false
	}
	return ref.id, true
}

// CastID 不做任何条件检查直接施放，结果同样记入施法历史和观察者
func (b *Builder) CastID(id world.SpellID, name string, target world.Unit) error {
	return b.castOn(spellRef{id: id, known: true}, name, target)
}
