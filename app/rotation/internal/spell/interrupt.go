package spell

import (
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
)

// InterruptRadius AnyEnemy 模式下扫描敌人的半径
const InterruptRadius = 40

// InterruptOption Interrupt 选项
type InterruptOption func(*interruptSpec)

type interruptSpec struct {
	anyEnemy    bool
	playersOnly bool
	conds       []bt.Condition
}

// AnyEnemy 打断范围内任意正在施放可打断技能的敌人，而不只是当前目标
func AnyEnemy() InterruptOption {
	return func(s *interruptSpec) {
		s.anyEnemy = true
	}
}

// PlayersOnly 只打断玩家
func PlayersOnly() InterruptOption {
	return func(s *interruptSpec) {
		s.playersOnly = true
	}
}

// InterruptWhen 附加条件
func InterruptWhen(cond bt.Condition) InterruptOption {
	return func(s *interruptSpec) {
		s.conds = append(s.conds, cond)
	}
}

// Interrupt 打断节点
func (b *Builder) Interrupt(name string, opts ...InterruptOption) bt.Node {
	spec := interruptSpec{}
	for _, opt := range opts {
		opt(&spec)
	}

	ref := b.resolve(name)
	guard := func() bool {
		if !b.ready(ref) {
			return false
		}
		for _, c := range spec.conds {
			if !c() {
				return false
			}
		}
		return true
	}

	act := bt.NewAction("interrupt "+name, func() bt.Status {
		target := b.interruptTarget(ref, spec)
		if target == nil {
			return bt.StatusFailure
		}
		if err := b.castOn(ref, name, target); err != nil {
			return bt.StatusFailure
		}
		return bt.StatusSuccess
	})

	return bt.NewDecorator(name, guard, act)
}

func (b *Builder) interruptTarget(ref spellRef, spec interruptSpec) world.Unit {
	if !spec.anyEnemy {
		t := b.game.Target()
		if b.interruptible(ref, spec, t) {
			return t
		}
		return nil
	}
	for _, u := range b.game.Enemies(InterruptRadius) {
		if b.interruptible(ref, spec, u) {
			return u
		}
	}
	return nil
}

func (b *Builder) interruptible(ref spellRef, spec interruptSpec, u world.Unit) bool {
	if u == nil || u.Dead() || !u.Attackable() {
		return false
	}
	if spec.playersOnly && !u.IsPlayer() {
		return false
	}
	c, ok := u.Casting()
	if !ok || !c.Interruptible {
		return false
	}
	return b.game.InRange(ref.id, u)
}
