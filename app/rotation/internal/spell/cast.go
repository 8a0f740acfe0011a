package spell

import (
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
)

// TargetSelector 选择施法目标，返回 nil 表示本帧没有合适目标
type TargetSelector func() world.Unit

// CastOption Cast 选项
type CastOption func(*castSpec)

type castSpec struct {
	target      TargetSelector
	conds       []bt.Condition
	targetConds []func(world.Unit) bool
}

// On 指定目标选择器
func On(sel TargetSelector) CastOption {
	return func(s *castSpec) {
		s.target = sel
	}
}

// When 附加条件，多个条件按顺序求与
func When(cond bt.Condition) CastOption {
	return func(s *castSpec) {
		s.conds = append(s.conds, cond)
	}
}

// WhenTarget 对选出的目标附加条件
func WhenTarget(cond func(world.Unit) bool) CastOption {
	return func(s *castSpec) {
		s.targetConds = append(s.targetConds, cond)
	}
}

// Self 以自己为目标
func (b *Builder) Self() TargetSelector {
	return func() world.Unit { return b.game.Me() }
}

// CurrentTarget 当前目标
func (b *Builder) CurrentTarget() TargetSelector {
	return b.game.Target
}

// TargetOrSelf 当前目标，没有时回退到自己
func (b *Builder) TargetOrSelf() TargetSelector {
	return func() world.Unit {
		if t := b.game.Target(); t != nil {
			return t
		}
		return b.game.Me()
	}
}

// Cast 施法节点
//
//	Decorator(就绪 && 条件, Action(选目标 -> 距离检查 -> 施放))
//
// 指令失败返回 Failure，上层 Selector 在同一帧继续尝试后续分支
func (b *Builder) Cast(name string, opts ...CastOption) bt.Node {
	spec := castSpec{}
	for _, opt := range opts {
		opt(&spec)
	}
	if spec.target == nil {
		spec.target = b.TargetOrSelf()
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

	act := bt.NewAction("cast "+name, func() bt.Status {
		target := spec.target()
		if target == nil {
			return bt.StatusFailure
		}
		for _, c := range spec.targetConds {
			if !c(target) {
				return bt.StatusFailure
			}
		}
		if !b.game.InRange(ref.id, target) {
			return bt.StatusFailure
		}
		if err := b.castOn(ref, name, target); err != nil {
			return bt.StatusFailure
		}
		return bt.StatusSuccess
	})

	return bt.NewDecorator(name, guard, act)
}
