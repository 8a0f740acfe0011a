package spell

import (
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/data"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
)

// DispelRadius 扫描驱散目标的半径
const DispelRadius = 40

// DispelMode 驱散方向
type DispelMode int

const (
	// Friendly 驱散友方身上的有害光环
	Friendly DispelMode = iota
	// Hostile 驱散敌方身上的增益光环
	Hostile
)

func (m DispelMode) String() string {
	if m == Hostile {
		return "hostile"
	}
	return "friendly"
}

// Dispel 驱散节点
// 在范围内选出优先级最高且不低于 minPriority 的光环所在单位，优先级相同时取先出现的单位
// 敌方增益不在驱散表中时按 Low 处理，表中登记为 None 的不驱散
// 不指定 types 时驱散任何可驱散类型
func (b *Builder) Dispel(name string, mode DispelMode, minPriority data.DispelPriority, types ...world.DispelType) bt.Node {
	ref := b.resolve(name)
	guard := func() bool {
		return b.ready(ref)
	}

	act := bt.NewAction("dispel "+name, func() bt.Status {
		target := b.dispelTarget(ref, mode, minPriority, types)
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

func (b *Builder) dispelTarget(ref spellRef, mode DispelMode, minPriority data.DispelPriority, types []world.DispelType) world.Unit {
	var units []world.Unit
	if mode == Hostile {
		units = b.game.Enemies(DispelRadius)
	} else {
		units = b.game.Friends(DispelRadius)
	}

	var best world.Unit
	bestPriority := data.DispelPriorityNone
	for _, u := range units {
		if u.Dead() || !b.game.InRange(ref.id, u) {
			continue
		}
		p := b.dispelPriority(u, mode, types)
		if p < minPriority || p == data.DispelPriorityNone {
			continue
		}
		if best == nil || p > bestPriority {
			best, bestPriority = u, p
		}
	}
	return best
}

// dispelPriority 单位身上可驱散光环的最高优先级
func (b *Builder) dispelPriority(u world.Unit, mode DispelMode, types []world.DispelType) data.DispelPriority {
	wantHarmful := mode == Friendly
	best := data.DispelPriorityNone
	for _, a := range u.Auras() {
		if a.Harmful != wantHarmful || !matchesType(a.DispelType, types) {
			continue
		}
		p := b.dispels.Priority(a.ID)
		if mode == Hostile {
			if listed, ok := b.dispels.Lookup(a.ID); ok {
				p = listed
			} else {
				p = data.DispelPriorityLow
			}
		}
		if p > best {
			best = p
		}
	}
	return best
}

// matchesType types 为空时接受任何可驱散类型
func matchesType(t world.DispelType, types []world.DispelType) bool {
	if t == world.DispelNone {
		return false
	}
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}
