package deathknight

import (
	"time"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
)

// PvEName PvE 循环名称
const PvEName = "Death Knight (Unholy) PvE"

const (
	woundRadius    = 8
	epidemicRadius = 15
	aoeRadius      = 12
)

// UnholyPvE 邪恶 PvE 循环
type UnholyPvE struct {
	base
}

// NewUnholyPvE 创建邪恶 PvE 循环
func NewUnholyPvE(deps behavior.Deps) (behavior.Behavior, error) {
	b, err := newBase(deps, "unholy")
	if err != nil {
		return nil, err
	}
	return &UnholyPvE{base: b}, nil
}

func (u *UnholyPvE) Name() string              { return PvEName }
func (u *UnholyPvE) Context() behavior.Context { return behavior.ContextPvE }

// Build 构建行为树
func (u *UnholyPvE) Build() bt.Node {
	s, c := u.spells, u.common
	me := u.me

	return bt.NewSelector("unholy",
		c.WaitForNotSitting(),
		c.WaitForNotMounted(),
		c.WaitForCastOrChannel(),
		c.WaitForTarget(),
		c.WaitForFacing(),
		s.Cast("Raise Dead", spell.On(s.Self()), spell.When(func() bool { return !u.hasPet() })),
		s.Interrupt("Mind Freeze"),
		s.Cast("Claw", spell.On(s.CurrentTarget())),
		bt.NewDecorator("off global cooldown", u.notOnGCD,
			bt.NewSelector("rotation",
				s.Cast("Death Strike", spell.When(func() bool {
					return me().HealthPct() < 95 && world.HasAura(me(), auraDarkSuccor)
				})),
				s.Cast("Death Strike", spell.When(func() bool {
					return me().HealthPct() < 45 && u.runicPower() > 55
				})),
				bt.NewDecorator("aoe", u.aoeActive, u.aoeDamage()),
				u.singleTargetDamage(),
			),
		),
	)
}

func (u *UnholyPvE) aoeActive() bool {
	return u.targetInMelee() && len(u.game.Enemies(aoeRadius)) >= 2
}

func (u *UnholyPvE) cooldownPriority() bt.Node {
	s, c := u.spells, u.common
	onTarget := spell.On(s.CurrentTarget())

	return bt.NewSelector("cooldowns",
		s.Cast("Blood Fury", spell.On(s.Self())),
		s.Cast("Army of the Dead"),
		s.Cast("Rune Strike", onTarget, spell.When(func() bool {
			return u.target() != nil && u.targetWounds() < 4
		})),
		s.Cast("Apocalypse", onTarget, spell.When(func() bool { return u.targetWounds() >= 4 })),
		s.Cast("Apocalypse", spell.On(u.leastWounds)),
		c.UseEquippedItem("Cursed Stone Idol", nil),
		s.Cast("Unholy Assault"),
	)
}

func (u *UnholyPvE) singleTargetDamage() bt.Node {
	s := u.spells
	me := u.me
	onTarget := spell.On(s.CurrentTarget())

	return bt.NewSelector("single target",
		bt.NewDecorator("cooldowns ready", u.cooldownsReady, u.cooldownPriority()),
		s.Cast("Outbreak", onTarget, spell.When(u.missingPlague)),
		s.Cast("Rune Strike", onTarget, spell.When(func() bool { return u.targetWounds() == 0 })),
		s.Cast("Festering Scythe", onTarget, spell.When(func() bool { return world.HasAura(me(), auraFesteringScythe) })),
		s.Cast("Soul Reaper", onTarget, spell.WhenTarget(func(t world.Unit) bool { return t.HealthPct() <= 35 })),
		s.Cast("Death Coil", onTarget, spell.When(func() bool {
			return u.runicPower() > 80 || world.HasAura(me(), auraSuddenDoom)
		})),
		s.Cast("Scourge Strike", onTarget, spell.When(func() bool {
			return u.targetWounds() >= 1 && u.mine(u.target(), auraRottenTouch)
		})),
		s.Cast("Rune Strike", onTarget, spell.When(u.shouldFesteringStrike)),
		s.Cast("Scourge Strike", onTarget, spell.When(u.plaguebringerExpiring)),
		s.Cast("Death Coil", onTarget, spell.When(u.deathRotExpiring)),
		s.Cast("Death Coil", onTarget, spell.When(func() bool { return u.runicPower() > 90 })),
		s.Cast("Scourge Strike", onTarget, spell.When(func() bool { return u.targetWounds() >= 3 })),
		s.Cast("Death Coil", onTarget, spell.When(func() bool { return u.runicPower() >= 40 })),
	)
}

func (u *UnholyPvE) aoeDamage() bt.Node {
	s := u.spells
	me := u.me
	onTarget := spell.On(s.CurrentTarget())

	return bt.NewSelector("aoe damage",
		bt.NewDecorator("cooldowns ready", u.cooldownsReady, u.cooldownPriority()),
		s.Cast("Outbreak", onTarget, spell.When(u.missingPlague)),
		s.Cast("Rune Strike", onTarget, spell.When(func() bool { return u.targetWounds() == 0 })),
		s.Cast("Festering Scythe", onTarget, spell.When(func() bool { return world.HasAura(me(), auraFesteringScythe) })),
		s.Cast("Death and Decay", spell.When(func() bool { return !world.HasAura(me(), auraDeathAndDecay) })),
		s.Cast("Scourge Strike", onTarget, spell.When(func() bool { return !world.HasAura(me(), auraPlaguebringer) })),
		s.Cast("Outbreak", onTarget, spell.When(u.shouldOutbreakAoE)),
		s.Cast("Epidemic", spell.When(func() bool { return u.runicPower() > 90 && u.shouldEpidemic() })),
		s.Cast("Epidemic", spell.When(func() bool { return world.HasAura(me(), auraSuddenDoom) })),
		s.Cast("Scourge Strike", spell.On(u.anyWounded)),
		s.Cast("Epidemic", spell.When(u.shouldEpidemicNoWounds)),
		s.Cast("Scourge Strike", onTarget, spell.When(func() bool { return u.targetWounds() >= 1 })),
		s.Cast("Epidemic", spell.When(u.shouldEpidemic)),
	)
}

// cooldownsReady 爆发开关打开且任一主要冷却可用
func (u *UnholyPvE) cooldownsReady() bool {
	s := u.spells
	return u.burst() && (!s.OnCooldown("Army of the Dead") ||
		!s.OnCooldown("Apocalypse") ||
		!s.OnCooldown("Unholy Assault"))
}

func (u *UnholyPvE) missingPlague() bool {
	t := u.target()
	return t != nil && !u.mine(t, auraVirulentPlague)
}

// shouldFesteringStrike 亡者大军期间只在 0 层时补，平时 2 层及以下补
func (u *UnholyPvE) shouldFesteringStrike() bool {
	n := u.targetWounds()
	if n < 0 {
		return false
	}
	if world.HasAura(u.me(), auraLegionOfSouls) {
		return n == 0
	}
	return n <= 2
}

func (u *UnholyPvE) plaguebringerExpiring() bool {
	a, ok := world.FindAura(u.me(), auraPlaguebringer)
	return u.target() != nil && ok && a.Remaining < 3*time.Second
}

func (u *UnholyPvE) deathRotExpiring() bool {
	a, ok := world.FindAuraFrom(u.target(), auraDeathRot, u.me().GUID())
	return ok && a.Remaining < 2*time.Second
}

func (u *UnholyPvE) shouldOutbreakAoE() bool {
	t := u.target()
	if t == nil {
		return false
	}
	return !u.mine(t, auraVirulentPlague) && u.spells.OnCooldown("Apocalypse")
}

func (u *UnholyPvE) shouldEpidemic() bool {
	if !u.mine(u.target(), auraVirulentPlague) {
		return false
	}
	threshold := 3
	if world.HasAura(u.me(), auraImprovedDeathCoil) {
		threshold = 4
	}
	return len(u.game.Enemies(epidemicRadius)) >= threshold
}

func (u *UnholyPvE) shouldEpidemicNoWounds() bool {
	if !u.mine(u.target(), auraVirulentPlague) {
		return false
	}
	enemies := u.game.Enemies(epidemicRadius)
	for _, e := range enemies {
		if u.wounds(e) > 0 {
			return false
		}
	}
	return len(enemies) >= 2
}

// facingEnemies 近处且面向的敌人
func (u *UnholyPvE) facingEnemies() []world.Unit {
	var out []world.Unit
	for _, e := range u.game.Enemies(woundRadius) {
		if u.me().Facing(e) {
			out = append(out, e)
		}
	}
	return out
}

// leastWounds 我施加的溃烂之伤层数最少的敌人
func (u *UnholyPvE) leastWounds() world.Unit {
	var (
		best  world.Unit
		count int
	)
	for _, e := range u.facingEnemies() {
		n := world.StacksFrom(e, auraFesteringWound, u.me().GUID())
		if best == nil || n < count {
			best, count = e, n
		}
	}
	return best
}

// anyWounded 第一个带有我施加的溃烂之伤的敌人
func (u *UnholyPvE) anyWounded() world.Unit {
	for _, e := range u.facingEnemies() {
		if world.StacksFrom(e, auraFesteringWound, u.me().GUID()) > 0 {
			return e
		}
	}
	return nil
}
