package deathknight

import (
	"time"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/common"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
)

// PvPName PvP 循环名称
const PvPName = "Death Knight (Unholy) PvP"

const (
	strangulateRadius   = 20
	blindingSleetRadius = 10
)

// 视为已被控制的光环
var crowdControl = []world.AuraID{auraStrangulate, auraBlindingSleet, auraAsphyxiate}

// UnholyPvP 邪恶 PvP 循环
type UnholyPvP struct {
	base
}

// NewUnholyPvP 创建邪恶 PvP 循环
func NewUnholyPvP(deps behavior.Deps) (behavior.Behavior, error) {
	b, err := newBase(deps, "unholy-pvp")
	if err != nil {
		return nil, err
	}
	return &UnholyPvP{base: b}, nil
}

func (u *UnholyPvP) Name() string              { return PvPName }
func (u *UnholyPvP) Context() behavior.Context { return behavior.ContextPvP }

// Build 构建行为树
func (u *UnholyPvP) Build() bt.Node {
	s, c := u.spells, u.common
	me := u.me

	return bt.NewSelector("unholy pvp",
		c.WaitForNotSitting(),
		c.WaitForNotMounted(),
		c.WaitForCastOrChannel(),
		c.WaitForTarget(),
		bt.NewDecorator("pet transformed", u.petTransformed,
			s.Interrupt("Leap", spell.PlayersOnly()),
		),
		s.Interrupt("Gnaw", spell.PlayersOnly()),
		c.WaitForFacing(),
		s.Cast("Raise Dead", spell.On(s.Self()), spell.When(func() bool { return !u.hasPet() })),
		s.Interrupt("Mind Freeze", spell.PlayersOnly()),
		s.Cast("Claw", spell.On(s.CurrentTarget())),
		s.Cast("Strangulate", spell.On(u.strangulateTarget), spell.When(func() bool {
			t := u.target()
			return t != nil && t.HealthPct() < 70
		})),
		s.Cast("Blinding Sleet", spell.On(u.blindingSleetTarget)),
		bt.NewDecorator("off global cooldown", u.notOnGCD,
			bt.NewSelector("rotation",
				c.WaitForNotWaitingForArenaToStart(),
				s.Cast("Death Strike", spell.When(func() bool {
					return me().HealthPct() < 95 && world.HasAura(me(), auraDarkSuccor)
				})),
				s.Cast("Death Strike", spell.When(func() bool {
					return me().HealthPct() < 55 &&
						(s.TimeSinceLastCast("Death Strike") > 3*time.Second || u.runicPower() > 50)
				})),
				bt.NewDecorator("burst", func() bool { return u.burst() && u.targetInMelee() },
					u.burstDamage(),
				),
				u.sustainedDamage(),
			),
		),
	)
}

func (u *UnholyPvP) burstDamage() bt.Node {
	s := u.spells
	onTarget := spell.On(s.CurrentTarget())

	return bt.NewSelector("burst",
		s.Cast("Army of the Dead"),
		s.Cast("Summon Gargoyle"),
		s.Cast("Abomination Limb"),
		s.Cast("Unholy Assault"),
		s.Cast("Apocalypse", spell.When(func() bool { return u.targetWounds() >= 4 })),
		s.Cast("Death and Decay", spell.On(s.Self()), spell.When(u.shouldDeathAndDecay)),
		s.Cast("Dark Transformation"),
		s.Cast("Death Coil", onTarget, spell.When(func() bool {
			return u.shouldDeathCoil(90) && u.targetWounds() >= 3 && u.apocalypseOnCooldown()
		})),
		s.Cast("Outbreak", onTarget, spell.When(u.missingPlague)),
		s.Cast("Scourge Strike", onTarget, spell.When(func() bool {
			return u.mine(u.target(), auraFesteringWound) && u.apocalypseOnCooldown()
		})),
		s.Cast("Death Coil", onTarget, spell.When(func() bool {
			return u.shouldDeathCoil(60) && (u.apocalypseOnCooldown() || u.me().Power(world.PowerRunes) < 2)
		})),
		s.Cast("Festering Strike", onTarget, spell.When(func() bool {
			return u.target() != nil && u.targetWounds() < 5
		})),
	)
}

func (u *UnholyPvP) sustainedDamage() bt.Node {
	s := u.spells
	onTarget := spell.On(s.CurrentTarget())

	return bt.NewSelector("sustained",
		s.Cast("Outbreak", onTarget, spell.When(u.missingPlague)),
		s.Cast("Death and Decay", spell.When(u.shouldDeathAndDecay)),
		s.Cast("Festering Strike", onTarget, spell.When(func() bool {
			return u.target() != nil && u.targetWounds() < 5
		})),
		s.Cast("Scourge Strike", onTarget, spell.When(func() bool {
			return u.mine(u.target(), auraFesteringWound)
		})),
		s.Cast("Death Coil", onTarget, spell.When(func() bool { return u.shouldDeathCoil(60) })),
	)
}

func (u *UnholyPvP) missingPlague() bool {
	t := u.target()
	return t != nil && !u.mine(t, auraVirulentPlague)
}

// shouldDeathCoil 符文能量超过 threshold，或有末日突降时超过 threshold-20
func (u *UnholyPvP) shouldDeathCoil(threshold int) bool {
	rp := u.runicPower()
	return rp > threshold || (rp > threshold-20 && world.HasAura(u.me(), auraSuddenDoom))
}

func (u *UnholyPvP) shouldDeathAndDecay() bool {
	return u.targetInMelee() && !world.HasAura(u.me(), auraDeathAndDecay)
}

func (u *UnholyPvP) apocalypseOnCooldown() bool {
	return u.spells.CooldownRemaining("Apocalypse") > 0
}

func (u *UnholyPvP) petTransformed() bool {
	pet := u.me().Pet()
	return pet != nil && world.HasAura(pet, auraDarkTransform)
}

func controlled(t world.Unit) bool {
	for _, id := range crowdControl {
		if world.HasAura(t, id) {
			return true
		}
	}
	return false
}

// strangulateTarget 20 码内第一个未被控制的敌方治疗
func (u *UnholyPvP) strangulateTarget() world.Unit {
	for _, e := range common.EnemyPlayers(u.game, strangulateRadius) {
		if e.IsHealer() && !controlled(e) {
			return e
		}
	}
	return nil
}

// blindingSleetTarget 10 码内面向的、非当前目标的未被控制的敌方治疗
func (u *UnholyPvP) blindingSleetTarget() world.Unit {
	current := u.game.Target()
	for _, e := range common.EnemyPlayers(u.game, blindingSleetRadius) {
		if current != nil && e.GUID() == current.GUID() {
			continue
		}
		if u.me().Facing(e) && e.IsHealer() && !controlled(e) {
			return e
		}
	}
	return nil
}
