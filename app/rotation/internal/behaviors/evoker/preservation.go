package evoker

import (
	"time"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/common"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/data"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// Name 循环名称
const Name = "Evoker (Preservation)"

const (
	breathRange      = 30
	blossomRadius    = 10
	deepBreathRadius = 10
	fireBreathRange  = 30
	blossomDebounce  = 2 * time.Second
	burstRefresh     = 2 * time.Second
)

// PreservationBehavior 恩护治疗循环
type PreservationBehavior struct {
	game     world.Game
	spells   *spell.Builder
	common   *common.Common
	settings *settings.Store
	log      logger.Logger
}

// NewPreservation 创建恩护循环
func NewPreservation(deps behavior.Deps) (behavior.Behavior, error) {
	store := deps.Store()
	if err := store.Register(Options...); err != nil {
		return nil, err
	}
	l := deps.Log().Named("preservation")
	return &PreservationBehavior{
		game:     deps.Game,
		spells:   deps.Spells(),
		common:   common.New(deps.Game, l),
		settings: store,
		log:      l,
	}, nil
}

func (p *PreservationBehavior) Name() string                            { return Name }
func (p *PreservationBehavior) Specialization() behavior.Specialization { return Preservation }
func (p *PreservationBehavior) Context() behavior.Context               { return behavior.ContextAny }

// Build 构建行为树
func (p *PreservationBehavior) Build() bt.Node {
	s, c := p.spells, p.common
	self := spell.On(s.Self())

	return bt.NewSelector("preservation",
		c.WaitForNotMounted(),
		c.WaitForCastOrChannel(),
		s.Cast("Renewing Blaze", self, spell.When(func() bool {
			return p.enabled(OptRenewingBlaze) && p.meleeAttackers() > 1
		})),
		s.Cast("Obsidian Scales", self, spell.When(func() bool {
			return p.enabled(OptObsidianScales) && p.meleeAttackers() > 1 &&
				!world.HasAura(p.me(), auraRenewingBlaze)
		})),
		s.Interrupt("Quell"),
		bt.NewDecorator("off global cooldown", func() bool { return !s.IsGlobalCooldown() },
			bt.NewSelector("healing",
				s.Cast("Blessing of the Bronze", self, spell.When(func() bool {
					me := p.me()
					return p.enabled(OptBlessingOfBronze) && !me.InCombat() && !world.HasAura(me, auraBronze)
				})),
				s.Cast("Rewind", self, spell.When(func() bool {
					return p.countBelow(OptRewindPct) > p.settings.Int(OptRewindCount)
				})),
				p.dreamBreath(),
				s.Cast("Spiritbloom", spell.On(p.lowestFriend), spell.When(p.spiritbloomReady)),
				s.Cast("Emerald Communion", self, spell.When(func() bool {
					return p.me().PowerPct(world.PowerMana) < 80 &&
						p.countBelow(OptEmeraldCommunionPct) > p.settings.Int(OptEmeraldCommunionCount)
				})),
				s.Cast("Emerald Blossom", spell.On(p.blossomTarget), spell.When(func() bool {
					return p.blossomCount(p.me()) >= p.settings.Int(OptEmeraldBlossomCount) &&
						s.TimeSinceLastCast("Emerald Blossom") > blossomDebounce
				})),
				s.Cast("Echo", spell.On(p.friendBelow(OptEchoPct, func(u world.Unit) bool {
					return !world.HasAura(u, auraEcho)
				}))),
				s.Cast("Verdant Embrace", spell.On(p.friendBelow(OptVerdantEmbracePct, nil))),
				s.Cast("Time Dilation", spell.On(p.timeDilationTarget)),
				s.Cast("Living Flame", spell.On(p.friendBelow(OptLivingFlamePct, nil))),
				s.Cast("Reversion", spell.On(p.reversionTarget)),
				s.Cast("Temporal Anomaly", self, spell.When(func() bool {
					return p.facingFriends() >= p.settings.Int(OptTemporalAnomalyCount)
				})),
				s.Dispel("Naturalize", spell.Friendly, data.DispelPriorityLow, world.DispelMagic, world.DispelPoison),
				s.Interrupt("Tail Swipe"),
				s.Cast("Deep Breath", spell.On(func() world.Unit {
					u, _ := p.deepBreathTarget()
					return u
				}), spell.When(p.deepBreathReady)),
				s.Cast("Fire Breath", spell.On(s.CurrentTarget()), spell.When(func() bool {
					return p.enemiesInFront() > 1
				})),
				s.Cast("Disintegrate", spell.On(p.bestTarget), spell.When(p.essenceBurstCapped)),
				s.Cast("Living Flame", spell.On(p.bestTarget)),
				s.Cast("Azure Strike", spell.On(p.bestTarget), spell.When(func() bool {
					return p.me().Moving()
				})),
			),
		),
	)
}

// dreamBreath 梦境吐息后立即接时光操控
func (p *PreservationBehavior) dreamBreath() bt.Node {
	s := p.spells
	return bt.NewSequence("dream breath",
		s.Cast("Dream Breath", spell.On(func() world.Unit {
			return common.FirstFriend(p.game, common.HealRadius, p.inBreathCone)
		}), spell.When(func() bool {
			pct := p.settings.Float(OptDreamBreathPct)
			n := 0
			for _, u := range p.friends() {
				if p.inBreathCone(u) && u.HealthPct() < pct {
					n++
				}
			}
			return n >= p.settings.Int(OptDreamBreathCount)
		})),
		s.Cast("Tip the Scales", spell.On(s.Self())),
	)
}

func (p *PreservationBehavior) me() world.Player          { return p.game.Me() }
func (p *PreservationBehavior) friends() []world.Unit     { return p.game.Friends(common.HealRadius) }
func (p *PreservationBehavior) enabled(uid string) bool   { return p.settings.Bool(uid) }
func (p *PreservationBehavior) bestTarget() world.Unit    { return common.BestTarget(p.game, common.HealRadius) }
func (p *PreservationBehavior) lowestFriend() world.Unit  { return common.FirstFriend(p.game, common.HealRadius, alive) }
func (p *PreservationBehavior) countBelow(uid string) int { return world.CountBelow(p.friends(), p.settings.Float(uid)) }

func alive(u world.Unit) bool { return !u.Dead() }

func (p *PreservationBehavior) inBreathCone(u world.Unit) bool {
	me := p.me()
	return me.Facing(u) && world.Distance(me, u) <= breathRange
}

// friendBelow 血量低于设置值且满足 pred 的第一个友方
func (p *PreservationBehavior) friendBelow(uid string, pred func(world.Unit) bool) spell.TargetSelector {
	return func() world.Unit {
		pct := p.settings.Float(uid)
		return common.FirstFriend(p.game, common.HealRadius, func(u world.Unit) bool {
			return u.HealthPct() < pct && (pred == nil || pred(u))
		})
	}
}

// meleeAttackers 近战距离内以自己为目标的敌人数量
func (p *PreservationBehavior) meleeAttackers() int {
	return len(common.Attackers(p.game, p.me(), common.MeleeRange))
}

func (p *PreservationBehavior) spiritbloomReady() bool {
	me := p.me()
	pct := p.settings.Float(OptSpiritbloomPct)
	n := 0
	for _, u := range p.friends() {
		if world.Distance(me, u) <= breathRange && u.HealthPct() < pct {
			n++
		}
	}
	return n >= p.settings.Int(OptSpiritbloomCount)
}

// blossomCount center 周围需要翡翠之花的友方数量
func (p *PreservationBehavior) blossomCount(center world.Unit) int {
	pct := p.settings.Float(OptEmeraldBlossomPct)
	n := 0
	for _, u := range p.friends() {
		if world.Distance(center, u) <= blossomRadius && !world.HasAura(u, auraEcho) && u.HealthPct() < pct {
			n++
		}
	}
	return n
}

// blossomTarget 覆盖需要治疗的友方最多的单位，数量相同时取血量更低的
func (p *PreservationBehavior) blossomTarget() world.Unit {
	var best world.Unit
	bestCount := 0
	for _, u := range p.friends() {
		if n := p.blossomCount(u); n > bestCount {
			best, bestCount = u, n
		}
	}
	return best
}

// timeDilationTarget 坦克被三个以上敌人攻击或正被不可打断的技能瞄准时返回坦克
func (p *PreservationBehavior) timeDilationTarget() world.Unit {
	if !p.enabled(OptTimeDilation) {
		return nil
	}
	tanks := common.Tanks(p.game, common.HealRadius)
	if len(tanks) == 0 {
		return nil
	}
	tank := tanks[0]

	attackers := common.Attackers(p.game, tank, common.HealRadius)
	if len(attackers) >= 3 {
		return tank
	}
	for _, e := range attackers {
		if c, ok := e.Casting(); ok && !c.Interruptible {
			return tank
		}
	}
	return nil
}

// reversionTarget 优先补低血量友方，满充能时给坦克和治疗预铺
func (p *PreservationBehavior) reversionTarget() world.Unit {
	missing := func(u world.Unit) bool { return !world.HasAura(u, auraReversion) }
	if u := p.friendBelow(OptReversionPct, missing)(); u != nil {
		return u
	}
	if p.spells.Charges("Reversion") != 2 {
		return nil
	}
	for _, u := range common.Tanks(p.game, common.HealRadius) {
		if missing(u) {
			return u
		}
	}
	for _, u := range common.Healers(p.game, common.HealRadius) {
		if missing(u) {
			return u
		}
	}
	return nil
}

// facingFriends 面前的友方数量，不含自己
func (p *PreservationBehavior) facingFriends() int {
	me := p.me()
	n := 0
	for _, u := range p.friends() {
		if u.GUID() != me.GUID() && me.Facing(u) {
			n++
		}
	}
	return n
}

func (p *PreservationBehavior) enemiesInFront() int {
	me := p.me()
	n := 0
	for _, u := range p.game.Enemies(fireBreathRange) {
		if me.Facing(u) {
			n++
		}
	}
	return n
}

// deepBreathTarget 周围敌人最多的敌人及其覆盖数量
func (p *PreservationBehavior) deepBreathTarget() (world.Unit, int) {
	enemies := p.game.Enemies(common.HealRadius)
	var best world.Unit
	bestCount := 0
	for _, u := range enemies {
		if n := len(world.Within(enemies, u, deepBreathRadius)); n > bestCount {
			best, bestCount = u, n
		}
	}
	return best, bestCount
}

func (p *PreservationBehavior) deepBreathReady() bool {
	if !p.enabled(OptDeepBreath) {
		return false
	}
	_, n := p.deepBreathTarget()
	return len(p.game.Enemies(common.HealRadius)) > 2 && n >= p.settings.Int(OptDeepBreathMinTargets)
}

// essenceBurstCapped 精华迸发满层或即将消失
func (p *PreservationBehavior) essenceBurstCapped() bool {
	a, ok := world.FindAura(p.me(), auraEssenceBurst)
	if !ok {
		return false
	}
	return a.Stacks == 2 || (a.Remaining > 0 && a.Remaining < burstRefresh)
}
