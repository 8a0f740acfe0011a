package druid

import (
	"sync/atomic"
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
const Name = "Druid (Restoration)"

const (
	formCancelRange  = 8
	catEngageRange   = 8
	heartRange       = 6
	roarRange        = 10
	roarMinCasters   = 3
	starfireMin      = 3
	starfireRadius   = 8
	cenarionPct      = 80
	groveFullPct     = 90
	lifebloomRefresh = 4 * time.Second
	markDebounce     = 3 * time.Second
	shredEnergy      = 40
)

// RestorationBehavior 恢复德鲁伊
//
// 除了常规治疗外有两个手动开关：
// ramp 在 resto_ramp_duration 秒内按固定顺序铺 HoT，burst 控制爆发技能。
// Toggle 只记录请求，真正的状态切换在帧循环里完成。
type RestorationBehavior struct {
	game     world.Game
	spells   *spell.Builder
	common   *common.Common
	settings *settings.Store
	log      logger.Logger

	rampReq  atomic.Bool
	burstReq atomic.Bool

	ramp     *behavior.Window
	burst    *behavior.Window
	burstOn  bool
	groveGen int

	formShift *behavior.Timer
	catEntry  *behavior.Timer
	emergency *behavior.Timer
}

var _ behavior.Toggler = (*RestorationBehavior)(nil)

// NewRestoration 创建恢复循环
func NewRestoration(deps behavior.Deps) (behavior.Behavior, error) {
	store := deps.Store()
	if err := store.Register(Options...); err != nil {
		return nil, err
	}
	l := deps.Log().Named("restoration")
	now := deps.Game.Now
	return &RestorationBehavior{
		game:      deps.Game,
		spells:    deps.Spells(),
		common:    common.New(deps.Game, l),
		settings:  store,
		log:       l,
		ramp:      behavior.NewWindow(now, store.Seconds(OptRampDuration)),
		burst:     behavior.NewWindow(now, store.Seconds(OptBurstWindowDuration)),
		formShift: behavior.NewTimer(now),
		catEntry:  behavior.NewTimer(now),
		emergency: behavior.NewTimer(now),
	}, nil
}

func (r *RestorationBehavior) Name() string                            { return Name }
func (r *RestorationBehavior) Specialization() behavior.Specialization { return Restoration }
func (r *RestorationBehavior) Context() behavior.Context               { return behavior.ContextAny }

// Toggle 请求切换 ramp 或 burst
func (r *RestorationBehavior) Toggle(name string) bool {
	switch name {
	case ToggleRamp:
		r.rampReq.Store(true)
	case ToggleBurst:
		r.burstReq.Store(true)
	default:
		return false
	}
	return true
}

// Build 构建行为树
func (r *RestorationBehavior) Build() bt.Node {
	s, c := r.spells, r.common

	return bt.NewSelector("restoration",
		r.updateState(),
		r.cancelFormsOutOfRange(),
		r.prowl(),
		c.WaitForNotMounted(),
		c.WaitForNotSitting(),
		c.WaitForCastOrChannel(),
		bt.NewSelector("main",
			s.Cast("Mark of the Wild", spell.On(r.markTarget), spell.When(func() bool {
				return r.enabled(OptMarkOfTheWild) && s.TimeSinceLastCast("Mark of the Wild") > markDebounce
			})),
			bt.NewDecorator("natures cure", func() bool { return r.enabled(OptNaturesCure) },
				s.Dispel("Nature's Cure", spell.Friendly, data.DispelPriorityLow,
					world.DispelMagic, world.DispelCurse, world.DispelPoison),
			),
			s.Dispel("Soothe", spell.Hostile, data.DispelPriorityLow, world.DispelEnrage),
			r.emergencyHealing(),
			bt.NewDecorator("ramp", r.ramp.Active, r.rampRotation()),
			r.interrupts(),
			r.cooldowns(),
			r.healing(),
			bt.NewDecorator("dps", func() bool { return r.enabled(OptDPS) }, r.damage()),
		),
	)
}

// updateState 同步窗口时长并处理开关请求，总是返回 Failure
func (r *RestorationBehavior) updateState() bt.Node {
	return bt.NewAction("update state", func() bt.Status {
		r.ramp.SetDuration(r.settings.Seconds(OptRampDuration))
		r.burst.SetDuration(r.settings.Seconds(OptBurstWindowDuration))

		if r.rampReq.Swap(false) && r.enabled(OptRampSystem) {
			if r.ramp.Active() {
				r.ramp.Close()
				r.log.Info("ramp stopped")
			} else {
				r.ramp.Open()
				r.log.Info("ramp started", "duration", r.settings.Seconds(OptRampDuration))
			}
		}

		if r.burstReq.Swap(false) {
			if r.enabled(OptBurstWindow) {
				r.burst.Open()
			} else {
				r.burstOn = !r.burstOn
			}
			r.log.Info("burst toggled", "active", r.burstActive())
		}
		return bt.StatusFailure
	})
}

// cancelFormsOutOfRange 战斗中目标超出近战范围时退出猫熊形态
func (r *RestorationBehavior) cancelFormsOutOfRange() bt.Node {
	return bt.NewDecorator("cancel forms", func() bool {
		me, t := r.me(), r.game.Target()
		return me.InCombat() && common.ValidTarget(t) && world.Distance(me, t) > formCancelRange &&
			!r.formLocked() && (r.inCat() || world.HasAura(me, auraBearForm))
	}, bt.NewAction("cancel form", func() bt.Status {
		r.cancelForm()
		return bt.StatusSuccess
	}))
}

func (r *RestorationBehavior) prowl() bt.Node {
	return r.spells.Cast("Prowl", spell.On(r.spells.Self()), spell.When(func() bool {
		me := r.me()
		return r.enabled(OptProwl) && r.inCat() && !me.InCombat() && !world.HasAura(me, auraProwl) &&
			!common.ValidTarget(r.game.Target())
	}))
}

// emergencyHealing 团队或自身危急时的治疗与减伤
func (r *RestorationBehavior) emergencyHealing() bt.Node {
	s := r.spells
	self := spell.On(s.Self())

	return bt.NewSelector("emergency",
		s.Cast("Tranquility", self, spell.When(func() bool {
			return r.enabled(OptTranquility) && r.countAtOrBelow(OptTranquilityPct) >= r.settings.Int(OptTranquilityMin)
		})),
		s.Cast("Renewal", self, spell.When(func() bool {
			return r.enabled(OptRenewal) && r.me().HealthPct() <= r.settings.Float(OptRenewalPct)
		})),
		s.Cast("Barkskin", self, spell.When(func() bool {
			me := r.me()
			return r.enabled(OptBarkskin) && me.InCombat() && me.HealthPct() <= r.settings.Float(OptBarkskinPct) &&
				!world.HasAura(me, auraBarkskin) && !world.HasAura(me, auraIronbark)
		})),
		s.Cast("Nature's Swiftness", self, spell.When(func() bool {
			return r.enabled(OptNaturesSwiftness) && r.friendAtOrBelow(OptNaturesSwiftnessPct, nil)() != nil &&
				!world.HasAura(r.me(), auraSwiftness)
		})),
		s.Cast("Regrowth", spell.On(r.friendAtOrBelow(OptNaturesSwiftnessPct, nil)), spell.When(func() bool {
			return world.HasAura(r.me(), auraSwiftness)
		})),
		s.Cast("Regrowth", spell.On(r.friendAtOrBelow(OptRegrowthEmergencyPct, nil))),
		s.Cast("Swiftmend", spell.On(r.friendAtOrBelow(OptSwiftmendPct, func(u world.Unit) bool {
			return world.HasAura(u, auraRejuvenation) || world.HasAura(u, auraRegrowth) || world.HasAura(u, auraWildGrowth)
		}))),
	)
}

// rampRotation 铺 HoT：野性成长、生命绽放、回春按固定顺序，每个窗口一次林地守护者
func (r *RestorationBehavior) rampRotation() bt.Node {
	s := r.spells
	noRejuv := func(u world.Unit) bool { return !world.HasAura(u, auraRejuvenation) }

	return bt.NewSelector("ramp rotation",
		bt.NewAction("leave form", func() bt.Status {
			if !r.formLocked() && r.cancelForm() {
				return bt.StatusSuccess
			}
			return bt.StatusFailure
		}),
		bt.NewAction("ramp emergency exit", func() bt.Status {
			if r.countAtOrBelow(OptRampExitPct) < r.settings.Int(OptRampExitCount) {
				return bt.StatusFailure
			}
			r.ramp.Close()
			r.log.Info("ramp interrupted by emergency")
			return bt.StatusSuccess
		}),
		s.Cast("Wild Growth", spell.On(s.Self()), spell.When(r.canCastWhileMoving)),
		s.Cast("Lifebloom", spell.On(r.rampLifebloomTarget)),
		s.Cast("Rejuvenation", spell.On(r.firstFriend(func(u world.Unit) bool {
			return !r.isMe(u) && !r.isTank(u) && !world.HasAura(u, auraLifebloom) && noRejuv(u)
		}))),
		s.Cast("Rejuvenation", spell.On(s.Self()), spell.When(func() bool { return noRejuv(r.me()) })),
		s.Cast("Rejuvenation", spell.On(func() world.Unit { return firstOf(r.tanks(), noRejuv) })),
		s.Cast("Rejuvenation", spell.On(r.firstFriend(noRejuv))),
		bt.NewSequence("ramp grove guardians",
			s.Cast("Grove Guardians", spell.On(r.rampGroveTarget), spell.When(func() bool {
				return r.enabled(OptGroveGuardians) && r.groveGen != r.ramp.Generation()
			})),
			bt.NewAction("mark grove guardians", func() bt.Status {
				r.groveGen = r.ramp.Generation()
				return bt.StatusSuccess
			}),
		),
	)
}

func (r *RestorationBehavior) interrupts() bt.Node {
	s := r.spells
	return bt.NewSelector("interrupts",
		s.Interrupt("Incapacitating Roar", spell.AnyEnemy(), spell.InterruptWhen(func() bool {
			return r.enabled(OptIncapacitatingRoar) && r.castingEnemies(roarRange) >= roarMinCasters
		})),
		s.Interrupt("Skull Bash", spell.AnyEnemy(), spell.InterruptWhen(func() bool {
			return r.enabled(OptSkullBash)
		})),
	)
}

func (r *RestorationBehavior) cooldowns() bt.Node {
	s := r.spells
	self := spell.On(s.Self())

	return bt.NewSelector("cooldowns",
		s.Cast("Nature's Vigil", self, spell.When(func() bool {
			return r.enabled(OptNaturesVigil) && r.burstActive() && r.friendsWithHoTs() >= 2 &&
				common.ValidTarget(r.game.Target())
		})),
		s.Cast("Convoke the Spirits", self, spell.When(func() bool {
			return r.enabled(OptConvoke) && r.countAtOrBelow(OptConvokePct) >= r.settings.Int(OptConvokeMin)
		})),
		s.Cast("Innervate", self, spell.When(func() bool {
			return r.enabled(OptInnervate) && r.me().PowerPct(world.PowerMana) <= r.settings.Float(OptInnervatePct)
		})),
		s.Cast("Ironbark", spell.On(r.friendAtOrBelow(OptIronbarkPct, func(u world.Unit) bool {
			return u.InCombat() && (!r.isMe(u) || !world.HasAura(u, auraBarkskin))
		})), spell.When(func() bool { return r.enabled(OptIronbark) })),
	)
}

func (r *RestorationBehavior) healing() bt.Node {
	s := r.spells
	facing := func(u world.Unit) bool { return r.me().Facing(u) }

	return bt.NewSelector("healing",
		s.Cast("Wild Growth", spell.On(s.Self()), spell.When(func() bool {
			return r.enabled(OptWildGrowthHealing) &&
				r.countAtOrBelow(OptWildGrowthHealingPct) >= r.settings.Int(OptWildGrowthHealingMin) &&
				r.canCastWhileMoving()
		})),
		s.Cast("Cenarion Ward", spell.On(r.cenarionWardTarget), spell.When(func() bool {
			return r.enabled(OptCenarionWard)
		})),
		s.Cast("Grove Guardians", spell.On(r.friendAtOrBelow(OptGroveGuardiansPct, nil)), spell.When(func() bool {
			return r.enabled(OptGroveGuardians)
		})),
		s.Cast("Regrowth", spell.On(r.friendAtOrBelow(OptRegrowthPct, facing)), spell.When(func() bool {
			return world.HasAura(r.me(), auraClearcasting) && r.canCastWhileMoving()
		})),
		s.Cast("Wild Growth", spell.On(s.Self()), spell.When(func() bool {
			return r.countAtOrBelow(OptWildGrowthPct) >= r.settings.Int(OptWildGrowthMin) && r.canCastWhileMoving()
		})),
		s.Cast("Lifebloom", spell.On(r.lifebloomTarget), spell.When(func() bool {
			return r.enabled(OptLifebloomHealing)
		})),
		s.Cast("Regrowth", spell.On(r.friendAtOrBelow(OptRegrowthPct, facing)), spell.When(r.canCastWhileMoving)),
		s.Cast("Rejuvenation", spell.On(r.friendAtOrBelow(OptRejuvenationPct, func(u world.Unit) bool {
			return !world.HasAura(u, auraRejuvenation)
		})), spell.When(func() bool { return r.enabled(OptSpreadRejuvenation) })),
	)
}

// damage 没人需要治疗时输出：条件允许时猫形态穿插，否则施法者输出
func (r *RestorationBehavior) damage() bt.Node {
	s := r.spells
	return bt.NewSelector("damage",
		bt.NewAction("heal exit", func() bt.Status {
			if r.countAtOrBelow(OptRegrowthPct) == 0 {
				return bt.StatusFailure
			}
			if r.inCat() && !r.formLocked() && r.cancelForm() {
				r.formShift.Mark()
			}
			r.emergency.Mark()
			return bt.StatusSuccess
		}),
		s.Cast("Heart of the Wild", spell.On(s.Self()), spell.When(func() bool {
			return r.enabled(OptHeartOfTheWild) && r.burstActive() && !world.HasAura(r.me(), auraProwl) &&
				len(r.game.Enemies(heartRange)) > 0
		})),
		bt.NewDecorator("cat weaving", func() bool { return r.enabled(OptCatWeaving) && r.inCat() }, r.catRotation()),
		bt.NewDecorator("caster", func() bool { return r.me().InCombat() && !r.inCat() }, r.casterRotation()),
	)
}

func (r *RestorationBehavior) catRotation() bt.Node {
	s := r.spells
	target := spell.On(s.CurrentTarget())
	finisher := func() bool { return r.me().Power(world.PowerComboPoints) >= 5 }

	return bt.NewSelector("cat",
		bt.NewAction("leave cat", func() bt.Status {
			if r.me().Power(world.PowerEnergy) >= r.settings.Int(OptCatExitEnergy) ||
				!r.catEntry.Elapsed(r.settings.Millis(OptMinCatDuration)) || r.formLocked() {
				return bt.StatusFailure
			}
			if r.cancelForm() {
				r.formShift.Mark()
			}
			return bt.StatusSuccess
		}),
		s.Cast("Rake", target, spell.When(func() bool { return world.HasAura(r.me(), auraProwl) })),
		s.Cast("Rip", target, spell.When(finisher), spell.WhenTarget(func(u world.Unit) bool {
			return !r.hasMine(u, auraRip)
		})),
		s.Cast("Ferocious Bite", target, spell.When(finisher)),
		s.Cast("Rake", target, spell.WhenTarget(func(u world.Unit) bool { return !r.hasMine(u, auraRake) })),
		s.Cast("Shred", target, spell.When(func() bool { return r.me().Power(world.PowerEnergy) >= shredEnergy })),
	)
}

func (r *RestorationBehavior) casterRotation() bt.Node {
	s := r.spells
	target := spell.On(s.CurrentTarget())
	valid := spell.WhenTarget(common.ValidTarget)

	return bt.NewSelector("caster",
		s.Cast("Sunfire", target, valid, spell.WhenTarget(func(u world.Unit) bool { return !r.hasMine(u, auraSunfire) })),
		s.Cast("Starfire", target, valid, spell.WhenTarget(func(u world.Unit) bool {
			return len(world.Within(r.game.Enemies(common.HealRadius), u, starfireRadius)) >= starfireMin
		})),
		s.Cast("Moonfire", target, valid, spell.WhenTarget(func(u world.Unit) bool { return !r.hasMine(u, auraMoonfire) })),
		s.Cast("Starsurge", target, valid),
		bt.NewSequence("enter cat",
			s.Cast("Cat Form", spell.On(s.Self()), spell.When(r.canEnterCat)),
			bt.NewAction("mark cat entry", func() bt.Status {
				r.formShift.Mark()
				r.catEntry.Mark()
				return bt.StatusSuccess
			}),
		),
		s.Cast("Wrath", target, valid),
	)
}

func (r *RestorationBehavior) me() world.Player         { return r.game.Me() }
func (r *RestorationBehavior) enabled(uid string) bool  { return r.settings.Bool(uid) }
func (r *RestorationBehavior) friends() []world.Unit    { return r.game.Friends(common.HealRadius) }
func (r *RestorationBehavior) tanks() []world.Unit      { return common.Tanks(r.game, common.HealRadius) }
func (r *RestorationBehavior) isMe(u world.Unit) bool   { return u.GUID() == r.me().GUID() }
func (r *RestorationBehavior) inCat() bool              { return world.HasAura(r.me(), auraCatForm) }
func (r *RestorationBehavior) formLocked() bool         { return world.HasAura(r.me(), auraFormLock) }
func (r *RestorationBehavior) lowestFriend() world.Unit { return r.firstFriend(alive)() }
func (r *RestorationBehavior) hasMine(u world.Unit, id world.AuraID) bool {
	return world.HasAuraFrom(u, id, r.me().GUID())
}

func alive(u world.Unit) bool { return !u.Dead() }

func firstOf(units []world.Unit, pred func(world.Unit) bool) world.Unit {
	for _, u := range units {
		if !u.Dead() && pred(u) {
			return u
		}
	}
	return nil
}

func (r *RestorationBehavior) isTank(u world.Unit) bool {
	for _, t := range r.tanks() {
		if t.GUID() == u.GUID() {
			return true
		}
	}
	return false
}

// burstActive 窗口模式看窗口，开关模式看开关
func (r *RestorationBehavior) burstActive() bool {
	if r.enabled(OptBurstWindow) {
		return r.burst.Active()
	}
	return r.burstOn
}

func (r *RestorationBehavior) canCastWhileMoving() bool {
	me := r.me()
	return !me.Moving() || world.HasAura(me, auraSwiftness)
}

// cancelForm 取消猫或熊形态，没有变形时返回 false
func (r *RestorationBehavior) cancelForm() bool {
	me := r.me()
	for _, id := range []world.AuraID{auraCatForm, auraBearForm} {
		if !world.HasAura(me, id) {
			continue
		}
		if err := r.game.CancelAura(id); err != nil {
			r.log.Debug("cancel form failed", "aura", id, "error", err)
			return false
		}
		return true
	}
	return false
}

func (r *RestorationBehavior) firstFriend(pred func(world.Unit) bool) spell.TargetSelector {
	return func() world.Unit {
		return common.FirstFriend(r.game, common.HealRadius, pred)
	}
}

// friendAtOrBelow 血量不高于设置值且满足 pred 的第一个友方
func (r *RestorationBehavior) friendAtOrBelow(uid string, pred func(world.Unit) bool) spell.TargetSelector {
	return func() world.Unit {
		pct := r.settings.Float(uid)
		return common.FirstFriend(r.game, common.HealRadius, func(u world.Unit) bool {
			return u.HealthPct() <= pct && (pred == nil || pred(u))
		})
	}
}

func (r *RestorationBehavior) countAtOrBelow(uid string) int {
	pct := r.settings.Float(uid)
	n := 0
	for _, u := range r.friends() {
		if !u.Dead() && u.HealthPct() <= pct {
			n++
		}
	}
	return n
}

func (r *RestorationBehavior) castingEnemies(radius float64) int {
	n := 0
	for _, u := range r.game.Enemies(radius) {
		if world.IsCasting(u) {
			n++
		}
	}
	return n
}

func (r *RestorationBehavior) friendsWithHoTs() int {
	n := 0
	for _, u := range r.friends() {
		for _, id := range []world.AuraID{auraLifebloom, auraRejuvenation, auraCenarionWard, auraRegrowth} {
			if world.HasAura(u, id) {
				n++
				break
			}
		}
	}
	return n
}

// markTarget 自己优先，然后是没有野性印记的友方玩家
func (r *RestorationBehavior) markTarget() world.Unit {
	me := r.me()
	if !world.HasAura(me, auraMarkOfTheWild) {
		return me
	}
	return common.FirstFriend(r.game, common.HealRadius, func(u world.Unit) bool {
		return u.IsPlayer() && !world.HasAura(u, auraMarkOfTheWild)
	})
}

// lifeblooms 自己施放的生命绽放数量与上限
func (r *RestorationBehavior) lifeblooms() (have, limit int) {
	limit = 1
	if world.HasAura(r.me(), auraUndergrowth) {
		limit = 2
	}
	for _, u := range r.friends() {
		if r.hasMine(u, auraLifebloom) {
			have++
		}
	}
	return have, limit
}

// rampLifebloomTarget 未达上限时依次选坦克、自己、血量最低的友方
func (r *RestorationBehavior) rampLifebloomTarget() world.Unit {
	if have, limit := r.lifeblooms(); have >= limit {
		return nil
	}
	missing := func(u world.Unit) bool { return !r.hasMine(u, auraLifebloom) }
	if u := firstOf(r.tanks(), missing); u != nil {
		return u
	}
	if me := r.me(); missing(me) {
		return me
	}
	return r.firstFriend(missing)()
}

// lifebloomTarget 达到上限时只刷新即将结束的，否则给需要治疗且没有生命绽放的友方
func (r *RestorationBehavior) lifebloomTarget() world.Unit {
	pct := r.settings.Float(OptLifebloomHealingPct)
	if have, limit := r.lifeblooms(); have >= limit {
		return common.FirstFriend(r.game, common.HealRadius, func(u world.Unit) bool {
			a, ok := world.FindAuraFrom(u, auraLifebloom, r.me().GUID())
			return ok && a.Remaining > 0 && a.Remaining <= lifebloomRefresh && u.HealthPct() <= pct
		})
	}
	return common.FirstFriend(r.game, common.HealRadius, func(u world.Unit) bool {
		return u.HealthPct() <= pct && !r.hasMine(u, auraLifebloom)
	})
}

// cenarionWardTarget 没有塞纳里奥结界的坦克，否则血量不高于 80% 的友方
func (r *RestorationBehavior) cenarionWardTarget() world.Unit {
	missing := func(u world.Unit) bool { return !world.HasAura(u, auraCenarionWard) }
	if u := firstOf(r.tanks(), missing); u != nil {
		return u
	}
	return common.FirstFriend(r.game, common.HealRadius, func(u world.Unit) bool {
		return missing(u) && u.HealthPct() <= cenarionPct
	})
}

// rampGroveTarget 全员健康时放在自己身上
func (r *RestorationBehavior) rampGroveTarget() world.Unit {
	low := common.FirstFriend(r.game, common.HealRadius, func(u world.Unit) bool {
		return u.HealthPct() <= groveFullPct
	})
	if low == nil {
		return r.me()
	}
	return r.lowestFriend()
}

// canEnterCat 能量足够、团队健康并且距离上次变形和紧急治疗都足够久
func (r *RestorationBehavior) canEnterCat() bool {
	if !r.enabled(OptCatWeaving) || len(r.game.Enemies(catEngageRange)) == 0 {
		return false
	}
	lowest := r.lowestFriend()
	if lowest != nil && lowest.HealthPct() < r.settings.Float(OptCatWeavingPct) {
		return false
	}
	return r.me().Power(world.PowerEnergy) >= r.settings.Int(OptCatEntryEnergy) &&
		r.formShift.Elapsed(r.settings.Millis(OptFormShiftDelay)) &&
		r.emergency.Elapsed(r.settings.Millis(OptEmergencyCooldown))
}
