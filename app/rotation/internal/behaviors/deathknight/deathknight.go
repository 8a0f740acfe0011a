// Package deathknight 邪恶死亡骑士循环
package deathknight

import (
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/common"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/settings"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

// Unholy 邪恶专精
const Unholy behavior.Specialization = "deathknight.unholy"

const (
	auraDarkSuccor        world.AuraID = 101568
	auraFesteringWound    world.AuraID = 194310
	auraDeathAndDecay     world.AuraID = 188290
	auraSuddenDoom        world.AuraID = 81340
	auraPlaguebringer     world.AuraID = 390178
	auraFrostFever        world.AuraID = 55095
	auraVirulentPlague    world.AuraID = 191587
	auraDeathRot          world.AuraID = 377540
	auraFesteringScythe   world.AuraID = 458123
	auraLegionOfSouls     world.AuraID = 383269
	auraRottenTouch       world.AuraID = 390275
	auraDarkTransform     world.AuraID = 63560
	auraImprovedDeathCoil world.AuraID = 377580
	auraStrangulate       world.AuraID = 47476
	auraBlindingSleet     world.AuraID = 207167
	auraAsphyxiate        world.AuraID = 108194
)

// Register 注册死亡骑士循环
func Register(reg *behavior.Registry) {
	reg.MustRegister(behavior.Registration{
		Name:           PvEName,
		Specialization: Unholy,
		Context:        behavior.ContextPvE,
		Factory:        NewUnholyPvE,
	})
	reg.MustRegister(behavior.Registration{
		Name:           PvPName,
		Specialization: Unholy,
		Context:        behavior.ContextPvP,
		Factory:        NewUnholyPvP,
	})
}

// base 两个邪恶循环共用的状态与查询
type base struct {
	game     world.Game
	spells   *spell.Builder
	common   *common.Common
	settings *settings.Store
	log      logger.Logger
}

func newBase(deps behavior.Deps, name string) (base, error) {
	store := deps.Store()
	if err := store.Register(common.BurstOption); err != nil {
		return base{}, err
	}
	l := deps.Log().Named(name)
	return base{
		game:     deps.Game,
		spells:   deps.Spells(),
		common:   common.New(deps.Game, l),
		settings: store,
		log:      l,
	}, nil
}

func (b *base) Specialization() behavior.Specialization { return Unholy }

func (b *base) me() world.Player        { return b.game.Me() }
func (b *base) target() world.Unit      { return b.game.Target() }
func (b *base) runicPower() int         { return b.me().Power(world.PowerRunicPower) }
func (b *base) burst() bool             { return common.BurstEnabled(b.settings) }
func (b *base) notOnGCD() bool          { return !b.spells.IsGlobalCooldown() }
func (b *base) hasPet() bool            { return b.me().Pet() != nil }
func (b *base) wounds(u world.Unit) int { return world.AuraStacks(u, auraFesteringWound) }

// targetWounds 当前目标的溃烂之伤层数，没有目标时为 -1
func (b *base) targetWounds() int {
	t := b.target()
	if t == nil {
		return -1
	}
	return b.wounds(t)
}

func (b *base) mine(u world.Unit, id world.AuraID) bool {
	return world.HasAuraFrom(u, id, b.me().GUID())
}

func (b *base) targetInMelee() bool {
	return common.InMelee(b.me(), b.target())
}
