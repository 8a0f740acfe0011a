package evoker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behaviors/behaviortest"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/sim"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
)

const scenario = `
me:
  name: Chronos
  in_combat: true
  power:
    mana: [100, 100]
  auras: [{id: 381748, name: Blessing of the Bronze}]
target: 20
units:
  - {guid: 2, name: Tank, position: [5, 0, 0], in_combat: true}
  - {guid: 3, name: Healer, healer: true, position: [8, 0, 0], in_combat: true}
  - {guid: 4, name: Rogue, position: [10, 0, 0], in_combat: true}
  - {guid: 20, name: Drake, hostile: true, in_combat: true, position: [6, 0, 0], target: 2}
spells:
  - {id: 374348, name: Renewing Blaze, cooldown: 90s, off_gcd: true, applies: [{id: 374348, remaining: 8s}]}
  - {id: 363916, name: Obsidian Scales, cooldown: 90s, off_gcd: true}
  - {id: 351338, name: Quell, cooldown: 40s, range: 25, off_gcd: true, harmful: true, interrupt: true}
  - {id: 364342, name: Blessing of the Bronze, applies: [{id: 381748}]}
  - {id: 363534, name: Rewind, cooldown: 240s}
  - {id: 355936, name: Dream Breath, cooldown: 30s, range: 30}
  - {id: 370553, name: Tip the Scales, cooldown: 120s, off_gcd: true}
  - {id: 367226, name: Spiritbloom, cooldown: 30s, range: 30}
  - {id: 370960, name: Emerald Communion, cooldown: 180s}
  - {id: 355913, name: Emerald Blossom, range: 30}
  - {id: 364343, name: Echo, range: 30, applies: [{id: 364343, remaining: 15s}]}
  - {id: 360995, name: Verdant Embrace, cooldown: 24s, range: 30}
  - {id: 357170, name: Time Dilation, cooldown: 60s, range: 30}
  - {id: 361469, name: Living Flame, range: 25, any_target: true}
  - {id: 366155, name: Reversion, charges: 2, cooldown: 9s, range: 30, applies: [{id: 366155, remaining: 12s}]}
  - {id: 360823, name: Naturalize, cooldown: 8s, range: 30, dispels: [magic, poison]}
  - {id: 368970, name: Tail Swipe, cooldown: 90s, range: 8, off_gcd: true, harmful: true, interrupt: true}
  - {id: 357210, name: Deep Breath, cooldown: 120s, range: 50, harmful: true}
  - {id: 357208, name: Fire Breath, cooldown: 30s, range: 25, harmful: true}
  - {id: 356995, name: Disintegrate, range: 25, harmful: true}
  - {id: 362969, name: Azure Strike, range: 40, harmful: true}
`

func setup(t *testing.T, sc, cfg string) (*sim.World, *bt.Tree) {
	t.Helper()
	w := behaviortest.World(t, sc)
	_, tree := behaviortest.Tree(t, NewPreservation, behaviortest.Deps(w, behaviortest.Settings(t, cfg)))
	return w, tree
}

func hurt(w *sim.World, pct float64, guids ...world.GUID) {
	for _, g := range guids {
		w.UnitByGUID(g).SetHealth(pct)
	}
}

// covered 坦克和治疗身上已有逆转
func covered(w *sim.World) {
	for _, g := range []world.GUID{2, 3} {
		w.UnitByGUID(g).AddAura(world.Aura{ID: auraReversion, Remaining: 12 * time.Second, Caster: 1})
	}
}

func echoOn(w *sim.World, g world.GUID) {
	w.UnitByGUID(g).AddAura(world.Aura{ID: auraEcho, Remaining: 15 * time.Second, Caster: 1})
}

func addEnemy(w *sim.World, g world.GUID, x float64, target world.GUID) {
	w.AddUnit(sim.NewUnit(g, "Whelp").
		SetHostile(true).
		SetInCombat(true).
		SetPosition(world.Vec3{X: x}).
		SetTarget(target))
}

func cfg(lines ...string) string {
	out := "settings:\n"
	for _, l := range lines {
		out += "  " + l + "\n"
	}
	return out
}

func TestRegister(t *testing.T) {
	reg := behavior.NewRegistry()
	Register(reg)

	w := behaviortest.World(t, scenario)
	store := behaviortest.Settings(t, "")
	b, err := reg.Resolve(Preservation, behavior.ContextPvP, behaviortest.Deps(w, store))
	require.NoError(t, err)
	assert.Equal(t, Name, b.Name())
	assert.Equal(t, Preservation, b.Specialization())
	assert.Equal(t, 70.0, store.Float(OptReversionPct))
	assert.Len(t, store.Options(), len(Options))
}

func TestPreservationSettingsClamped(t *testing.T) {
	w := behaviortest.World(t, scenario)
	store := behaviortest.Settings(t, cfg("preservation_rewind_count: 50", "preservation_deep_breath: false"))
	_, _ = behaviortest.Tree(t, NewPreservation, behaviortest.Deps(w, store))

	assert.Equal(t, 10, store.Int(OptRewindCount))
	assert.False(t, store.Bool(OptDeepBreath))
	assert.True(t, store.Bool(OptObsidianScales))
}

func TestPreservationPriority(t *testing.T) {
	tests := []struct {
		name   string
		cfg    string
		setup  func(w *sim.World)
		spell  string
		target world.GUID
	}{
		{"pre-hot tank", "", nil, "Reversion", 2},
		{"pre-hot healer", "", func(w *sim.World) {
			w.UnitByGUID(2).AddAura(world.Aura{ID: auraReversion, Remaining: 12 * time.Second})
		}, "Reversion", 3},
		{"blessing out of combat", "", func(w *sim.World) {
			w.Player().SetInCombat(false)
			w.Player().RemoveAura(auraBronze)
		}, "Blessing of the Bronze", 1},
		{"rewind", cfg("preservation_rewind_count: 2"), func(w *sim.World) {
			hurt(w, 50, 2, 3, 4)
		}, "Rewind", 1},
		{"spiritbloom", cfg("preservation_dream_breath_count: 10"), func(w *sim.World) {
			hurt(w, 75, 2, 3, 4)
		}, "Spiritbloom", 2},
		{"emerald communion", cfg(
			"preservation_dream_breath_count: 10",
			"preservation_spiritbloom_count: 10",
			"preservation_emerald_blossom_count: 10",
		), func(w *sim.World) {
			w.Player().SetPower(world.PowerMana, 50, 100)
			hurt(w, 40, 2, 3, 4)
		}, "Emerald Communion", 1},
		{"emerald blossom", cfg(
			"preservation_dream_breath_count: 10",
			"preservation_spiritbloom_count: 10",
		), func(w *sim.World) {
			hurt(w, 78, 2, 3, 4)
		}, "Emerald Blossom", 2},
		{"echo", "", func(w *sim.World) {
			hurt(w, 60, 4)
		}, "Echo", 4},
		{"verdant embrace", "", func(w *sim.World) {
			hurt(w, 60, 4)
			echoOn(w, 4)
		}, "Verdant Embrace", 4},
		{"time dilation", "", func(w *sim.World) {
			addEnemy(w, 21, 7, 2)
			addEnemy(w, 22, 8, 2)
		}, "Time Dilation", 2},
		{"time dilation on dangerous cast", "", func(w *sim.World) {
			w.UnitByGUID(20).StartCast(world.Cast{Name: "Crush", Remaining: 3 * time.Second})
		}, "Time Dilation", 2},
		{"living flame heal", cfg("preservation_verdant_embrace_pct: 0"), func(w *sim.World) {
			hurt(w, 60, 4)
			echoOn(w, 4)
		}, "Living Flame", 4},
		{"reversion on injured", cfg(
			"preservation_verdant_embrace_pct: 0",
			"preservation_living_flame_pct: 0",
		), func(w *sim.World) {
			hurt(w, 60, 4)
			echoOn(w, 4)
		}, "Reversion", 4},
		{"naturalize", "", func(w *sim.World) {
			covered(w)
			w.UnitByGUID(3).AddAura(world.Aura{ID: 56728, Harmful: true, DispelType: world.DispelMagic})
		}, "Naturalize", 3},
		{"deep breath", "", func(w *sim.World) {
			covered(w)
			addEnemy(w, 21, 7, 0)
			addEnemy(w, 22, 8, 0)
		}, "Deep Breath", 20},
		{"fire breath", "", func(w *sim.World) {
			covered(w)
			addEnemy(w, 21, 7, 0)
		}, "Fire Breath", 20},
		{"disintegrate", "", func(w *sim.World) {
			covered(w)
			w.Player().AddAura(world.Aura{ID: auraEssenceBurst, Stacks: 2, Remaining: 15 * time.Second})
		}, "Disintegrate", 20},
		{"living flame damage", "", covered, "Living Flame", 20},
		{"azure strike while moving", "", func(w *sim.World) {
			covered(w)
			w.UnitByGUID(20).SetPosition(world.Vec3{X: 30})
			w.Player().SetMoving(true)
		}, "Azure Strike", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, tree := setup(t, scenario, tt.cfg)
			if tt.setup != nil {
				tt.setup(w)
			}

			assert.Equal(t, bt.StatusSuccess, tree.Tick())
			rec, ok := w.LastCast()
			require.True(t, ok)
			assert.Equal(t, tt.spell, rec.Name)
			assert.Equal(t, tt.target, rec.Target)
		})
	}
}

func TestPreservationDreamBreathTipsTheScales(t *testing.T) {
	w, tree := setup(t, scenario, "")
	hurt(w, 80, 2, 3, 4)

	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Equal(t, []string{"Dream Breath", "Tip the Scales"}, behaviortest.Casts(w))
	assert.Equal(t, world.GUID(2), w.Casts()[0].Target)
}

func TestPreservationEmeraldBlossomDebounce(t *testing.T) {
	w, tree := setup(t, scenario, cfg(
		"preservation_dream_breath_count: 10",
		"preservation_spiritbloom_count: 10",
	))
	hurt(w, 78, 2, 3, 4)

	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	w.Advance(sim.DefaultGCD)
	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	w.Advance(sim.DefaultGCD)
	assert.Equal(t, bt.StatusSuccess, tree.Tick())

	assert.Equal(t, []string{"Emerald Blossom", "Reversion", "Emerald Blossom"}, behaviortest.Casts(w))
}

func TestPreservationNaturalizeRemovesAura(t *testing.T) {
	w, tree := setup(t, scenario, "")
	covered(w)
	w.UnitByGUID(4).AddAura(world.Aura{ID: 59108, Harmful: true, DispelType: world.DispelPoison})

	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Equal(t, "Naturalize", behaviortest.Last(w))
	assert.False(t, world.HasAura(w.Unit(4), 59108))
}

func TestPreservationDefensives(t *testing.T) {
	w, tree := setup(t, scenario, "")
	addEnemy(w, 21, 3, 1)
	addEnemy(w, 22, 4, 1)

	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Equal(t, "Renewing Blaze", behaviortest.Last(w))
	assert.True(t, world.HasAura(w.Me(), auraRenewingBlaze))

	// 烈焰新生期间不开黑曜鳞片
	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Equal(t, []string{"Renewing Blaze", "Reversion"}, behaviortest.Casts(w))
	assert.Equal(t, world.GUID(1), w.Casts()[1].Target)
}

func TestPreservationDefensivesDisabled(t *testing.T) {
	w, tree := setup(t, scenario, cfg(
		"preservation_renewing_blaze: false",
		"preservation_obsidian_scales: false",
	))
	addEnemy(w, 21, 3, 1)
	addEnemy(w, 22, 4, 1)

	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Equal(t, "Reversion", behaviortest.Last(w))
}

func TestPreservationQuellDuringGlobalCooldown(t *testing.T) {
	w, tree := setup(t, scenario, "")

	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Equal(t, "Reversion", behaviortest.Last(w))

	w.UnitByGUID(20).StartCast(world.Cast{Name: "Flame Burst", Interruptible: true, Remaining: 2 * time.Second})
	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Equal(t, "Quell", behaviortest.Last(w))
	assert.False(t, world.IsCasting(w.Unit(20)))
}

func TestPreservationTemporalAnomaly(t *testing.T) {
	sc := scenario + "  - {id: 373861, name: Temporal Anomaly, cooldown: 15s}\n"

	w, tree := setup(t, sc, "")
	covered(w)
	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Equal(t, "Temporal Anomaly", behaviortest.Last(w))

	w, tree = setup(t, sc, "")
	covered(w)
	w.Player().SetFacing(4, false)
	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Equal(t, "Living Flame", behaviortest.Last(w))
}

func TestPreservationWaits(t *testing.T) {
	w, tree := setup(t, scenario, "")
	w.Player().SetMounted(true)
	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Empty(t, w.Casts())

	w.Player().SetMounted(false)
	w.Player().StartCast(world.Cast{Name: "Dream Breath", Channel: true, Remaining: time.Second})
	assert.Equal(t, bt.StatusSuccess, tree.Tick())
	assert.Empty(t, w.Casts())
}
