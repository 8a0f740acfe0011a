package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
)

const testScenario = `
name: training dummy
gcd: 1s
me:
  name: Tester
  power:
    runic_power: [60, 100]
  not_facing: [4]
  pet: {guid: 9, name: Ghoul}
target: 2
units:
  - guid: 2
    name: Dummy
    hostile: true
    health: 80
    position: [3, 0, 0]
    auras:
      - {id: 194310, stacks: 3, remaining: 2s}
      - {id: 77, harmful: false, dispel: magic}
    casting: {spell: 100, name: Frostbolt, interruptible: true, remaining: 2s}
  - {guid: 3, name: Far Dummy, hostile: true, position: [50, 0, 0]}
  - {guid: 4, name: Close Dummy, hostile: true, position: [1, 0, 0]}
  - guid: 5
    name: Healer Friend
    health: 40
    position: [5, 0, 0]
    auras:
      - {id: 500, harmful: true, dispel: poison}
spells:
  - {id: 47541, name: Death Coil, cost: 30, power: runic_power, range: 30, harmful: true}
  - {id: 47528, name: Mind Freeze, cooldown: 15s, range: 15, off_gcd: true, harmful: true, interrupt: true}
  - {id: 2782, name: Remove Corruption, cooldown: 8s, range: 40, dispels: [poison]}
  - {id: 360995, name: Verdant Embrace, charges: 2, cooldown: 10s, range: 40}
  - {id: 55090, name: Scourge Strike, unlearned: true, harmful: true}
  - {id: 1, name: Long Cast, cast_time: 2s, harmful: true}
items:
  - {slot: 13, id: 7, name: Idol, use: true, use_cooldown: 30s, charges: 1}
`

func buildTestWorld(t *testing.T) *World {
	t.Helper()
	sc, err := ParseScenario([]byte(testScenario))
	require.NoError(t, err)
	w, err := sc.Build()
	require.NoError(t, err)
	return w
}

func TestScenarioBuild(t *testing.T) {
	w := buildTestWorld(t)

	me := w.Me()
	assert.Equal(t, world.GUID(1), me.GUID())
	assert.Equal(t, 60, me.Power(world.PowerRunicPower))
	assert.InDelta(t, 60.0, me.PowerPct(world.PowerRunicPower), 1e-9)
	assert.NotNil(t, me.Pet())
	assert.False(t, me.Facing(w.Unit(4)))
	assert.True(t, me.Facing(w.Target()))

	tg := w.Target()
	require.NotNil(t, tg)
	assert.Equal(t, "Dummy", tg.Name())
	assert.Equal(t, 3, world.AuraStacks(tg, 194310))
	assert.True(t, world.IsCasting(tg))

	assert.Nil(t, w.Unit(1234))
}

func TestEnemiesAndFriends(t *testing.T) {
	w := buildTestWorld(t)

	enemies := w.Enemies(10)
	require.Len(t, enemies, 2)
	assert.Equal(t, world.GUID(4), enemies[0].GUID())
	assert.Equal(t, world.GUID(2), enemies[1].GUID())

	friends := w.Friends(40)
	require.Len(t, friends, 2)
	assert.Equal(t, world.GUID(5), friends[0].GUID())
	assert.Equal(t, world.GUID(1), friends[1].GUID())
}

func TestCastErrors(t *testing.T) {
	w := buildTestWorld(t)
	dummy := w.Target()
	friend := w.Unit(5)

	tests := []struct {
		name   string
		spell  world.SpellID
		target world.Unit
		want   error
	}{
		{"unknown", 999, dummy, world.ErrNotKnown},
		{"unlearned", 55090, dummy, world.ErrNotKnown},
		{"nil target", 47541, nil, world.ErrInvalidTarget},
		{"harmful on friend", 47541, friend, world.ErrInvalidTarget},
		{"helpful on enemy", 2782, dummy, world.ErrInvalidTarget},
		{"out of range", 47528, w.Unit(3), world.ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, w.Cast(tt.spell, tt.target), tt.want)
		})
	}
	assert.Empty(t, w.Casts())
}

func TestCastConsumesAndTriggersGCD(t *testing.T) {
	w := buildTestWorld(t)
	dummy := w.Target()

	require.NoError(t, w.Cast(47541, dummy))
	assert.Equal(t, 30, w.Me().Power(world.PowerRunicPower))
	assert.Equal(t, time.Second, w.GlobalCooldown())

	assert.ErrorIs(t, w.Cast(47541, dummy), world.ErrGlobalCooldown)

	// 不受公共冷却影响
	require.NoError(t, w.Cast(47528, dummy))
	assert.False(t, world.IsCasting(dummy))
	assert.ErrorIs(t, w.Cast(47528, dummy), world.ErrNotReady)

	w.Advance(time.Second)
	require.NoError(t, w.Cast(47541, dummy))
	w.Advance(time.Second)
	assert.ErrorIs(t, w.Cast(47541, dummy), world.ErrInsufficientResource)

	last, ok := w.LastCast()
	require.True(t, ok)
	assert.Equal(t, "Death Coil", last.Name)
	assert.Len(t, w.Casts(), 3)
}

func TestChargesRecharge(t *testing.T) {
	w := buildTestWorld(t)
	me := w.Me()
	w.SetGCD(0)

	require.NoError(t, w.Cast(360995, me))
	require.NoError(t, w.Cast(360995, me))
	cd := w.Cooldown(360995)
	assert.Equal(t, 0, cd.Charges)
	assert.False(t, cd.Ready())
	assert.ErrorIs(t, w.Cast(360995, me), world.ErrNotReady)

	w.Advance(10 * time.Second)
	cd = w.Cooldown(360995)
	assert.Equal(t, 1, cd.Charges)
	assert.True(t, cd.Ready())
	assert.Equal(t, 10*time.Second, cd.Remaining)

	w.Advance(10 * time.Second)
	assert.Equal(t, 2, w.Cooldown(360995).Charges)
	assert.Zero(t, w.Cooldown(360995).Remaining)
}

func TestDispelRemovesAura(t *testing.T) {
	w := buildTestWorld(t)
	friend := w.Unit(5)

	require.True(t, world.HasAura(friend, 500))
	require.NoError(t, w.Cast(2782, friend))
	assert.False(t, world.HasAura(friend, 500))
}

func TestAdvanceExpiresState(t *testing.T) {
	w := buildTestWorld(t)
	dummy := w.Target()

	require.NoError(t, w.Cast(1, dummy))
	assert.True(t, world.IsCasting(w.Me()))
	assert.ErrorIs(t, w.Cast(47528, dummy), world.ErrBusy)

	w.Advance(2 * time.Second)
	assert.False(t, world.IsCasting(w.Me()))
	assert.False(t, world.IsCasting(dummy))
	assert.False(t, world.HasAura(dummy, 194310))
	assert.True(t, world.HasAura(dummy, 77))
	assert.Equal(t, Epoch.Add(2*time.Second), w.Now())
}

func TestUseItem(t *testing.T) {
	w := buildTestWorld(t)

	it, ok := w.EquippedByName("Idol")
	require.True(t, ok)
	assert.True(t, it.Usable(w.Now()))

	require.NoError(t, w.UseItem(13, nil))
	assert.ErrorIs(t, w.UseItem(13, nil), world.ErrNoItem)
	assert.ErrorIs(t, w.UseItem(12, nil), world.ErrNoItem)

	it, _ = w.Equipped(13)
	assert.Equal(t, 0, it.Charges)
	assert.Equal(t, 30*time.Second, it.Cooldown)
}

func TestStartAttack(t *testing.T) {
	w := buildTestWorld(t)

	assert.ErrorIs(t, w.StartAttack(w.Unit(5)), world.ErrInvalidTarget)
	require.NoError(t, w.StartAttack(w.Target()))
	assert.True(t, w.Me().AutoAttacking())
}

func TestScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bad power", "me: {power: {focus: [1, 2]}}"},
		{"missing target", "target: 42"},
		{"duplicate guid", "units: [{guid: 2}, {guid: 2}]"},
		{"zero guid", "units: [{name: nobody}]"},
		{"bad dispel", "units: [{guid: 2, auras: [{id: 1, dispel: holy}]}]"},
		{"spell without name", "spells: [{id: 3}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := ParseScenario([]byte(tt.raw))
			require.NoError(t, err)
			_, err = sc.Build()
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScenario), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "training dummy", sc.Name)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAnyTargetSpell(t *testing.T) {
	w := buildTestWorld(t)
	w.AddSpell(Spell{ID: 361469, Name: "Living Flame", Range: 30, AnyTarget: true})

	require.NoError(t, w.Cast(361469, w.Unit(5)))
	w.Advance(time.Second)
	require.NoError(t, w.Cast(361469, w.Target()))
	assert.Len(t, w.Casts(), 2)
}

func TestCancelAura(t *testing.T) {
	w := buildTestWorld(t)
	w.Player().AddAura(world.Aura{ID: 768, Name: "Cat Form"})
	require.True(t, world.HasAura(w.Me(), 768))

	require.NoError(t, w.CancelAura(768))
	assert.False(t, world.HasAura(w.Me(), 768))
	assert.NoError(t, w.CancelAura(768))
}
