package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/sim"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
	"github.com/lk2023060901/xdooria-rotation/pkg/logger"
)

const scenario = `
me:
  name: Hero
target: 2
units:
  - guid: 2
    name: Dummy
    hostile: true
    position: [3, 0, 0]
  - guid: 3
    name: Ally
    position: [2, 0, 0]
items:
  - {slot: 12, id: 1001, name: Spoon, use: true, cooldown: 10s, use_cooldown: 60s}
  - {slot: 13, id: 1002, name: Idol, use: true, use_cooldown: 90s}
  - {slot: 5, id: 1003, name: Chest}
  - {slot: 16, id: 1004, name: Oil Stick, use: true, charges: 0}
  - {slot: 17, id: 1005, name: Rune, use: true, expires_in: 5s}
`

func newCommon(t *testing.T) (*Common, *sim.World) {
	t.Helper()
	sc, err := sim.ParseScenario([]byte(scenario))
	require.NoError(t, err)
	w, err := sc.Build()
	require.NoError(t, err)
	return New(w, logger.NewNoop()), w
}

func TestValidTarget(t *testing.T) {
	_, w := newCommon(t)

	assert.False(t, ValidTarget(nil))
	assert.True(t, ValidTarget(w.Unit(2)))
	assert.False(t, ValidTarget(w.Unit(3)))

	w.UnitByGUID(2).SetHealth(0)
	assert.False(t, ValidTarget(w.Unit(2)))
}

func TestWaitNodes(t *testing.T) {
	tests := []struct {
		name  string
		node  func(c *Common) bt.Node
		block func(w *sim.World)
	}{
		{
			name:  "cast or channel",
			node:  (*Common).WaitForCastOrChannel,
			block: func(w *sim.World) { w.Player().StartCast(world.Cast{Name: "Frostbolt", Remaining: time.Second}) },
		},
		{
			name:  "target",
			node:  (*Common).WaitForTarget,
			block: func(w *sim.World) { w.SetTarget(0) },
		},
		{
			name:  "friendly target",
			node:  (*Common).WaitForTarget,
			block: func(w *sim.World) { w.SetTarget(3) },
		},
		{
			name:  "sitting",
			node:  (*Common).WaitForNotSitting,
			block: func(w *sim.World) { w.Player().SetSitting(true) },
		},
		{
			name:  "mounted",
			node:  (*Common).WaitForNotMounted,
			block: func(w *sim.World) { w.Player().SetMounted(true) },
		},
		{
			name:  "facing",
			node:  (*Common).WaitForFacing,
			block: func(w *sim.World) { w.Player().SetFacing(2, false) },
		},
		{
			name:  "no target to face",
			node:  (*Common).WaitForFacing,
			block: func(w *sim.World) { w.SetTarget(0) },
		},
		{
			name:  "arena preparation",
			node:  (*Common).WaitForNotWaitingForArenaToStart,
			block: func(w *sim.World) { w.Player().SetArenaPreparation(true) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newCommon(t)
			node := tt.node(c)

			assert.Equal(t, bt.StatusFailure, node.Tick())
			tt.block(w)
			assert.Equal(t, bt.StatusSuccess, node.Tick())
		})
	}
}

func TestWaitClaimsFrame(t *testing.T) {
	c, w := newCommon(t)
	w.Player().SetMounted(true)

	ran := false
	root := bt.NewSelector("root",
		c.WaitForNotMounted(),
		bt.NewAction("work", func() bt.Status { ran = true; return bt.StatusSuccess }),
	)

	assert.Equal(t, bt.StatusSuccess, root.Tick())
	assert.False(t, ran)

	w.Player().SetMounted(false)
	assert.Equal(t, bt.StatusSuccess, root.Tick())
	assert.True(t, ran)
}

func TestEnsureAutoAttack(t *testing.T) {
	c, w := newCommon(t)
	node := c.EnsureAutoAttack()

	assert.Equal(t, bt.StatusSuccess, node.Tick())
	assert.True(t, w.Player().AutoAttacking())
	assert.Equal(t, bt.StatusFailure, node.Tick())

	c2, w2 := newCommon(t)
	w2.SetTarget(3)
	assert.Equal(t, bt.StatusFailure, c2.EnsureAutoAttack().Tick())
	assert.False(t, w2.Player().AutoAttacking())
}

func TestUseEquippedItem(t *testing.T) {
	tests := []struct {
		item string
		want bt.Status
	}{
		{"Idol", bt.StatusSuccess},
		{"Spoon", bt.StatusFailure},
		{"Chest", bt.StatusFailure},
		{"Oil Stick", bt.StatusFailure},
		{"Rune", bt.StatusSuccess},
		{"Missing", bt.StatusFailure},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			c, w := newCommon(t)
			assert.Equal(t, tt.want, c.UseEquippedItem(tt.item, nil).Tick())
			if tt.want == bt.StatusSuccess {
				rec, ok := w.LastCast()
				require.True(t, ok)
				assert.Equal(t, "item:"+tt.item, rec.Name)
			}
		})
	}
}

func TestUseEquippedItemExpired(t *testing.T) {
	c, w := newCommon(t)
	w.Advance(5 * time.Second)

	assert.Equal(t, bt.StatusFailure, c.UseEquippedItem("Rune", nil).Tick())
}

func TestUseTrinkets(t *testing.T) {
	c, w := newCommon(t)

	node := c.UseTrinkets(spell.TargetSelector(w.Target), nil)
	assert.Equal(t, bt.StatusSuccess, node.Tick())
	rec, ok := w.LastCast()
	require.True(t, ok)
	assert.Equal(t, "item:Idol", rec.Name)
	assert.Equal(t, world.GUID(2), rec.Target)

	assert.Equal(t, bt.StatusFailure, node.Tick())
	assert.False(t, c.TrinketReady(world.SlotTrinket2))
	assert.Equal(t, 90*time.Second, c.TrinketCooldownRemaining(world.SlotTrinket2))

	w.Advance(10 * time.Second)
	assert.True(t, c.TrinketReady(world.SlotTrinket1))
	assert.Equal(t, bt.StatusSuccess, node.Tick())
	rec, _ = w.LastCast()
	assert.Equal(t, "item:Spoon", rec.Name)
}

func TestUseTrinketSlotAndCondition(t *testing.T) {
	c, w := newCommon(t)

	assert.Equal(t, bt.StatusFailure, c.UseTrinket(world.SlotTrinket1, nil, nil).Tick())
	assert.Equal(t, bt.StatusFailure, c.UseTrinket(world.SlotTrinket2, nil, func() bool { return false }).Tick())
	assert.Equal(t, bt.StatusFailure, c.UseTrinket(16, nil, nil).Tick())
	assert.Empty(t, w.Casts())

	assert.Equal(t, bt.StatusSuccess, c.UseTrinket(world.SlotTrinket2, nil, func() bool { return true }).Tick())
	assert.Zero(t, c.TrinketCooldownRemaining(world.SlotTrinket1+5))
}

func TestCombatHelpers(t *testing.T) {
	_, w := newCommon(t)

	assert.True(t, InMelee(w.Me(), w.Unit(2)))
	w.UnitByGUID(2).SetPosition(world.Vec3{X: 6})
	assert.False(t, InMelee(w.Me(), w.Unit(2)))
	assert.False(t, InMelee(w.Me(), nil))

	assert.Empty(t, EnemyPlayers(w, 40))
	w.UnitByGUID(2).SetPlayer(true)
	assert.Len(t, EnemyPlayers(w, 40), 1)
}

func TestHealHelpers(t *testing.T) {
	_, w := newCommon(t)
	dummy, ally := w.UnitByGUID(2), w.UnitByGUID(3)

	assert.Empty(t, Tanks(w, HealRadius))
	dummy.SetTarget(3)
	tanks := Tanks(w, HealRadius)
	require.Len(t, tanks, 1)
	assert.Equal(t, world.GUID(3), tanks[0].GUID())
	assert.Len(t, Attackers(w, w.Unit(3), HealRadius), 1)
	assert.Empty(t, Attackers(w, w.Me(), HealRadius))
	assert.Nil(t, Attackers(w, nil, HealRadius))

	assert.Empty(t, Healers(w, HealRadius))
	ally.SetHealer(true)
	assert.Len(t, Healers(w, HealRadius), 1)

	ally.SetHealth(50)
	low := FirstFriend(w, HealRadius, func(u world.Unit) bool { return u.HealthPct() < 60 })
	require.NotNil(t, low)
	assert.Equal(t, world.GUID(3), low.GUID())
	assert.Nil(t, FirstFriend(w, HealRadius, func(world.Unit) bool { return false }))
}

func TestBestTarget(t *testing.T) {
	_, w := newCommon(t)

	assert.Equal(t, world.GUID(2), BestTarget(w, 40).GUID())
	w.SetTarget(3)
	assert.Equal(t, world.GUID(2), BestTarget(w, 40).GUID())
	w.UnitByGUID(2).SetHealth(0)
	assert.Nil(t, BestTarget(w, 40))
}
