package world

import (
	"math"
	"time"
)

// SpellID 技能 ID
type SpellID uint32

// AuraID 光环 ID
type AuraID uint32

// GUID 单位唯一标识
type GUID uint64

// PowerType 资源类型
type PowerType int

const (
	PowerMana PowerType = iota
	PowerRage
	PowerEnergy
	PowerRunicPower
	PowerRunes
	PowerEssence
	PowerComboPoints
)

var powerNames = [...]string{"mana", "rage", "energy", "runic_power", "runes", "essence", "combo_points"}

func (p PowerType) String() string {
	if p < 0 || int(p) >= len(powerNames) {
		return "unknown"
	}
	return powerNames[p]
}

// ParsePowerType 解析资源类型名称
func ParsePowerType(s string) (PowerType, bool) {
	for i, name := range powerNames {
		if name == s {
			return PowerType(i), true
		}
	}
	return PowerMana, false
}

// DispelType 驱散类型
type DispelType int

const (
	DispelNone DispelType = iota
	DispelMagic
	DispelCurse
	DispelDisease
	DispelPoison
	DispelEnrage
	DispelBleed
)

func (d DispelType) String() string {
	switch d {
	case DispelMagic:
		return "magic"
	case DispelCurse:
		return "curse"
	case DispelDisease:
		return "disease"
	case DispelPoison:
		return "poison"
	case DispelEnrage:
		return "enrage"
	case DispelBleed:
		return "bleed"
	default:
		return "none"
	}
}

// ParseDispelType 解析驱散类型名称
func ParseDispelType(s string) (DispelType, bool) {
	for d := DispelNone; d <= DispelBleed; d++ {
		if d.String() == s {
			return d, true
		}
	}
	return DispelNone, false
}

// Vec3 坐标
type Vec3 struct {
	X, Y, Z float64
}

// Distance 两点之间的距离
func (v Vec3) Distance(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Aura 光环快照
type Aura struct {
	ID         AuraID
	Name       string
	Stacks     int
	Remaining  time.Duration // 0 表示永久
	DispelType DispelType
	Caster     GUID
	Harmful    bool
}

// Cast 施法快照
type Cast struct {
	Spell         SpellID
	Name          string
	Channel       bool
	Interruptible bool
	Remaining     time.Duration
}

// Cooldown 冷却快照
type Cooldown struct {
	Remaining  time.Duration
	Charges    int
	MaxCharges int
}

// Ready 冷却结束或仍有可用充能
func (c Cooldown) Ready() bool {
	if c.MaxCharges > 0 {
		return c.Charges > 0
	}
	return c.Remaining <= 0
}

// Item 装备物品快照
type Item struct {
	Slot       int
	ID         uint32
	Name       string
	HasUse     bool
	Cooldown   time.Duration // 剩余冷却
	HasCharges bool
	Charges    int
	Expiration time.Time // 零值表示不过期
}

// Usable 在 now 时刻能否使用
func (i Item) Usable(now time.Time) bool {
	if !i.HasUse || i.Cooldown > 0 {
		return false
	}
	if i.HasCharges && i.Charges == 0 {
		return false
	}
	if !i.Expiration.IsZero() && !i.Expiration.After(now) {
		return false
	}
	return true
}

// 饰品槽位
const (
	SlotTrinket1 = 12
	SlotTrinket2 = 13
)
