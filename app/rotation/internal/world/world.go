package world

import "time"

// Unit 游戏单位的只读视图
// 所有方法都是对当前帧快照的非阻塞读取
type Unit interface {
	GUID() GUID
	Name() string
	Position() Vec3
	HealthPct() float64
	Dead() bool
	// Attackable 是否可以被玩家攻击
	Attackable() bool
	IsPlayer() bool
	IsHealer() bool
	InCombat() bool
	Moving() bool
	Auras() []Aura
	// Casting 当前施法或引导
	Casting() (Cast, bool)
	// TargetGUID 该单位当前的目标
	TargetGUID() GUID
}

// Player 当前控制的角色
type Player interface {
	Unit
	Power(kind PowerType) int
	PowerPct(kind PowerType) float64
	AutoAttacking() bool
	Mounted() bool
	Sitting() bool
	Facing(u Unit) bool
	// ArenaPreparation 竞技场开始前的准备阶段
	ArenaPreparation() bool
	Pet() Unit
}

// World 世界状态查询接口
type World interface {
	Me() Player
	// Target 当前目标，没有时返回 nil
	Target() Unit
	Unit(guid GUID) Unit
	// Enemies 半径内可攻击的单位，按距离从近到远
	Enemies(radius float64) []Unit
	// Friends 半径内的友方单位（包含自己），按血量从低到高
	Friends(radius float64) []Unit
	// Now 当前帧时间
	Now() time.Time
}

// Spellbook 技能书查询接口
type Spellbook interface {
	// SpellID 按名称查找技能
	SpellID(name string) (SpellID, bool)
	Known(id SpellID) bool
	Cooldown(id SpellID) Cooldown
	// Usable 资源等施放条件是否满足
	Usable(id SpellID) bool
	InRange(id SpellID, target Unit) bool
	// GlobalCooldown 公共冷却剩余时间
	GlobalCooldown() time.Duration
}

// Inventory 装备查询接口
type Inventory interface {
	Equipped(slot int) (Item, bool)
	EquippedByName(name string) (Item, bool)
}

// Commander 指令接口，失败时返回 errors.go 中的错误
type Commander interface {
	Cast(id SpellID, target Unit) error
	StopCasting() error
	StartAttack(target Unit) error
	// CancelAura 取消自己身上的光环（变形、潜行等）
	CancelAura(id AuraID) error
	UseItem(slot int, target Unit) error
}

// Game 一个完整的游戏客户端视图
type Game interface {
	World
	Spellbook
	Inventory
	Commander
}
