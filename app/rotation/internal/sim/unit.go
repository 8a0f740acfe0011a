package sim

import (
	"time"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
)

// Unit 模拟单位
type Unit struct {
	guid     world.GUID
	name     string
	pos      world.Vec3
	health   float64
	dead     bool
	hostile  bool
	player   bool
	healer   bool
	inCombat bool
	moving   bool
	auras    []world.Aura
	cast     *world.Cast
	target   world.GUID
}

var _ world.Unit = (*Unit)(nil)

// NewUnit 创建满血单位
func NewUnit(guid world.GUID, name string) *Unit {
	return &Unit{guid: guid, name: name, health: 100}
}

func (u *Unit) GUID() world.GUID       { return u.guid }
func (u *Unit) Name() string           { return u.name }
func (u *Unit) Position() world.Vec3   { return u.pos }
func (u *Unit) HealthPct() float64     { return u.health }
func (u *Unit) Dead() bool             { return u.dead }
func (u *Unit) Attackable() bool       { return u.hostile }
func (u *Unit) IsPlayer() bool         { return u.player }
func (u *Unit) IsHealer() bool         { return u.healer }
func (u *Unit) InCombat() bool         { return u.inCombat }
func (u *Unit) Moving() bool           { return u.moving }
func (u *Unit) TargetGUID() world.GUID { return u.target }

// Auras 返回副本，调用方修改不影响单位
func (u *Unit) Auras() []world.Aura {
	out := make([]world.Aura, len(u.auras))
	copy(out, u.auras)
	return out
}

func (u *Unit) Casting() (world.Cast, bool) {
	if u.cast == nil {
		return world.Cast{}, false
	}
	return *u.cast, true
}

// SetHealth 设置血量百分比，0 视为死亡
func (u *Unit) SetHealth(pct float64) *Unit {
	u.health = pct
	u.dead = pct <= 0
	return u
}

func (u *Unit) SetPosition(p world.Vec3) *Unit { u.pos = p; return u }
func (u *Unit) SetHostile(v bool) *Unit       { u.hostile = v; return u }
func (u *Unit) SetPlayer(v bool) *Unit        { u.player = v; return u }
func (u *Unit) SetHealer(v bool) *Unit        { u.healer = v; return u }
func (u *Unit) SetInCombat(v bool) *Unit      { u.inCombat = v; return u }
func (u *Unit) SetMoving(v bool) *Unit        { u.moving = v; return u }
func (u *Unit) SetTarget(g world.GUID) *Unit  { u.target = g; return u }

// AddAura 添加光环，同 ID 同施法者的光环会被替换
func (u *Unit) AddAura(a world.Aura) *Unit {
	for i := range u.auras {
		if u.auras[i].ID == a.ID && u.auras[i].Caster == a.Caster {
			u.auras[i] = a
			return u
		}
	}
	u.auras = append(u.auras, a)
	return u
}

// RemoveAura 移除该 ID 的所有光环
func (u *Unit) RemoveAura(id world.AuraID) *Unit {
	kept := u.auras[:0]
	for _, a := range u.auras {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	u.auras = kept
	return u
}

// StartCast 开始施法
func (u *Unit) StartCast(c world.Cast) *Unit {
	u.cast = &c
	return u
}

// StopCast 中断施法
func (u *Unit) StopCast() *Unit {
	u.cast = nil
	return u
}

func (u *Unit) removeDispellable(harmful bool, types []world.DispelType) bool {
	for i, a := range u.auras {
		if a.Harmful != harmful {
			continue
		}
		for _, t := range types {
			if a.DispelType == t {
				u.auras = append(u.auras[:i], u.auras[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (u *Unit) advance(dt time.Duration) {
	kept := u.auras[:0]
	for _, a := range u.auras {
		if a.Remaining > 0 {
			a.Remaining -= dt
			if a.Remaining <= 0 {
				continue
			}
		}
		kept = append(kept, a)
	}
	u.auras = kept

	if u.cast != nil {
		u.cast.Remaining -= dt
		if u.cast.Remaining <= 0 {
			u.cast = nil
		}
	}
}

// Player 模拟的当前角色
type Player struct {
	Unit
	power      map[world.PowerType]int
	maxPower   map[world.PowerType]int
	autoAttack bool
	mounted    bool
	sitting    bool
	arenaPrep  bool
	notFacing  map[world.GUID]bool
	pet        *Unit
}

var _ world.Player = (*Player)(nil)

// NewPlayer 创建角色
func NewPlayer(guid world.GUID, name string) *Player {
	return &Player{
		Unit:      Unit{guid: guid, name: name, health: 100},
		power:     make(map[world.PowerType]int),
		maxPower:  make(map[world.PowerType]int),
		notFacing: make(map[world.GUID]bool),
	}
}

func (p *Player) Power(kind world.PowerType) int { return p.power[kind] }

func (p *Player) PowerPct(kind world.PowerType) float64 {
	max := p.maxPower[kind]
	if max <= 0 {
		return 0
	}
	return float64(p.power[kind]) * 100 / float64(max)
}

func (p *Player) AutoAttacking() bool    { return p.autoAttack }
func (p *Player) Mounted() bool          { return p.mounted }
func (p *Player) Sitting() bool          { return p.sitting }
func (p *Player) ArenaPreparation() bool { return p.arenaPrep }

func (p *Player) Facing(u world.Unit) bool {
	if u == nil {
		return false
	}
	return !p.notFacing[u.GUID()]
}

func (p *Player) Pet() world.Unit {
	if p.pet == nil {
		return nil
	}
	return p.pet
}

// SetPower 设置资源当前值与上限
func (p *Player) SetPower(kind world.PowerType, cur, max int) *Player {
	p.power[kind] = cur
	p.maxPower[kind] = max
	return p
}

func (p *Player) SetMounted(v bool) *Player          { p.mounted = v; return p }
func (p *Player) SetSitting(v bool) *Player          { p.sitting = v; return p }
func (p *Player) SetAutoAttack(v bool) *Player       { p.autoAttack = v; return p }
func (p *Player) SetArenaPreparation(v bool) *Player { p.arenaPrep = v; return p }
func (p *Player) SetPet(u *Unit) *Player             { p.pet = u; return p }

// SetFacing 设置是否面向某个单位
func (p *Player) SetFacing(g world.GUID, facing bool) *Player {
	if facing {
		delete(p.notFacing, g)
	} else {
		p.notFacing[g] = true
	}
	return p
}
