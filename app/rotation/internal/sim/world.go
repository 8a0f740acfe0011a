package sim

import (
	"sort"
	"time"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
)

// DefaultGCD 默认公共冷却
const DefaultGCD = 1500 * time.Millisecond

// Epoch 模拟时钟起点
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Spell 技能定义
type Spell struct {
	ID         world.SpellID
	Name       string
	Cooldown   time.Duration
	MaxCharges int
	Cost       int
	Power      world.PowerType
	Range      float64
	CastTime   time.Duration
	OffGCD     bool
	Harmful    bool
	AnyTarget  bool // 友方与敌方都可以作为目标
	Unlearned  bool
	Interrupt  bool
	Dispels    []world.DispelType
	Applies    []world.Aura
}

type spellState struct {
	def     Spell
	charges int
	readyAt time.Time
}

// ItemDef 装备定义
type ItemDef struct {
	world.Item
	// UseCooldown 使用后进入的冷却
	UseCooldown time.Duration
}

// CastRecord 一次成功的指令
type CastRecord struct {
	At     time.Time
	Spell  world.SpellID
	Name   string
	Target world.GUID
}

// World 内存中的 world.Game 实现，由帧循环单线程驱动
type World struct {
	now    time.Time
	gcd    time.Duration
	gcdEnd time.Time
	me     *Player
	units  map[world.GUID]*Unit
	order  []world.GUID
	target world.GUID
	spells map[world.SpellID]*spellState
	byName map[string]world.SpellID
	items  map[int]*ItemDef
	log    []CastRecord
}

var _ world.Game = (*World)(nil)

// NewWorld 创建模拟世界
func NewWorld(me *Player) *World {
	return &World{
		now:    Epoch,
		gcd:    DefaultGCD,
		me:     me,
		units:  make(map[world.GUID]*Unit),
		spells: make(map[world.SpellID]*spellState),
		byName: make(map[string]world.SpellID),
		items:  make(map[int]*ItemDef),
	}
}

// SetGCD 设置公共冷却时长
func (w *World) SetGCD(d time.Duration) { w.gcd = d }

// Player 可修改的当前角色
func (w *World) Player() *Player { return w.me }

// AddUnit 加入单位
func (w *World) AddUnit(u *Unit) *World {
	if _, ok := w.units[u.guid]; !ok {
		w.order = append(w.order, u.guid)
	}
	w.units[u.guid] = u
	return w
}

// UnitByGUID 可修改的单位
func (w *World) UnitByGUID(g world.GUID) *Unit {
	if g == w.me.guid {
		return &w.me.Unit
	}
	return w.units[g]
}

// SetTarget 切换当前目标，0 表示清除
func (w *World) SetTarget(g world.GUID) {
	w.target = g
	w.me.target = g
}

// AddSpell 学会技能
func (w *World) AddSpell(s Spell) *World {
	st := &spellState{def: s, charges: s.MaxCharges, readyAt: w.now}
	w.spells[s.ID] = st
	w.byName[s.Name] = s.ID
	return w
}

// Equip 装备物品
func (w *World) Equip(item ItemDef) *World {
	it := item
	w.items[item.Slot] = &it
	return w
}

// Advance 推进模拟时钟
func (w *World) Advance(dt time.Duration) {
	w.now = w.now.Add(dt)

	for _, st := range w.spells {
		if st.def.MaxCharges == 0 {
			continue
		}
		for st.charges < st.def.MaxCharges && !w.now.Before(st.readyAt) {
			st.charges++
			if st.charges < st.def.MaxCharges {
				st.readyAt = st.readyAt.Add(st.def.Cooldown)
			}
		}
	}

	w.me.advance(dt)
	for _, g := range w.order {
		w.units[g].advance(dt)
	}
	if w.me.pet != nil {
		w.me.pet.advance(dt)
	}
	for _, it := range w.items {
		if it.Cooldown > 0 {
			it.Cooldown -= dt
			if it.Cooldown < 0 {
				it.Cooldown = 0
			}
		}
	}
}

// Casts 指令记录
func (w *World) Casts() []CastRecord {
	out := make([]CastRecord, len(w.log))
	copy(out, w.log)
	return out
}

// LastCast 最近一次成功指令
func (w *World) LastCast() (CastRecord, bool) {
	if len(w.log) == 0 {
		return CastRecord{}, false
	}
	return w.log[len(w.log)-1], true
}

// ClearLog 清空指令记录
func (w *World) ClearLog() { w.log = w.log[:0] }

// ---- world.World ----

func (w *World) Me() world.Player { return w.me }

func (w *World) Target() world.Unit {
	if w.target == 0 {
		return nil
	}
	return w.Unit(w.target)
}

func (w *World) Unit(g world.GUID) world.Unit {
	if g == w.me.guid {
		return w.me
	}
	if w.me.pet != nil && g == w.me.pet.guid {
		return w.me.pet
	}
	if u, ok := w.units[g]; ok {
		return u
	}
	return nil
}

func (w *World) Enemies(radius float64) []world.Unit {
	var out []world.Unit
	for _, g := range w.order {
		u := w.units[g]
		if u.hostile && !u.dead && world.Distance(w.me, u) <= radius {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return world.Distance(w.me, out[i]) < world.Distance(w.me, out[j])
	})
	return out
}

func (w *World) Friends(radius float64) []world.Unit {
	out := []world.Unit{w.me}
	for _, g := range w.order {
		u := w.units[g]
		if !u.hostile && !u.dead && world.Distance(w.me, u) <= radius {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HealthPct() < out[j].HealthPct()
	})
	return out
}

func (w *World) Now() time.Time { return w.now }

// ---- world.Spellbook ----

func (w *World) SpellID(name string) (world.SpellID, bool) {
	id, ok := w.byName[name]
	return id, ok
}

func (w *World) Known(id world.SpellID) bool {
	st, ok := w.spells[id]
	return ok && !st.def.Unlearned
}

func (w *World) Cooldown(id world.SpellID) world.Cooldown {
	st, ok := w.spells[id]
	if !ok {
		return world.Cooldown{}
	}
	cd := world.Cooldown{Charges: st.charges, MaxCharges: st.def.MaxCharges}
	if st.def.MaxCharges == 0 || st.charges < st.def.MaxCharges {
		if rem := st.readyAt.Sub(w.now); rem > 0 {
			cd.Remaining = rem
		}
	}
	return cd
}

func (w *World) Usable(id world.SpellID) bool {
	st, ok := w.spells[id]
	if !ok {
		return false
	}
	return w.me.power[st.def.Power] >= st.def.Cost
}

func (w *World) InRange(id world.SpellID, target world.Unit) bool {
	st, ok := w.spells[id]
	if !ok || target == nil {
		return false
	}
	if st.def.Range <= 0 {
		return true
	}
	return world.Distance(w.me, target) <= st.def.Range
}

func (w *World) GlobalCooldown() time.Duration {
	if rem := w.gcdEnd.Sub(w.now); rem > 0 {
		return rem
	}
	return 0
}

// ---- world.Inventory ----

func (w *World) Equipped(slot int) (world.Item, bool) {
	it, ok := w.items[slot]
	if !ok {
		return world.Item{}, false
	}
	return it.Item, true
}

func (w *World) EquippedByName(name string) (world.Item, bool) {
	for _, it := range w.items {
		if it.Name == name {
			return it.Item, true
		}
	}
	return world.Item{}, false
}

// ---- world.Commander ----

func (w *World) Cast(id world.SpellID, target world.Unit) error {
	st, ok := w.spells[id]
	if !ok || st.def.Unlearned {
		return world.ErrNotKnown
	}
	if target == nil {
		return world.ErrInvalidTarget
	}
	if w.me.cast != nil {
		return world.ErrBusy
	}
	if !st.def.OffGCD && w.GlobalCooldown() > 0 {
		return world.ErrGlobalCooldown
	}
	if !w.Cooldown(id).Ready() {
		return world.ErrNotReady
	}
	if target.Dead() || (!st.def.AnyTarget && target.Attackable() != st.def.Harmful) {
		return world.ErrInvalidTarget
	}
	if !w.InRange(id, target) {
		return world.ErrOutOfRange
	}
	if !w.Usable(id) {
		return world.ErrInsufficientResource
	}

	w.me.power[st.def.Power] -= st.def.Cost
	w.consume(st)
	if !st.def.OffGCD {
		w.gcdEnd = w.now.Add(w.gcd)
	}
	if st.def.CastTime > 0 {
		w.me.cast = &world.Cast{Spell: id, Name: st.def.Name, Remaining: st.def.CastTime}
	}
	w.apply(st.def, target.GUID())
	w.log = append(w.log, CastRecord{At: w.now, Spell: id, Name: st.def.Name, Target: target.GUID()})
	return nil
}

func (w *World) consume(st *spellState) {
	if st.def.MaxCharges == 0 {
		st.readyAt = w.now.Add(st.def.Cooldown)
		return
	}
	if st.charges == st.def.MaxCharges {
		st.readyAt = w.now.Add(st.def.Cooldown)
	}
	st.charges--
}

func (w *World) apply(def Spell, target world.GUID) {
	u := w.UnitByGUID(target)
	if u == nil && w.me.pet != nil && w.me.pet.guid == target {
		u = w.me.pet
	}
	if u == nil {
		return
	}
	if def.Interrupt {
		if c, ok := u.Casting(); ok && c.Interruptible {
			u.StopCast()
		}
	}
	if len(def.Dispels) > 0 {
		u.removeDispellable(!def.Harmful, def.Dispels)
	}
	for _, a := range def.Applies {
		if a.Caster == 0 {
			a.Caster = w.me.guid
		}
		u.AddAura(a)
	}
}

func (w *World) StopCasting() error {
	w.me.cast = nil
	return nil
}

func (w *World) CancelAura(id world.AuraID) error {
	w.me.RemoveAura(id)
	return nil
}

func (w *World) StartAttack(target world.Unit) error {
	if target == nil || !target.Attackable() || target.Dead() {
		return world.ErrInvalidTarget
	}
	w.me.autoAttack = true
	return nil
}

func (w *World) UseItem(slot int, target world.Unit) error {
	it, ok := w.items[slot]
	if !ok || !it.Usable(w.now) {
		return world.ErrNoItem
	}
	it.Cooldown = it.UseCooldown
	if it.HasCharges {
		it.Charges--
	}
	var tg world.GUID
	if target != nil {
		tg = target.GUID()
	}
	w.log = append(w.log, CastRecord{At: w.now, Name: "item:" + it.Name, Target: tg})
	return nil
}
