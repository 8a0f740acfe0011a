package sim

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
)

// ErrInvalidScenario 场景文件内容无效
var ErrInvalidScenario = errors.New("sim: invalid scenario")

// Scenario YAML 场景描述
type Scenario struct {
	Name   string        `yaml:"name"`
	GCD    time.Duration `yaml:"gcd"`
	Me     PlayerSpec    `yaml:"me"`
	Target uint64        `yaml:"target"`
	Units  []UnitSpec    `yaml:"units"`
	Spells []SpellSpec   `yaml:"spells"`
	Items  []ItemSpec    `yaml:"items"`
}

// UnitSpec 单位描述
type UnitSpec struct {
	GUID     uint64     `yaml:"guid"`
	Name     string     `yaml:"name"`
	Position [3]float64 `yaml:"position"`
	Health   float64    `yaml:"health"`
	Dead     bool       `yaml:"dead"`
	Hostile  bool       `yaml:"hostile"`
	Player   bool       `yaml:"player"`
	Healer   bool       `yaml:"healer"`
	InCombat bool       `yaml:"in_combat"`
	Moving   bool       `yaml:"moving"`
	Target   uint64     `yaml:"target"`
	Auras    []AuraSpec `yaml:"auras"`
	Casting  *CastSpec  `yaml:"casting"`
}

// PlayerSpec 角色描述
type PlayerSpec struct {
	UnitSpec         `yaml:",inline"`
	Power            map[string][2]int `yaml:"power"` // 名称 -> [当前, 上限]
	AutoAttack       bool              `yaml:"auto_attack"`
	Mounted          bool              `yaml:"mounted"`
	Sitting          bool              `yaml:"sitting"`
	ArenaPreparation bool              `yaml:"arena_preparation"`
	NotFacing        []uint64          `yaml:"not_facing"`
	Pet              *UnitSpec         `yaml:"pet"`
}

// AuraSpec 光环描述
type AuraSpec struct {
	ID        uint32        `yaml:"id"`
	Name      string        `yaml:"name"`
	Stacks    int           `yaml:"stacks"`
	Remaining time.Duration `yaml:"remaining"`
	Dispel    string        `yaml:"dispel"`
	Caster    uint64        `yaml:"caster"`
	Harmful   bool          `yaml:"harmful"`
}

// CastSpec 施法描述
type CastSpec struct {
	Spell         uint32        `yaml:"spell"`
	Name          string        `yaml:"name"`
	Channel       bool          `yaml:"channel"`
	Interruptible bool          `yaml:"interruptible"`
	Remaining     time.Duration `yaml:"remaining"`
}

// SpellSpec 技能描述
type SpellSpec struct {
	ID        uint32        `yaml:"id"`
	Name      string        `yaml:"name"`
	Cooldown  time.Duration `yaml:"cooldown"`
	Charges   int           `yaml:"charges"`
	Cost      int           `yaml:"cost"`
	Power     string        `yaml:"power"`
	Range     float64       `yaml:"range"`
	CastTime  time.Duration `yaml:"cast_time"`
	OffGCD    bool          `yaml:"off_gcd"`
	Harmful   bool          `yaml:"harmful"`
	AnyTarget bool          `yaml:"any_target"`
	Unlearned bool          `yaml:"unlearned"`
	Interrupt bool          `yaml:"interrupt"`
	Dispels   []string      `yaml:"dispels"`
	Applies   []AuraSpec    `yaml:"applies"`
}

// ItemSpec 装备描述
type ItemSpec struct {
	Slot        int           `yaml:"slot"`
	ID          uint32        `yaml:"id"`
	Name        string        `yaml:"name"`
	Use         bool          `yaml:"use"`
	Cooldown    time.Duration `yaml:"cooldown"`
	UseCooldown time.Duration `yaml:"use_cooldown"`
	Charges     *int          `yaml:"charges"`
	ExpiresIn   time.Duration `yaml:"expires_in"`
}

// ParseScenario 解析 YAML 场景
func ParseScenario(raw []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrap(err, "failed to parse scenario")
	}
	return &s, nil
}

// LoadScenario 读取场景文件
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scenario %s", path)
	}
	return ParseScenario(raw)
}

// Build 根据场景创建模拟世界
func (s *Scenario) Build() (*World, error) {
	meGUID := s.Me.GUID
	if meGUID == 0 {
		meGUID = 1
	}
	me := NewPlayer(world.GUID(meGUID), s.Me.Name)
	if err := s.Me.UnitSpec.applyTo(&me.Unit); err != nil {
		return nil, err
	}
	me.guid = world.GUID(meGUID)
	for name, v := range s.Me.Power {
		kind, ok := world.ParsePowerType(name)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidScenario, "unknown power %q", name)
		}
		me.SetPower(kind, v[0], v[1])
	}
	me.autoAttack = s.Me.AutoAttack
	me.mounted = s.Me.Mounted
	me.sitting = s.Me.Sitting
	me.arenaPrep = s.Me.ArenaPreparation
	for _, g := range s.Me.NotFacing {
		me.SetFacing(world.GUID(g), false)
	}
	if s.Me.Pet != nil {
		pet, err := s.Me.Pet.build()
		if err != nil {
			return nil, err
		}
		me.pet = pet
	}

	w := NewWorld(me)
	if s.GCD > 0 {
		w.SetGCD(s.GCD)
	}

	for _, us := range s.Units {
		if us.GUID == 0 || world.GUID(us.GUID) == me.guid {
			return nil, errors.Wrapf(ErrInvalidScenario, "unit %q: invalid guid %d", us.Name, us.GUID)
		}
		if _, dup := w.units[world.GUID(us.GUID)]; dup {
			return nil, errors.Wrapf(ErrInvalidScenario, "duplicate guid %d", us.GUID)
		}
		u, err := us.build()
		if err != nil {
			return nil, err
		}
		w.AddUnit(u)
	}

	if s.Target != 0 {
		if w.Unit(world.GUID(s.Target)) == nil {
			return nil, errors.Wrapf(ErrInvalidScenario, "target %d not found", s.Target)
		}
		w.SetTarget(world.GUID(s.Target))
	}

	for _, ss := range s.Spells {
		sp, err := ss.build()
		if err != nil {
			return nil, err
		}
		w.AddSpell(sp)
	}

	for _, is := range s.Items {
		it := ItemDef{
			Item: world.Item{
				Slot:     is.Slot,
				ID:       is.ID,
				Name:     is.Name,
				HasUse:   is.Use,
				Cooldown: is.Cooldown,
			},
			UseCooldown: is.UseCooldown,
		}
		if is.Charges != nil {
			it.HasCharges = true
			it.Charges = *is.Charges
		}
		if is.ExpiresIn > 0 {
			it.Expiration = w.now.Add(is.ExpiresIn)
		}
		w.Equip(it)
	}

	return w, nil
}

func (us UnitSpec) build() (*Unit, error) {
	u := NewUnit(world.GUID(us.GUID), us.Name)
	if err := us.applyTo(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (us UnitSpec) applyTo(u *Unit) error {
	u.name = us.Name
	u.pos = world.Vec3{X: us.Position[0], Y: us.Position[1], Z: us.Position[2]}
	u.health = 100
	if us.Health > 0 {
		u.health = us.Health
	}
	if us.Dead {
		u.health = 0
		u.dead = true
	}
	u.hostile = us.Hostile
	u.player = us.Player
	u.healer = us.Healer
	u.inCombat = us.InCombat
	u.moving = us.Moving
	u.target = world.GUID(us.Target)

	for _, as := range us.Auras {
		a, err := as.build()
		if err != nil {
			return errors.Wrapf(err, "unit %q", us.Name)
		}
		u.AddAura(a)
	}
	if us.Casting != nil {
		u.StartCast(world.Cast{
			Spell:         world.SpellID(us.Casting.Spell),
			Name:          us.Casting.Name,
			Channel:       us.Casting.Channel,
			Interruptible: us.Casting.Interruptible,
			Remaining:     us.Casting.Remaining,
		})
	}
	return nil
}

func (as AuraSpec) build() (world.Aura, error) {
	a := world.Aura{
		ID:        world.AuraID(as.ID),
		Name:      as.Name,
		Stacks:    as.Stacks,
		Remaining: as.Remaining,
		Caster:    world.GUID(as.Caster),
		Harmful:   as.Harmful,
	}
	if as.Dispel != "" {
		d, ok := world.ParseDispelType(as.Dispel)
		if !ok {
			return a, errors.Wrapf(ErrInvalidScenario, "aura %d: unknown dispel type %q", as.ID, as.Dispel)
		}
		a.DispelType = d
	}
	return a, nil
}

func (ss SpellSpec) build() (Spell, error) {
	sp := Spell{
		ID:         world.SpellID(ss.ID),
		Name:       ss.Name,
		Cooldown:   ss.Cooldown,
		MaxCharges: ss.Charges,
		Cost:       ss.Cost,
		Range:      ss.Range,
		CastTime:   ss.CastTime,
		OffGCD:     ss.OffGCD,
		Harmful:    ss.Harmful,
		AnyTarget:  ss.AnyTarget,
		Unlearned:  ss.Unlearned,
		Interrupt:  ss.Interrupt,
	}
	if ss.ID == 0 || ss.Name == "" {
		return sp, errors.Wrapf(ErrInvalidScenario, "spell %q: id and name are required", ss.Name)
	}
	if ss.Power != "" {
		p, ok := world.ParsePowerType(ss.Power)
		if !ok {
			return sp, errors.Wrapf(ErrInvalidScenario, "spell %q: unknown power %q", ss.Name, ss.Power)
		}
		sp.Power = p
	}
	for _, name := range ss.Dispels {
		d, ok := world.ParseDispelType(name)
		if !ok {
			return sp, errors.Wrapf(ErrInvalidScenario, "spell %q: unknown dispel type %q", ss.Name, name)
		}
		sp.Dispels = append(sp.Dispels, d)
	}
	for _, as := range ss.Applies {
		a, err := as.build()
		if err != nil {
			return sp, err
		}
		sp.Applies = append(sp.Applies, a)
	}
	return sp, nil
}
