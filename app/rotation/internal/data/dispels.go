package data

import (
	_ "embed"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/world"
)

//go:embed dispels.yaml
var defaultDispels []byte

// DispelPriority 驱散优先级
type DispelPriority int

const (
	DispelPriorityNone DispelPriority = iota
	DispelPriorityLow
	DispelPriorityMedium
	DispelPriorityHigh
	DispelPriorityCritical
)

var priorityNames = [...]string{"none", "low", "medium", "high", "critical"}

func (p DispelPriority) String() string {
	if p < DispelPriorityNone || p > DispelPriorityCritical {
		return "unknown"
	}
	return priorityNames[p]
}

// ParseDispelPriority 解析优先级名称（不区分大小写）
func ParseDispelPriority(s string) (DispelPriority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range priorityNames {
		if name == s {
			return DispelPriority(i), nil
		}
	}
	return DispelPriorityNone, errors.Wrapf(ErrInvalidPriority, "%q", s)
}

// UnmarshalYAML 支持以名称书写优先级
func (p *DispelPriority) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseDispelPriority(node.Value)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ErrInvalidPriority 无法识别的优先级
var ErrInvalidPriority = errors.New("data: invalid dispel priority")

// DispelConfig 驱散表配置
type DispelConfig struct {
	// Overrides 光环 ID 到优先级名称，覆盖内置表
	Overrides map[uint32]string `mapstructure:"overrides"`
	// Unknown 不在表中的光环使用的优先级
	Unknown string `mapstructure:"unknown"`
}

type dispelEntry struct {
	ID       uint32         `yaml:"id"`
	Priority DispelPriority `yaml:"priority"`
	Name     string         `yaml:"name"`
}

type dispelFile struct {
	Dispels []dispelEntry `yaml:"dispels"`
}

// DispelTable 光环到驱散优先级的映射，构建后只读
type DispelTable struct {
	entries map[world.AuraID]DispelPriority
	names   map[world.AuraID]string
	unknown DispelPriority
}

// ParseDispelTable 从 YAML 解析驱散表
func ParseDispelTable(raw []byte) (*DispelTable, error) {
	var f dispelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse dispel table")
	}

	t := &DispelTable{
		entries: make(map[world.AuraID]DispelPriority, len(f.Dispels)),
		names:   make(map[world.AuraID]string, len(f.Dispels)),
	}
	for _, e := range f.Dispels {
		id := world.AuraID(e.ID)
		t.entries[id] = e.Priority
		t.names[id] = e.Name
	}
	return t, nil
}

// DefaultDispelTable 内置驱散表
func DefaultDispelTable() *DispelTable {
	t, err := ParseDispelTable(defaultDispels)
	if err != nil {
		panic(err)
	}
	return t
}

// NewDispelTable 内置表叠加配置覆盖
func NewDispelTable(cfg *DispelConfig) (*DispelTable, error) {
	t := DefaultDispelTable()
	if cfg == nil {
		return t, nil
	}

	for id, name := range cfg.Overrides {
		p, err := ParseDispelPriority(name)
		if err != nil {
			return nil, errors.Wrapf(err, "override for aura %d", id)
		}
		t.entries[world.AuraID(id)] = p
	}

	if cfg.Unknown != "" {
		p, err := ParseDispelPriority(cfg.Unknown)
		if err != nil {
			return nil, errors.Wrap(err, "unknown aura priority")
		}
		t.unknown = p
	}
	return t, nil
}

// Priority 光环的驱散优先级，表中没有时使用 unknown 配置
func (t *DispelTable) Priority(id world.AuraID) DispelPriority {
	if p, ok := t.Lookup(id); ok {
		return p
	}
	return t.unknown
}

// Lookup 表中（含覆盖项）登记的优先级，ok 表示光环是否在表中
func (t *DispelTable) Lookup(id world.AuraID) (DispelPriority, bool) {
	p, ok := t.entries[id]
	return p, ok
}

// Name 光环名称，表中没有时为空
func (t *DispelTable) Name(id world.AuraID) string {
	return t.names[id]
}

// Len 表项数量
func (t *DispelTable) Len() int {
	return len(t.entries)
}
