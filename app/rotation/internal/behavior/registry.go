package behavior

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound 没有匹配的循环
	ErrNotFound = errors.New("behavior: not found")
	// ErrDuplicate 名称已注册
	ErrDuplicate = errors.New("behavior: duplicate name")
	// ErrNilFactory 工厂为空
	ErrNilFactory = errors.New("behavior: nil factory")
)

// Registration 注册信息
type Registration struct {
	Name           string
	Specialization Specialization
	Context        Context
	Factory        Factory
}

// Registry 循环注册表
type Registry struct {
	mu      sync.RWMutex
	entries []Registration
	byName  map[string]int
}

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register 注册循环工厂
func (r *Registry) Register(reg Registration) error {
	if reg.Factory == nil {
		return errors.Wrapf(ErrNilFactory, "%q", reg.Name)
	}
	if reg.Specialization == "" {
		reg.Specialization = SpecAll
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[reg.Name]; ok {
		return errors.Wrapf(ErrDuplicate, "%q", reg.Name)
	}
	r.byName[reg.Name] = len(r.entries)
	r.entries = append(r.entries, reg)
	return nil
}

// MustRegister 注册循环工厂，失败时 panic
func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// New 按名称创建循环
func (r *Registry) New(name string, deps Deps) (Behavior, error) {
	r.mu.RLock()
	i, ok := r.byName[name]
	var reg Registration
	if ok {
		reg = r.entries[i]
	}
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "name %q", name)
	}
	return build(reg, deps)
}

// Resolve 按专精和场景选择循环
// 专精完全匹配的优先于 SpecAll，同级按注册顺序取第一个
func (r *Registry) Resolve(spec Specialization, ctx Context, deps Deps) (Behavior, error) {
	r.mu.RLock()
	var (
		found    bool
		fallback bool
		reg      Registration
	)
	for _, e := range r.entries {
		if !e.Context.Matches(ctx) {
			continue
		}
		if e.Specialization == spec {
			reg, found = e, true
			break
		}
		if e.Specialization == SpecAll && !fallback {
			reg, fallback = e, true
		}
	}
	r.mu.RUnlock()

	if !found && !fallback {
		return nil, errors.Wrapf(ErrNotFound, "specialization %q context %s", spec, ctx)
	}
	return build(reg, deps)
}

// List 所有注册信息，按名称排序
func (r *Registry) List() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, len(r.entries))
	copy(out, r.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func build(reg Registration, deps Deps) (Behavior, error) {
	b, err := reg.Factory(deps)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create behavior %q", reg.Name)
	}
	return b, nil
}
