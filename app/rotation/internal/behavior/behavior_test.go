package behavior

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/spell"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
)

type stubBehavior struct {
	name string
	spec Specialization
	ctx  Context
}

func (s *stubBehavior) Name() string                   { return s.name }
func (s *stubBehavior) Specialization() Specialization { return s.spec }
func (s *stubBehavior) Context() Context               { return s.ctx }
func (s *stubBehavior) Build() bt.Node                 { return bt.Succeed(s.name) }

func stub(name string, spec Specialization, ctx Context) Registration {
	return Registration{
		Name:           name,
		Specialization: spec,
		Context:        ctx,
		Factory: func(Deps) (Behavior, error) {
			return &stubBehavior{name: name, spec: spec, ctx: ctx}, nil
		},
	}
}

func TestParseContext(t *testing.T) {
	tests := []struct {
		in   string
		want Context
		ok   bool
	}{
		{"", ContextAny, true},
		{"any", ContextAny, true},
		{"PvP", ContextPvP, true},
		{" pve ", ContextPvE, true},
		{"raid", ContextAny, false},
	}
	for _, tt := range tests {
		got, ok := ParseContext(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "pvp", ContextPvP.String())
	assert.Equal(t, "unknown", Context(9).String())
}

func TestContextMatches(t *testing.T) {
	assert.True(t, ContextAny.Matches(ContextPvP))
	assert.True(t, ContextPvE.Matches(ContextAny))
	assert.True(t, ContextPvP.Matches(ContextPvP))
	assert.False(t, ContextPvE.Matches(ContextPvP))
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stub("a", "x.y", ContextAny)))

	err := r.Register(stub("a", "x.z", ContextAny))
	assert.True(t, errors.Is(err, ErrDuplicate))

	err = r.Register(Registration{Name: "b"})
	assert.True(t, errors.Is(err, ErrNilFactory))

	assert.Panics(t, func() { r.MustRegister(stub("a", "x.y", ContextAny)) })
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(stub("generic", "", ContextAny))
	r.MustRegister(stub("unholy pve", "deathknight.unholy", ContextPvE))
	r.MustRegister(stub("unholy pvp", "deathknight.unholy", ContextPvP))
	r.MustRegister(stub("unholy any", "deathknight.unholy", ContextAny))

	tests := []struct {
		spec Specialization
		ctx  Context
		want string
	}{
		{"deathknight.unholy", ContextPvP, "unholy pvp"},
		{"deathknight.unholy", ContextPvE, "unholy pve"},
		{"deathknight.unholy", ContextAny, "unholy pve"},
		{"evoker.preservation", ContextPvE, "generic"},
	}
	for _, tt := range tests {
		b, err := r.Resolve(tt.spec, tt.ctx, Deps{})
		require.NoError(t, err)
		assert.Equal(t, tt.want, b.Name())
	}

	empty := NewRegistry()
	_, err := empty.Resolve("deathknight.unholy", ContextAny, Deps{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegistryNew(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(stub("b", "", ContextAny))
	r.MustRegister(stub("a", "", ContextAny))
	r.MustRegister(Registration{
		Name: "broken",
		Factory: func(Deps) (Behavior, error) {
			return nil, errors.New("boom")
		},
	})

	b, err := r.New("a", Deps{})
	require.NoError(t, err)
	assert.Equal(t, SpecAll, b.Specialization())

	_, err = r.New("missing", Deps{})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = r.New("broken", Deps{})
	assert.ErrorContains(t, err, "boom")

	names := []string{}
	for _, reg := range r.List() {
		names = append(names, reg.Name)
	}
	assert.Equal(t, []string{"a", "b", "broken"}, names)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time      { return c.t }
func (c *fakeClock) add(d time.Duration) { c.t = c.t.Add(d) }

func TestTimer(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	tm := NewTimer(clk.now)

	assert.Equal(t, spell.Never, tm.Since())
	assert.True(t, tm.Elapsed(time.Hour))

	tm.Mark()
	clk.add(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, tm.Since())
	assert.False(t, tm.Elapsed(2*time.Second))
	clk.add(500 * time.Millisecond)
	assert.True(t, tm.Elapsed(2*time.Second))

	tm.Reset()
	assert.Equal(t, spell.Never, tm.Since())
}

func TestWindow(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	w := NewWindow(clk.now, 10*time.Second)

	assert.False(t, w.Active())
	assert.Zero(t, w.Remaining())

	w.Open()
	assert.Equal(t, 1, w.Generation())
	clk.add(4 * time.Second)
	assert.True(t, w.Active())
	assert.Equal(t, 4*time.Second, w.Elapsed())
	assert.Equal(t, 6*time.Second, w.Remaining())

	clk.add(6 * time.Second)
	assert.False(t, w.Active())
	assert.Zero(t, w.Elapsed())

	w.Open()
	w.SetDuration(2 * time.Second)
	clk.add(time.Second)
	assert.True(t, w.Active())
	assert.Equal(t, 2, w.Generation())

	w.Close()
	assert.False(t, w.Active())
}
