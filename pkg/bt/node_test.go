package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder 记录动作的调用顺序
type recorder struct {
	calls []string
}

func (r *recorder) action(name string, status Status) *Action {
	return NewAction(name, func() Status {
		r.calls = append(r.calls, name)
		return status
	})
}

func (r *recorder) count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
		valid  bool
	}{
		{StatusSuccess, "Success", true},
		{StatusFailure, "Failure", true},
		{StatusRunning, "Running", true},
		{StatusInvalid, "Invalid", false},
		{Status(42), "Invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
			assert.Equal(t, tt.valid, tt.status.Valid())
		})
	}
}

func TestActionReturnsDecisionVerbatim(t *testing.T) {
	for _, status := range []Status{StatusSuccess, StatusFailure, StatusRunning} {
		t.Run(status.String(), func(t *testing.T) {
			calls := 0
			a := NewAction("leaf", func() Status {
				calls++
				return status
			})
			assert.Equal(t, status, a.Tick())
			assert.Equal(t, 1, calls)
			assert.Equal(t, "leaf", a.Name())
		})
	}
}

func TestSelectorShortCircuit(t *testing.T) {
	r := &recorder{}
	sel := NewSelector("root",
		r.action("c1", StatusSuccess),
		r.action("c2", StatusSuccess),
	)

	assert.Equal(t, StatusSuccess, sel.Tick())
	assert.Equal(t, []string{"c1"}, r.calls)
}

func TestSequenceShortCircuit(t *testing.T) {
	r := &recorder{}
	seq := NewSequence("root",
		r.action("c1", StatusFailure),
		r.action("c2", StatusSuccess),
	)

	assert.Equal(t, StatusFailure, seq.Tick())
	assert.Equal(t, []string{"c1"}, r.calls)
}

func TestSelectorAllFail(t *testing.T) {
	r := &recorder{}
	sel := NewSelector("root",
		r.action("a", StatusFailure),
		r.action("b", StatusFailure),
		r.action("c", StatusFailure),
	)

	assert.Equal(t, StatusFailure, sel.Tick())
	assert.Equal(t, []string{"a", "b", "c"}, r.calls)
}

func TestSequenceAllSucceed(t *testing.T) {
	r := &recorder{}
	seq := NewSequence("root",
		r.action("a", StatusSuccess),
		r.action("b", StatusSuccess),
		r.action("c", StatusSuccess),
	)

	assert.Equal(t, StatusSuccess, seq.Tick())
	assert.Equal(t, []string{"a", "b", "c"}, r.calls)
}

func TestDecoratorGate(t *testing.T) {
	t.Run("guard false skips child", func(t *testing.T) {
		r := &recorder{}
		d := NewDecorator("gate", func() bool { return false }, r.action("child", StatusSuccess))

		assert.Equal(t, StatusFailure, d.Tick())
		assert.Empty(t, r.calls)
	})

	for _, status := range []Status{StatusSuccess, StatusFailure, StatusRunning} {
		t.Run("guard true passes "+status.String(), func(t *testing.T) {
			r := &recorder{}
			d := NewDecorator("gate", func() bool { return true }, r.action("child", status))

			assert.Equal(t, status, d.Tick())
			assert.Equal(t, 1, r.count("child"))
		})
	}
}

func TestVacuousComposites(t *testing.T) {
	assert.Equal(t, StatusFailure, NewSelector("empty").Tick())
	assert.Equal(t, StatusSuccess, NewSequence("empty").Tick())
}

func TestOrderSensitivity(t *testing.T) {
	r1 := &recorder{}
	ab := NewSelector("ab", r1.action("A", StatusSuccess), r1.action("B", StatusSuccess))
	require.Equal(t, StatusSuccess, ab.Tick())

	r2 := &recorder{}
	ba := NewSelector("ba", r2.action("B", StatusSuccess), r2.action("A", StatusSuccess))
	require.Equal(t, StatusSuccess, ba.Tick())

	assert.Equal(t, []string{"A"}, r1.calls)
	assert.Equal(t, []string{"B"}, r2.calls)
	assert.NotEqual(t, r1.calls, r2.calls)

	r3 := &recorder{}
	seqAB := NewSequence("ab", r3.action("A", StatusFailure), r3.action("B", StatusFailure))
	r4 := &recorder{}
	seqBA := NewSequence("ba", r4.action("B", StatusFailure), r4.action("A", StatusFailure))
	seqAB.Tick()
	seqBA.Tick()
	assert.Equal(t, []string{"A"}, r3.calls)
	assert.Equal(t, []string{"B"}, r4.calls)
}

func TestRunningPropagation(t *testing.T) {
	tests := []struct {
		name string
		node func(r *recorder) Node
	}{
		{
			name: "selector",
			node: func(r *recorder) Node {
				return NewSelector("sel",
					r.action("fail", StatusFailure),
					r.action("run", StatusRunning),
					r.action("after", StatusSuccess),
				)
			},
		},
		{
			name: "sequence",
			node: func(r *recorder) Node {
				return NewSequence("seq",
					r.action("ok", StatusSuccess),
					r.action("run", StatusRunning),
					r.action("after", StatusSuccess),
				)
			},
		},
		{
			name: "nested",
			node: func(r *recorder) Node {
				return NewSelector("outer",
					NewSequence("inner", r.action("run", StatusRunning)),
					r.action("after", StatusSuccess),
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			assert.Equal(t, StatusRunning, tt.node(r).Tick())
			assert.Zero(t, r.count("after"))
			assert.Equal(t, 1, r.count("run"))
		})
	}
}

func TestRunningDoesNotResumeMidTree(t *testing.T) {
	r := &recorder{}
	seq := NewSequence("seq",
		r.action("first", StatusSuccess),
		r.action("run", StatusRunning),
	)

	seq.Tick()
	seq.Tick()
	// 每一帧都从头开始，没有保留上一帧的位置
	assert.Equal(t, []string{"first", "run", "first", "run"}, r.calls)
}

func TestTickIsRepeatable(t *testing.T) {
	ready := false
	r := &recorder{}
	root := NewSelector("root",
		NewDecorator("ready", func() bool { return ready }, r.action("cast", StatusSuccess)),
		r.action("fallback", StatusFailure),
	)

	assert.Equal(t, root.Tick(), root.Tick())
	ready = true
	assert.Equal(t, StatusSuccess, root.Tick())
	assert.Equal(t, StatusSuccess, root.Tick())
	assert.Equal(t, 2, r.count("cast"))
}

func TestScenarios(t *testing.T) {
	t.Run("selector picks first success", func(t *testing.T) {
		r := &recorder{}
		root := NewSelector("root",
			NewAction("fail", func() Status { return StatusFailure }),
			r.action("second", StatusSuccess),
			r.action("third", StatusSuccess),
		)
		assert.Equal(t, StatusSuccess, root.Tick())
		assert.Equal(t, []string{"second"}, r.calls)
	})

	t.Run("sequence stops at failure", func(t *testing.T) {
		r := &recorder{}
		root := NewSequence("root",
			Succeed("ok"),
			Fail("fail"),
			r.action("third", StatusSuccess),
		)
		assert.Equal(t, StatusFailure, root.Tick())
		assert.Empty(t, r.calls)
	})

	t.Run("closed decorator", func(t *testing.T) {
		r := &recorder{}
		root := NewDecorator("gate", func() bool { return false }, r.action("child", StatusSuccess))
		assert.Equal(t, StatusFailure, root.Tick())
		assert.Empty(t, r.calls)
	})

	t.Run("nested decorator branch wins", func(t *testing.T) {
		r := &recorder{}
		root := NewSelector("root",
			NewDecorator("open", func() bool { return true },
				NewSequence("steps", r.action("s1", StatusSuccess), r.action("s2", StatusSuccess)),
			),
			r.action("trailing", StatusSuccess),
		)
		assert.Equal(t, StatusSuccess, root.Tick())
		assert.Equal(t, []string{"s1", "s2"}, r.calls)
	})
}

func TestInverter(t *testing.T) {
	tests := []struct {
		in   Status
		want Status
	}{
		{StatusSuccess, StatusFailure},
		{StatusFailure, StatusSuccess},
		{StatusRunning, StatusRunning},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			status := tt.in
			inv := NewInverter("not", NewAction("leaf", func() Status { return status }))
			assert.Equal(t, tt.want, inv.Tick())
		})
	}
}
