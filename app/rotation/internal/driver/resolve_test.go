package driver

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-rotation/app/rotation/internal/behavior"
	"github.com/lk2023060901/xdooria-rotation/pkg/bt"
)

func TestResolve(t *testing.T) {
	reg := behavior.NewRegistry()
	for _, name := range []string{"first", "second"} {
		reg.MustRegister(behavior.Registration{
			Name: name,
			Factory: func(behavior.Deps) (behavior.Behavior, error) {
				return &funcBehavior{name: name, build: func() bt.Node { return bt.Succeed(name) }}, nil
			},
		})
	}

	b, err := Resolve(reg, &Config{Behavior: "second"}, behavior.Deps{})
	require.NoError(t, err)
	assert.Equal(t, "second", b.Name())

	b, err = Resolve(reg, &Config{Specialization: "druid.restoration", Context: "pvp"}, behavior.Deps{})
	require.NoError(t, err)
	assert.Equal(t, "first", b.Name())

	_, err = Resolve(reg, &Config{Context: "raid"}, behavior.Deps{})
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = Resolve(reg, &Config{Behavior: "missing"}, behavior.Deps{})
	assert.True(t, errors.Is(err, behavior.ErrNotFound))
}
