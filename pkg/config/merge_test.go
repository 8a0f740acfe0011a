package config

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mergeTestConfig struct {
	Name     string
	Interval time.Duration
	Enabled  bool
	Ratio    float64
	Labels   map[string]string
	Spells   []string
	Limits   mergeLimits
	Optional *mergeLimits
}

type mergeLimits struct {
	Rate  float64
	Burst int
}

func TestMergeConfigOverridesNonZero(t *testing.T) {
	dst := &mergeTestConfig{
		Name:     "default",
		Interval: 100 * time.Millisecond,
		Ratio:    0.5,
		Labels:   map[string]string{"env": "dev", "region": "eu"},
		Spells:   []string{"Festering Strike"},
		Limits:   mergeLimits{Rate: 1, Burst: 5},
	}
	src := &mergeTestConfig{
		Interval: 50 * time.Millisecond,
		Enabled:  true,
		Labels:   map[string]string{"env": "prod"},
		Spells:   []string{"Death Coil", "Scourge Strike"},
		Limits:   mergeLimits{Burst: 10},
	}

	got, err := MergeConfig(dst, src)
	require.NoError(t, err)

	assert.Equal(t, "default", got.Name)
	assert.Equal(t, 50*time.Millisecond, got.Interval)
	assert.True(t, got.Enabled)
	assert.InDelta(t, 0.5, got.Ratio, 1e-9)
	assert.Equal(t, map[string]string{"env": "prod", "region": "eu"}, got.Labels)
	assert.Equal(t, []string{"Death Coil", "Scourge Strike"}, got.Spells)
	assert.Equal(t, mergeLimits{Rate: 1, Burst: 10}, got.Limits)
	assert.Nil(t, got.Optional)
}

func TestMergeConfigPointer(t *testing.T) {
	dst := &mergeTestConfig{}
	src := &mergeTestConfig{Optional: &mergeLimits{Rate: 2}}

	got, err := MergeConfig(dst, src)
	require.NoError(t, err)
	require.NotNil(t, got.Optional)
	assert.InDelta(t, 2.0, got.Optional.Rate, 1e-9)
}

func TestMergeConfigNilHandling(t *testing.T) {
	cfg := &mergeTestConfig{Name: "only"}

	got, err := MergeConfig(nil, cfg)
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	got, err = MergeConfig(cfg, nil)
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	_, err = MergeConfig[mergeTestConfig](nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNilConfig))
}

func TestMergeConfigEmptySourceKeepsDefaults(t *testing.T) {
	dst := &mergeTestConfig{Name: "default", Interval: time.Second}
	got, err := MergeConfig(dst, &mergeTestConfig{})
	require.NoError(t, err)
	assert.Equal(t, "default", got.Name)
	assert.Equal(t, time.Second, got.Interval)
}

func TestMergeConfigNestedMaps(t *testing.T) {
	type spellSettings struct {
		Dispels map[string]mergeLimits
	}
	dst := &spellSettings{Dispels: map[string]mergeLimits{"Polymorph": {Rate: 1, Burst: 2}}}
	src := &spellSettings{Dispels: map[string]mergeLimits{
		"Polymorph": {Burst: 4},
		"Fear":      {Rate: 3},
	}}

	got, err := MergeConfig(dst, src)
	require.NoError(t, err)
	assert.Equal(t, mergeLimits{Rate: 1, Burst: 4}, got.Dispels["Polymorph"])
	assert.Equal(t, mergeLimits{Rate: 3}, got.Dispels["Fear"])
}
