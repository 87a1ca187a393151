package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_File(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/first_discovery.yaml")
	require.NoError(t, err)

	assert.Equal(t, "first_discovery", s.Name)
	require.Len(t, s.Seed, 2)
	require.Len(t, s.Recipes.Combine, 1)
	assert.Equal(t, "Mud", s.Recipes.Combine[0].Result.Symbol)
	require.Len(t, s.Steps, 5)
	assert.Equal(t, "Earth", s.Steps[0].Select)
	require.NotNil(t, s.Steps[1].Release)
	assert.Equal(t, 100, s.Steps[1].Release.X)
	assert.Equal(t, ResolveAll, s.Steps[4].Resolve)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_GeometryAndSurface(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: g
description: "custom layout"
surface: {width: 80, height: 24}
geometry:
  sidebar_width: 32
  padding: 0
  split_offset: 6
  duplicate_offset: {x: 2, y: 1}
recipes: {}
steps:
  - cancel: true
assertions:
  - type: state
    state: idle
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	require.NotNil(t, s.Surface)
	assert.Equal(t, 80, s.Surface.Width)
	require.NotNil(t, s.Geometry)
	assert.Equal(t, 32, s.Geometry.SidebarWidth)
	assert.Equal(t, 2, s.Geometry.DuplicateOffset.X)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nstepz: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: d\nsteps: [{cancel: true}]\nassertions: [{type: state, state: idle}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nsteps: [{cancel: true}]\nassertions: [{type: state, state: idle}]\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: x\ndescription: d\nassertions: [{type: state, state: idle}]\n",
			want: "steps list is required",
		},
		{
			name: "no assertions",
			yaml: "name: x\ndescription: d\nsteps: [{cancel: true}]\n",
			want: "assertions list is required",
		},
		{
			name: "two step kinds",
			yaml: "name: x\ndescription: d\nsteps: [{cancel: true, select: Earth}]\nassertions: [{type: state, state: idle}]\n",
			want: "steps[0]: exactly one step kind",
		},
		{
			name: "bad resolve order",
			yaml: "name: x\ndescription: d\nsteps: [{resolve: sideways}]\nassertions: [{type: state, state: idle}]\n",
			want: "is not one of all, reverse",
		},
		{
			name: "bad button",
			yaml: "name: x\ndescription: d\nsteps: [{press: {button: thumb, x: 1, y: 1}}]\nassertions: [{type: state, state: idle}]\n",
			want: `unknown button "thumb"`,
		},
		{
			name: "seed without glyph",
			yaml: "name: x\ndescription: d\nseed: [{symbol: Earth}]\nsteps: [{cancel: true}]\nassertions: [{type: state, state: idle}]\n",
			want: "seed[0]: symbol and glyph are required",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: d\nsteps: [{cancel: true}]\nassertions: [{type: vibes}]\n",
			want: `unknown assertion type "vibes"`,
		},
		{
			name: "combo without result",
			yaml: "name: x\ndescription: d\nsteps: [{cancel: true}]\nassertions: [{type: combo, a: Earth, b: Water}]\n",
			want: "combo requires symbol or tombstone",
		},
		{
			name: "split with one symbol",
			yaml: "name: x\ndescription: d\nsteps: [{cancel: true}]\nassertions: [{type: split, symbol: Steam, symbols: [Fire]}]\n",
			want: "split requires two symbols or tombstone",
		},
		{
			name: "placement without position",
			yaml: "name: x\ndescription: d\nsteps: [{cancel: true}]\nassertions: [{type: placement, symbol: Earth}]\n",
			want: "placement requires symbol, x and y",
		},
		{
			name: "unknown cue",
			yaml: "name: x\ndescription: d\nsteps: [{cancel: true}]\nassertions: [{type: cues, cues: [boom]}]\n",
			want: `unknown cue "boom"`,
		},
		{
			name: "count missing",
			yaml: "name: x\ndescription: d\nsteps: [{cancel: true}]\nassertions: [{type: oracle_calls}]\n",
			want: "oracle_calls requires count",
		},
		{
			name: "unknown state",
			yaml: "name: x\ndescription: d\nsteps: [{cancel: true}]\nassertions: [{type: state, state: floating}]\n",
			want: `unknown state "floating"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
