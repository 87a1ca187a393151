package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name must match file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures:\n%s", strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRun_IsDeterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/out_of_order.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Cues, second.Cues)
}

func TestRun_PrepopulatedCacheSkipsOracle(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: cached
description: "cached entries resolve without the oracle"
seed:
  - {symbol: Earth, glyph: e}
  - {symbol: Water, glyph: w}
  - {symbol: Mud, glyph: m}
recipes: {}
cache:
  combine:
    - {a: Earth, b: Water, result: {symbol: Mud, glyph: m}}
steps:
  - select: Earth
  - release: {x: 100, y: 100}
  - select: Water
  - release: {x: 105, y: 100}
assertions:
  - type: canvas
    symbols: [Mud]
  - type: known
    symbol: Mud
    discovery: false
  - type: cues
    cues: [plop, plop, new]
  - type: oracle_calls
    count: 0
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures:\n%s", strings.Join(result.Errors, "\n"))
	assert.Empty(t, result.Trace[3].Tasks)
}

func TestRun_PrepopulatedSplitTombstone(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: split_tombstone
description: "an empty split entry is a tombstone"
seed:
  - {symbol: Fire, glyph: f}
recipes: {}
cache:
  split:
    - {symbol: Fire, into: []}
steps:
  - select: Fire
  - release: {x: 100, y: 100}
  - press: {button: right, x: 100, y: 100}
assertions:
  - type: canvas
  - type: split
    symbol: Fire
    tombstone: true
  - type: cues
    cues: [plop, plop, failure]
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures:\n%s", strings.Join(result.Errors, "\n"))
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong
description: "expectations that do not hold"
seed:
  - {symbol: Earth, glyph: e}
recipes: {}
steps:
  - select: Earth
  - release: {x: 100, y: 100}
assertions:
  - type: canvas
    symbols: [Water]
  - type: state
    state: holding
  - type: known
    symbol: Earth
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Expected: [Water]")
	assert.Contains(t, result.Errors[0], "Actual: [Earth]")
	assert.Contains(t, result.Errors[1], "Assertion failed: state")
}

func TestRun_SelectUnknownElement(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: unknown
description: "selecting something never seen"
seed:
  - {symbol: Earth, glyph: e}
recipes: {}
steps:
  - select: Plasma
assertions:
  - type: state
    state: idle
`))
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")
	assert.Contains(t, err.Error(), "Plasma")
}

func TestRun_HeldTasksWaitForResolve(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/first_discovery.yaml")
	require.NoError(t, err)
	scenario.Steps = scenario.Steps[:4]
	scenario.Assertions = []Assertion{
		{Type: AssertPending, Count: intPtr(1)},
		{Type: AssertOracleCalls, Count: intPtr(0)},
		{Type: AssertCanvas},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures:\n%s", strings.Join(result.Errors, "\n"))
}

func intPtr(n int) *int { return &n }
