package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elemental/internal/ir"
)

const testRecipes = `combine:
  - {a: Earth, b: Water, result: {symbol: Mud, glyph: m}}
  - {a: Fire, b: Water, result: {symbol: Steam, glyph: s}}
split:
  - symbol: Steam
    into: [{symbol: Fire, glyph: f}, {symbol: Water, glyph: w}]
`

// env is a config file with a table oracle and a database in a temp dir.
type env struct {
	dir     string
	config  string
	db      string
	recipes string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		dir:     dir,
		config:  filepath.Join(dir, "config.yaml"),
		db:      filepath.Join(dir, "data", "elemental.db"),
		recipes: filepath.Join(dir, "recipes.yaml"),
	}
	require.NoError(t, os.WriteFile(e.recipes, []byte(testRecipes), 0o644))

	cfg := "database: " + e.db + "\n" +
		"oracle:\n" +
		"  kind: table\n" +
		"  recipes: " + e.recipes + "\n" +
		"  rate_per_second: 0\n"
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))
	return e
}

// run executes the root command with args and returns stdout, stderr and
// the error.
func (e env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCombineCommand(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "combine", "Water", "Earth")
	require.NoError(t, err)
	assert.Equal(t, "Earth + Water = m Mud (discovery)\n", out)

	out, _, err = e.run(t, "combine", "Earth", "Water")
	require.NoError(t, err)
	assert.Contains(t, out, "m Mud (new)")
	assert.Contains(t, out, "[cached]")
}

func TestCombineCommandJSON(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "--format", "json", "combine", "Fire", "Water")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   ResolveOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "combine", resp.Data.Op)
	assert.Equal(t, []string{"Fire", "Water"}, resp.Data.Inputs)
	require.Len(t, resp.Data.Elements, 1)
	assert.Equal(t, "Steam", resp.Data.Elements[0].Symbol)
	assert.True(t, resp.Data.Elements[0].Discovery)
	assert.Equal(t, "discovery", resp.Data.Elements[0].Cue)
	assert.False(t, resp.Data.Cached)
}

func TestCombineCommandNothingSticksUntilForgotten(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "combine", "Fire", "Earth")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NO_RESULT]")
	assert.Contains(t, out, "Earth + Fire makes nothing")

	// The tombstone answers from the cache now.
	_, _, err = e.run(t, "combine", "Earth", "Fire")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, _, err = e.run(t, "forget", "Fire", "Earth")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot combine Earth + Fire")

	out, _, err = e.run(t, "forget", "Fire", "Earth")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E_NOT_CACHED")
}

func TestSplitCommand(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "split", "Steam")
	require.NoError(t, err)
	assert.Contains(t, out, "Steam = ")
	assert.Contains(t, out, "Fire")
	assert.Contains(t, out, "Water")

	_, _, err = e.run(t, "split", "Earth")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, _, err = e.run(t, "forget", "Earth")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot split Earth")
}

func TestCombineCommandBadConfig(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.config, []byte("oracle:\n  kind: crystal-ball\n"), 0o644))

	_, _, err := e.run(t, "combine", "Earth", "Water")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestCombineCommandArgs(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run(t, "combine", "Earth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg")
}

func TestDBFlagOverridesConfig(t *testing.T) {
	e := newEnv(t)
	other := filepath.Join(e.dir, "other.db")

	_, _, err := e.run(t, "--db", other, "combine", "Earth", "Water")
	require.NoError(t, err)
	assert.FileExists(t, other)
	assert.NoFileExists(t, e.db)
}

func TestKnownCommand(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "known")
	require.NoError(t, err)
	for _, sym := range []string{"Earth", "Water", "Fire", "Wind"} {
		assert.Contains(t, out, sym)
	}
	assert.Contains(t, out, "4 elements")

	_, _, err = e.run(t, "combine", "Earth", "Water")
	require.NoError(t, err)

	out, _, err = e.run(t, "--format", "json", "known", "--query", "m", "--sort", "symbol")
	require.NoError(t, err)
	var resp struct {
		Data KnownOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "Mud", resp.Data.Elements[0].Symbol)
	assert.True(t, resp.Data.Elements[0].Discovery)
	assert.NotZero(t, resp.Data.Elements[0].CreatedAt)
}

func TestKnownCommandSortOrder(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "--format", "json", "known", "--sort", "symbol", "--desc")
	require.NoError(t, err)
	var resp struct {
		Data KnownOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	var got []string
	for _, el := range resp.Data.Elements {
		got = append(got, el.Symbol)
	}
	assert.Equal(t, []string{"Wind", "Water", "Fire", "Earth"}, got)
}

func TestKnownCommandInvalidSort(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run(t, "known", "--sort", "colour")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRecipesCommand(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "recipes", "Earth")
	require.NoError(t, err)
	assert.Contains(t, out, "No known recipes for Earth.")

	out, _, err = e.run(t, "--format", "json", "recipes", "Mud")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, out, "E_UNKNOWN_ELEMENT")

	_, _, err = e.run(t, "combine", "Earth", "Water")
	require.NoError(t, err)

	out, _, err = e.run(t, "recipes", "Mud")
	require.NoError(t, err)
	assert.Contains(t, out, "Earth")
	assert.Contains(t, out, " + ")
	assert.Contains(t, out, "Water")

	out, _, err = e.run(t, "--format", "json", "recipes", "Mud")
	require.NoError(t, err)
	var resp struct {
		Data RecipesOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"Earth + Water"}, resp.Data.MadeFrom)
	assert.Empty(t, resp.Data.SplitFrom)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newEnv(t)
	_, _, err := src.run(t, "combine", "Earth", "Water")
	require.NoError(t, err)
	_, _, err = src.run(t, "split", "Steam")
	require.NoError(t, err)

	save := filepath.Join(src.dir, "save.json")
	out, _, err := src.run(t, "export", save)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 5 elements, 1 combinations and 1 splits")

	var f struct {
		Elements     []ir.Element          `json:"elements"`
		SymbolCombos map[string]ir.Element `json:"symbolCombos"`
	}
	data, err := os.ReadFile(save)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Contains(t, f.SymbolCombos, "Earth+++Water")

	dst := newEnv(t)
	out, errOut, err := dst.run(t, "--format", "json", "import", save)
	require.NoError(t, err)
	assert.Empty(t, errOut)

	var resp struct {
		Data ImportOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, CountsOutput{Elements: 5, Combos: 1, Splits: 1}, resp.Data.Read)
	assert.Equal(t, CountsOutput{Elements: 1, Combos: 1, Splits: 1}, resp.Data.Added)
	assert.Equal(t, CountsOutput{Elements: 5, Combos: 1, Splits: 1}, resp.Data.Total)

	// The imported combination is served from the cache.
	out, _, err = dst.run(t, "combine", "Water", "Earth")
	require.NoError(t, err)
	assert.Contains(t, out, "[cached]")
}

func TestExportToStdout(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, "export", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"symbolCombos"`)
	assert.Contains(t, out, `"Earth"`)
}

func TestImportCommandInvalidEntries(t *testing.T) {
	e := newEnv(t)
	save := filepath.Join(e.dir, "save.json")
	require.NoError(t, os.WriteFile(save, []byte(`{
  "elements": [
    {"symbol": "Mud", "emoji": "m"},
    {"symbol": "", "emoji": "x"}
  ],
  "symbolCombos": {"Earth+++Water": {"symbol": "Mud", "emoji": "m"}},
  "inverseSymbolCombos": {}
}`), 0o644))

	out, errOut, err := e.run(t, "import", save)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 new elements, 1 combinations and 0 splits")
	assert.Contains(t, out, "Database now holds 5 elements, 1 combinations and 0 splits")
	assert.Contains(t, out, "skipped elements[1]")
	assert.Contains(t, errOut, "Warning: 1 of 2 elements are invalid and were ignored")
}

func TestImportCommandErrors(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run(t, "import", filepath.Join(e.dir, "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	bad := filepath.Join(e.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))
	_, _, err = e.run(t, "import", bad)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid file format")
}

func TestScenarioCommand(t *testing.T) {
	out, _, err := newEnv(t).run(t, "scenario",
		"../harness/testdata/scenarios",
		"--golden", "../harness/testdata/golden",
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ first_discovery")
	assert.Contains(t, out, "0 failed")
}

func TestScenarioCommandFilterJSON(t *testing.T) {
	out, _, err := newEnv(t).run(t, "--format", "json", "scenario",
		"../harness/testdata/scenarios",
		"--golden", "../harness/testdata/golden",
		"--filter", "failure*",
	)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   ScenarioSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "failure_sticks", resp.Data.Scenarios[0].Name)
}

func TestScenarioCommandUpdateAndMismatch(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.dir, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "place.yaml"), []byte(`name: place
steps:
  - select: Earth
  - release: {x: 100, y: 100}
assertions:
  - type: canvas
    symbols: [Earth]
`), 0o644))

	out, _, err := e.run(t, "scenario", dir, "--update")
	require.NoError(t, err, out)
	golden := filepath.Join(dir, "golden", "place.golden")
	require.FileExists(t, golden)

	_, _, err = e.run(t, "scenario", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte("{}"), 0o644))
	out, _, err = e.run(t, "scenario", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ place")
	assert.Contains(t, out, "does not match golden file")
}

func TestScenarioCommandFailedAssertion(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.dir, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(`name: wrong
steps:
  - select: Earth
  - release: {x: 100, y: 100}
assertions:
  - type: canvas
    symbols: [Water]
`), 0o644))

	out, _, err := e.run(t, "scenario", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "Assertion failed")
}

func TestScenarioCommandMissingDir(t *testing.T) {
	_, _, err := newEnv(t).run(t, "scenario", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestScenarioCommandEmptyDir(t *testing.T) {
	e := newEnv(t)
	empty := filepath.Join(e.dir, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o755))

	out, _, err := e.run(t, "scenario", empty)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestServeCommand(t *testing.T) {
	e := newEnv(t)
	ready := make(chan string, 1)
	opts := &ServeOptions{
		RootOptions: &RootOptions{Format: "text", Config: e.config},
		Addr:        "127.0.0.1:0",
		Recipes:     e.recipes,
		ready:       ready,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	done := make(chan error, 1)
	go func() { done <- runServe(opts, cmd) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/add?symbols=Water&symbols=Earth")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var el ir.Element
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&el))
	assert.Equal(t, "Mud", el.Symbol)
	assert.Equal(t, "m", el.Glyph)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeCommandRejectsHTTPBackend(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.config, []byte("database: "+e.db+"\n"), 0o644))

	_, _, err := e.run(t, "serve", "--addr", "127.0.0.1:0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "openai or table backend")
}
