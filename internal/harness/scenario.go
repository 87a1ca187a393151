package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/elemental/internal/canvas"
	"github.com/roach88/elemental/internal/oracle"
)

// Scenario is a scripted play session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Surface is the canvas size. Defaults to 1000x600.
	Surface *Surface `yaml:"surface,omitempty"`

	// Geometry overrides the default pixel geometry.
	Geometry *canvas.Geometry `yaml:"geometry,omitempty"`

	// Seed is the initial known-elements list.
	Seed []oracle.TableItem `yaml:"seed"`

	// Recipes scripts the oracle. Anything not listed fails.
	Recipes oracle.TableFile `yaml:"recipes"`

	// Cache pre-populates the cache. An empty result is a tombstone.
	Cache oracle.TableFile `yaml:"cache,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Surface is a canvas size.
type Surface struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Step is one scripted input. Exactly one field is set.
type Step struct {
	Select      string       `yaml:"select,omitempty"`
	Press       *PointerStep `yaml:"press,omitempty"`
	Release     *PointerStep `yaml:"release,omitempty"`
	Move        *PointerStep `yaml:"move,omitempty"`
	DoubleClick *PointerStep `yaml:"double_click,omitempty"`
	Cancel      bool         `yaml:"cancel,omitempty"`
	Resize      *Surface     `yaml:"resize,omitempty"`
	Resolve     string       `yaml:"resolve,omitempty"`
}

// PointerStep is a pointer position with an optional button.
// The button defaults to primary, or none for moves.
type PointerStep struct {
	Button string `yaml:"button,omitempty"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
}

// Resolve orders.
const (
	ResolveAll     = "all"
	ResolveReverse = "reverse"
)

// Assertion validates the final state.
type Assertion struct {
	// Type selects the check; see the package documentation.
	Type string `yaml:"type"`

	Symbol  string   `yaml:"symbol,omitempty"`
	Symbols []string `yaml:"symbols,omitempty"`
	A       string   `yaml:"a,omitempty"`
	B       string   `yaml:"b,omitempty"`
	X       *int     `yaml:"x,omitempty"`
	Y       *int     `yaml:"y,omitempty"`

	Tombstone bool     `yaml:"tombstone,omitempty"`
	Discovery *bool    `yaml:"discovery,omitempty"`
	Cues      []string `yaml:"cues,omitempty"`
	Count     *int     `yaml:"count,omitempty"`
	State     string   `yaml:"state,omitempty"`
}

// Assertion type constants.
const (
	AssertCanvas      = "canvas"
	AssertPlacement   = "placement"
	AssertKnown       = "known"
	AssertCombo       = "combo"
	AssertSplit       = "split"
	AssertCues        = "cues"
	AssertOracleCalls = "oracle_calls"
	AssertPending     = "pending"
	AssertState       = "state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, item := range s.Seed {
		if item.Symbol == "" || item.Glyph == "" {
			return fmt.Errorf("seed[%d]: symbol and glyph are required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step) error {
	set := 0
	if step.Select != "" {
		set++
	}
	for _, p := range []*PointerStep{step.Press, step.Release, step.Move, step.DoubleClick} {
		if p != nil {
			set++
			if _, err := parseButton(p.Button); err != nil {
				return err
			}
		}
	}
	if step.Cancel {
		set++
	}
	if step.Resize != nil {
		set++
	}
	if step.Resolve != "" {
		set++
		if step.Resolve != ResolveAll && step.Resolve != ResolveReverse {
			return fmt.Errorf("resolve: %q is not one of all, reverse", step.Resolve)
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one step kind must be set, got %d", set)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCanvas:
		// An empty symbols list asserts an empty canvas.
	case AssertPlacement:
		if a.Symbol == "" || a.X == nil || a.Y == nil {
			return fmt.Errorf("assertions[%d]: placement requires symbol, x and y", index)
		}
	case AssertKnown:
		if a.Symbol == "" {
			return fmt.Errorf("assertions[%d]: known requires symbol", index)
		}
	case AssertCombo:
		if a.A == "" || a.B == "" {
			return fmt.Errorf("assertions[%d]: combo requires a and b", index)
		}
		if a.Symbol == "" && !a.Tombstone {
			return fmt.Errorf("assertions[%d]: combo requires symbol or tombstone", index)
		}
	case AssertSplit:
		if a.Symbol == "" {
			return fmt.Errorf("assertions[%d]: split requires symbol", index)
		}
		if len(a.Symbols) != 2 && !a.Tombstone {
			return fmt.Errorf("assertions[%d]: split requires two symbols or tombstone", index)
		}
	case AssertCues:
		for _, c := range a.Cues {
			if _, err := parseCue(c); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertOracleCalls, AssertPending:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: %s requires count", index, a.Type)
		}
	case AssertState:
		if _, err := parseState(a.State); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
