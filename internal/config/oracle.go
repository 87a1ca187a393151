package config

import (
	"fmt"
	"os"

	"github.com/roach88/elemental/internal/oracle"
)

// Build constructs the configured backend wrapped for use by the engine:
// rate limited, then coalesced, then counted. Coalesced callers share one
// rate-limit token.
func (o OracleConfig) Build() (oracle.Oracle, error) {
	next, err := o.backend()
	if err != nil {
		return nil, err
	}

	if o.RatePerSecond > 0 {
		next = oracle.NewLimited(next, o.RatePerSecond, o.Burst)
	}
	return oracle.NewInstrumented(oracle.NewCoalescing(next)), nil
}

func (o OracleConfig) backend() (oracle.Oracle, error) {
	switch o.Kind {
	case OracleHTTP:
		return oracle.NewHTTPClient(o.BaseURL, o.Timeout)
	case OracleOpenAI:
		key := ""
		if o.APIKeyEnv != "" {
			key = os.Getenv(o.APIKeyEnv)
		}
		return oracle.NewOpenAIClient(key, o.APIBase, o.Model, o.Timeout)
	case OracleTable:
		return oracle.LoadTable(o.Recipes)
	default:
		return nil, fmt.Errorf("unknown oracle kind %q", o.Kind)
	}
}
