package engine

import (
	"errors"
	"fmt"
)

// Upper bounds on a single run. A run costs roughly population × steps agent
// updates, plus the same number of snapshot records when those are kept.
const (
	MaxPopulation = 100_000
	MaxSteps      = 10_000
	MaxWork       = 50_000_000
)

// ErrInvalidConfig is the sentinel every ConfigError unwraps to.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError describes a rejected run parameter.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%d: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Options configures one run.
type Options struct {
	Population int
	Steps      int

	// Seed fixes the random stream. Nil picks a fresh seed from crypto/rand.
	Seed *int64

	// SkipAgentSnapshots drops the per-(step, agent) records, which grow as
	// population × steps.
	SkipAgentSnapshots bool

	// OnStep, if set, is called after every step with that step's aggregates.
	OnStep func(ModelRecord)
}

// Validate rejects negative or oversized runs. Zero population and zero
// steps are valid.
func (o Options) Validate() error {
	switch {
	case o.Population < 0:
		return &ConfigError{Field: "population", Value: o.Population, Reason: "must not be negative"}
	case o.Population > MaxPopulation:
		return &ConfigError{Field: "population", Value: o.Population, Reason: fmt.Sprintf("must be at most %d", MaxPopulation)}
	case o.Steps < 0:
		return &ConfigError{Field: "steps", Value: o.Steps, Reason: "must not be negative"}
	case o.Steps > MaxSteps:
		return &ConfigError{Field: "steps", Value: o.Steps, Reason: fmt.Sprintf("must be at most %d", MaxSteps)}
	case o.Population*o.Steps > MaxWork:
		return &ConfigError{Field: "population*steps", Value: o.Population * o.Steps, Reason: fmt.Sprintf("must be at most %d", MaxWork)}
	}
	return nil
}
