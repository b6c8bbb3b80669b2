// Package engine provides the population scheduler, the simulation model and
// the run loop that drives it for a fixed number of steps.
package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/ideology-sim/internal/entropy"
)

// Run validates opts, builds a simulation, advances it opts.Steps times and
// returns the assembled result. The only error is a *ConfigError.
func Run(opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	seed := entropy.CryptoSeed()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	start := time.Now()
	slog.Info("simulation started", "population", opts.Population, "steps", opts.Steps, "seed", seed)

	sim := NewSimulation(opts.Population, entropy.NewStream(seed), !opts.SkipAgentSnapshots)
	for i := 0; i < opts.Steps; i++ {
		rec := sim.Step()
		if opts.OnStep != nil {
			opts.OnStep(rec)
		}
	}
	res := sim.Result()

	slog.Info("simulation finished",
		"seed", seed,
		"steps", opts.Steps,
		"population", sim.Scheduler.Len(),
		"births", sim.Stats.Births,
		"deaths", sim.Stats.Deaths,
		"media_events", len(sim.Media.Events),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}
