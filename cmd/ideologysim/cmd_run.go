package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/ideology-sim/internal/engine"
	"github.com/talgya/ideology-sim/internal/persistence"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print a summary",
		Example: `  ideologysim run --agents 200 --steps 100 --seed 42
  ideologysim run --agents 500 --steps 300 --out result.json --no-snapshots`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			agentCount, _ := cmd.Flags().GetInt("agents")
			steps, _ := cmd.Flags().GetInt("steps")
			outPath, _ := cmd.Flags().GetString("out")
			noSnapshots, _ := cmd.Flags().GetBool("no-snapshots")
			save, _ := cmd.Flags().GetBool("save")
			progress, _ := cmd.Flags().GetInt("progress")

			opts := engine.Options{
				Population:         agentCount,
				Steps:              steps,
				SkipAgentSnapshots: noSnapshots || !cfg.Simulation.AgentSnapshots,
			}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetInt64("seed")
				opts.Seed = &seed
			}
			if progress > 0 {
				opts.OnStep = func(rec engine.ModelRecord) {
					if rec.Step%progress == 0 {
						slog.Info("progress",
							"step", rec.Step,
							"conservative", rec.Conservative,
							"liberal", rec.Liberal,
							"neutral", rec.Neutral,
							"average_age", fmt.Sprintf("%.1f", rec.AverageAge),
						)
					}
				}
			}

			res, err := engine.Run(opts)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := writeResult(outPath, res); err != nil {
					return err
				}
			}

			if save {
				if cfg.Database.Path == "" {
					return fmt.Errorf("--save needs database.path in config or IDEOSIM_DB_PATH")
				}
				db, err := persistence.Open(cfg.Database.Path)
				if err != nil {
					return err
				}
				defer db.Close()
				id, err := db.SaveRun(agentCount, steps, res)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived as %s\n", id)
			}

			printSummary(cmd, res)
			return nil
		},
	}

	cmd.Flags().Int("agents", 200, "Initial population size")
	cmd.Flags().Int("steps", 100, "Number of steps to simulate")
	cmd.Flags().Int64("seed", 0, "Random seed (unset = fresh random seed)")
	cmd.Flags().String("out", "", "Write the full JSON result to this file")
	cmd.Flags().Bool("no-snapshots", false, "Omit per-agent snapshots from the result")
	cmd.Flags().Bool("save", false, "Archive the run in the configured database")
	cmd.Flags().Int("progress", 0, "Log aggregates every N steps (0 = off)")

	return cmd
}

func writeResult(path string, res *engine.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printSummary(cmd *cobra.Command, res *engine.Result) {
	out := cmd.OutOrStdout()
	total := 0
	for _, c := range res.FinalCounts {
		total += c
	}

	fmt.Fprintf(out, "\nSeed %d, %d steps.\n", res.Seed, len(res.ModelTimeseries))
	fmt.Fprintf(out, "Population: %s\n", humanize.Comma(int64(total)))
	fmt.Fprintf(out, "  Conservatives: %s\n", humanize.Comma(int64(res.FinalCounts["conservative"])))
	fmt.Fprintf(out, "  Liberals:      %s\n", humanize.Comma(int64(res.FinalCounts["liberal"])))
	fmt.Fprintf(out, "  Neutrals:      %s\n", humanize.Comma(int64(res.FinalCounts["neutral"])))
	fmt.Fprintf(out, "Avg. age: %.1f\n", res.AverageAge)
	if n := len(res.StubbornRatios); n > 0 {
		fmt.Fprintf(out, "Stubborn share: %.1f%%\n", res.StubbornRatios[n-1]*100)
	}
	fmt.Fprintf(out, "Network: %s edges, avg neighbour degree %.1f\n",
		humanize.Comma(int64(res.NetworkStats.Edges)), res.NetworkStats.AverageNeighborDegree)
	if res.MediaInfluenceSummary != "" {
		fmt.Fprintf(out, "\n%s", res.MediaInfluenceSummary)
	}
}
