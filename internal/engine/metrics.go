package engine

import "github.com/talgya/ideology-sim/internal/agents"

// StubbornThreshold is the stubbornness above which an agent counts toward
// the stubborn ratio.
const StubbornThreshold = 5

// ModelRecord is one step's population aggregates. Steps are 1-indexed.
type ModelRecord struct {
	Step         int     `json:"step"`
	Liberal      int     `json:"liberal"`
	Conservative int     `json:"conservative"`
	Neutral      int     `json:"neutral"`
	AverageAge   float64 `json:"average_age"`
}

// Count returns the count recorded for ideology i.
func (r ModelRecord) Count(i agents.Ideology) int {
	switch i {
	case agents.Conservative:
		return r.Conservative
	case agents.Liberal:
		return r.Liberal
	default:
		return r.Neutral
	}
}

// AgentRecord is one agent's state at the end of a step. Steps are 1-indexed.
type AgentRecord struct {
	Step         int             `json:"step"`
	AgentID      agents.AgentID  `json:"agent_id"`
	Ideology     agents.Ideology `json:"ideology"`
	Stubbornness int             `json:"stubbornness"`
	Age          int             `json:"age"`
}

// Metrics accumulates per-step aggregates and, optionally, per-agent
// snapshots over a run.
type Metrics struct {
	Counts         [agents.NumIdeologies][]int
	StubbornRatios []float64
	Timeseries     []ModelRecord
	Snapshots      []AgentRecord

	recordAgents bool
}

// NewMetrics creates a collector. recordAgents enables per-agent snapshots.
func NewMetrics(recordAgents bool) *Metrics {
	m := &Metrics{
		StubbornRatios: []float64{},
		Timeseries:     []ModelRecord{},
		Snapshots:      []AgentRecord{},
		recordAgents:   recordAgents,
	}
	for i := range m.Counts {
		m.Counts[i] = []int{}
	}
	return m
}

// Collect records the state of pop at the end of the given 1-indexed step.
func (m *Metrics) Collect(step int, pop []*agents.Agent, averageAge float64) ModelRecord {
	counts := CountIdeologies(pop)
	for i, c := range counts {
		m.Counts[i] = append(m.Counts[i], c)
	}
	m.StubbornRatios = append(m.StubbornRatios, StubbornRatio(pop))

	rec := ModelRecord{
		Step:         step,
		Conservative: counts[agents.Conservative],
		Liberal:      counts[agents.Liberal],
		Neutral:      counts[agents.Neutral],
		AverageAge:   averageAge,
	}
	m.Timeseries = append(m.Timeseries, rec)

	if m.recordAgents {
		for _, a := range pop {
			m.Snapshots = append(m.Snapshots, AgentRecord{
				Step:         step,
				AgentID:      a.ID,
				Ideology:     a.Ideology,
				Stubbornness: a.Stubborn,
				Age:          a.Age,
			})
		}
	}
	return rec
}

// Steps returns the number of collected steps.
func (m *Metrics) Steps() int {
	return len(m.Timeseries)
}

// CountIdeologies tallies pop by ideology.
func CountIdeologies(pop []*agents.Agent) [agents.NumIdeologies]int {
	var counts [agents.NumIdeologies]int
	for _, a := range pop {
		counts[a.Ideology]++
	}
	return counts
}

// StubbornRatio is the share of pop with stubbornness above StubbornThreshold.
// Zero for an empty population.
func StubbornRatio(pop []*agents.Agent) float64 {
	if len(pop) == 0 {
		return 0
	}
	n := 0
	for _, a := range pop {
		if a.Stubborn > StubbornThreshold {
			n++
		}
	}
	return float64(n) / float64(len(pop))
}

// AverageAge is the mean age of pop, or zero for an empty population.
func AverageAge(pop []*agents.Agent) float64 {
	if len(pop) == 0 {
		return 0
	}
	total := 0
	for _, a := range pop {
		total += a.Age
	}
	return float64(total) / float64(len(pop))
}
