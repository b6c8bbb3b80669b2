package engine

import (
	"strconv"

	"github.com/talgya/ideology-sim/internal/agents"
)

// Result is the payload of a finished run. Field names are the contract with
// the frontend.
type Result struct {
	Seed                  int64            `json:"seed"`
	Counts                map[string][]int `json:"counts"`
	StubbornRatios        []float64        `json:"stubborn_ratios"`
	AverageAge            float64          `json:"average_age"`
	FinalCounts           map[string]int   `json:"final_counts"`
	MediaInfluenceSummary string           `json:"media_influence_summary"`
	NetworkGraph          NetworkGraph     `json:"network_graph"`
	NetworkStats          NetworkStats     `json:"network_stats"`
	ModelTimeseries       []ModelRecord    `json:"model_timeseries"`
	AgentSnapshots        []AgentRecord    `json:"agent_snapshots"`
}

// NetworkGraph is the graph export for visualisation.
type NetworkGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// NetworkStats summarises the final graph.
type NetworkStats struct {
	Nodes                 int     `json:"nodes"`
	Edges                 int     `json:"edges"`
	AverageNeighborDegree float64 `json:"average_neighbor_degree"`
}

// GraphNode is one live agent. Type carries the ideology name.
type GraphNode struct {
	ID   string  `json:"id"`
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// GraphLink is one undirected edge.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Result assembles the payload from the simulation's current state.
func (s *Simulation) Result() *Result {
	pop := s.Scheduler.Agents()

	res := &Result{
		Seed:                  s.rng.Seed(),
		Counts:                make(map[string][]int, agents.NumIdeologies),
		StubbornRatios:        s.Metrics.StubbornRatios,
		AverageAge:            s.AverageAge,
		FinalCounts:           make(map[string]int, agents.NumIdeologies),
		MediaInfluenceSummary: s.Media.Summary(),
		NetworkGraph:          s.ExportGraph(),
		NetworkStats: NetworkStats{
			Nodes:                 s.Graph.NodeCount(),
			Edges:                 s.Graph.EdgeCount(),
			AverageNeighborDegree: s.Graph.AverageNeighborDegree(),
		},
		ModelTimeseries: s.Metrics.Timeseries,
		AgentSnapshots:  s.Metrics.Snapshots,
	}

	final := CountIdeologies(pop)
	for _, i := range agents.Ideologies {
		res.Counts[i.String()] = s.Metrics.Counts[i]
		res.FinalCounts[i.String()] = final[i]
	}
	return res
}

// ExportGraph lists every live agent as a node and every edge as a link,
// ids rendered as decimal strings.
func (s *Simulation) ExportGraph() NetworkGraph {
	out := NetworkGraph{
		Nodes: []GraphNode{},
		Links: []GraphLink{},
	}
	for _, a := range s.Scheduler.Agents() {
		pos, ok := s.Graph.Position(a.ID)
		if !ok {
			continue
		}
		out.Nodes = append(out.Nodes, GraphNode{
			ID:   formatID(a.ID),
			Type: a.Ideology.String(),
			X:    pos.X,
			Y:    pos.Y,
		})
	}
	for _, l := range s.Graph.Links() {
		out.Links = append(out.Links, GraphLink{
			Source: formatID(l.Source),
			Target: formatID(l.Target),
		})
	}
	return out
}

func formatID(id agents.AgentID) string {
	return strconv.FormatInt(int64(id), 10)
}
