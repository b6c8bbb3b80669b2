package engine

import (
	"maps"
	"slices"

	"github.com/talgya/ideology-sim/internal/agents"
	"github.com/talgya/ideology-sim/internal/entropy"
	"github.com/talgya/ideology-sim/internal/social"
)

// Natural death: agents older than MaxAge die with DeathChance per step.
const (
	MaxAge      = 80
	DeathChance = 0.8
)

// Scheduler owns the agent registry and the global step counter. It is the
// agents.Network each agent sees during its step.
type Scheduler struct {
	agents map[agents.AgentID]*agents.Agent
	graph  *social.Graph
	rng    *entropy.Stream
	nextID agents.AgentID
	step   int

	// Agents added since the last step. They sit out the next step.
	arrivals map[agents.AgentID]struct{}
}

// NewScheduler creates an empty scheduler over the given graph.
func NewScheduler(g *social.Graph, rng *entropy.Stream) *Scheduler {
	return &Scheduler{
		agents:   make(map[agents.AgentID]*agents.Agent),
		graph:    g,
		rng:      rng,
		arrivals: make(map[agents.AgentID]struct{}),
	}
}

// Add assigns the next id to a and registers it. The caller places the node
// in the graph.
func (s *Scheduler) Add(a *agents.Agent) agents.AgentID {
	a.ID = s.nextID
	s.agents[a.ID] = a
	s.nextID++
	return a.ID
}

// AddArrival registers a like Add, but a skips the next Step.
func (s *Scheduler) AddArrival(a *agents.Agent) agents.AgentID {
	id := s.Add(a)
	s.arrivals[id] = struct{}{}
	return id
}

// Remove drops id from the registry. Unknown ids are ignored.
func (s *Scheduler) Remove(id agents.AgentID) {
	delete(s.agents, id)
	delete(s.arrivals, id)
}

// Lookup implements agents.Network.
func (s *Scheduler) Lookup(id agents.AgentID) (*agents.Agent, bool) {
	a, ok := s.agents[id]
	return a, ok
}

// Neighbors implements agents.Network.
func (s *Scheduler) Neighbors(id agents.AgentID) []agents.AgentID {
	return s.graph.Neighbors(id)
}

// Nodes implements agents.Network.
func (s *Scheduler) Nodes() []agents.AgentID {
	return s.graph.Nodes()
}

// Link implements agents.Network.
func (s *Scheduler) Link(a, b agents.AgentID) {
	s.graph.AddEdge(a, b)
}

// CurrentStep implements agents.Network.
func (s *Scheduler) CurrentStep() int {
	return s.step
}

// StepCount returns the number of completed steps.
func (s *Scheduler) StepCount() int {
	return s.step
}

// NextID returns the id the next Add will assign.
func (s *Scheduler) NextID() agents.AgentID {
	return s.nextID
}

// Len returns the number of registered agents.
func (s *Scheduler) Len() int {
	return len(s.agents)
}

// IDs returns every registered id in ascending (creation) order.
func (s *Scheduler) IDs() []agents.AgentID {
	return slices.Sorted(maps.Keys(s.agents))
}

// Agents returns every registered agent in ascending id order.
func (s *Scheduler) Agents() []*agents.Agent {
	ids := s.IDs()
	out := make([]*agents.Agent, len(ids))
	for i, id := range ids {
		out[i] = s.agents[id]
	}
	return out
}

// Step runs one scheduler step over a snapshot of the registry taken before
// any agent acts. Arrivals are left out of the snapshot and join from the
// following step. Agents past MaxAge may die instead of acting; the dead are
// removed from graph and registry only after every agent has been visited.
// Returns the removed ids.
func (s *Scheduler) Step() []agents.AgentID {
	var dead []agents.AgentID

	for _, a := range s.Agents() {
		if _, ok := s.arrivals[a.ID]; ok {
			continue
		}
		if a.Age > MaxAge && s.rng.Chance(DeathChance) {
			dead = append(dead, a.ID)
			continue
		}
		a.Step(s, s.rng)
	}

	for _, id := range dead {
		s.graph.RemoveNode(id)
		s.Remove(id)
	}

	clear(s.arrivals)
	s.step++
	return dead
}
