// Simulation ties the population, social graph, media and metrics together
// and advances them one step at a time.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/ideology-sim/internal/agents"
	"github.com/talgya/ideology-sim/internal/entropy"
	"github.com/talgya/ideology-sim/internal/social"
	"github.com/talgya/ideology-sim/internal/world"
)

// MaxNewborns is the upper bound on newborns injected per step.
const MaxNewborns = 15

// Simulation holds the complete state of one run. It is not safe for
// concurrent use; every run gets its own instance.
type Simulation struct {
	Scheduler *Scheduler
	Graph     *social.Graph
	Spatial   *world.SpatialIndex
	Spawner   *agents.Spawner
	Metrics   *Metrics
	Media     *MediaLedger

	// Mean age of the live population after the latest step.
	AverageAge float64

	// Statistics over the whole run.
	Stats SimStats

	rng *entropy.Stream
}

// SimStats tracks lifecycle totals.
type SimStats struct {
	Founders int `json:"founders"`
	Births   int `json:"births"`
	Deaths   int `json:"deaths"`
}

// NewSimulation creates the founding population on a scale-free graph.
// Founder i gets id i and sits on node i of the generated graph.
func NewSimulation(population int, rng *entropy.Stream, recordAgents bool) *Simulation {
	g := social.NewGraph()
	s := &Simulation{
		Scheduler: NewScheduler(g, rng),
		Graph:     g,
		Spatial:   world.NewSpatialIndex(),
		Spawner:   agents.NewSpawner(rng),
		Metrics:   NewMetrics(recordAgents),
		Media:     &MediaLedger{},
		rng:       rng,
	}

	links := social.PreferentialAttachment(population, social.AttachmentEdges, rng)
	for i := 0; i < population; i++ {
		id := s.addAgent(s.Spawner.SpawnFounder())
		if int(id) != i {
			panic(fmt.Sprintf("engine: founder %d got id %d", i, id))
		}
	}
	for _, l := range links {
		g.AddEdge(l.Source, l.Target)
	}
	s.Stats.Founders = population

	s.Spatial.Rebuild(g.Sites())
	s.AverageAge = AverageAge(s.Scheduler.Agents())
	return s
}

// addAgent registers a and places it at a random position in the graph.
func (s *Simulation) addAgent(a *agents.Agent) agents.AgentID {
	id := s.Scheduler.Add(a)
	s.Graph.AddNode(id, world.RandomPosition(s.rng.Float))
	return id
}

// addNewborn is addAgent for agents born during a step.
func (s *Simulation) addNewborn(a *agents.Agent) agents.AgentID {
	id := s.Scheduler.AddArrival(a)
	s.Graph.AddNode(id, world.RandomPosition(s.rng.Float))
	return id
}

// Step advances the simulation by one step and returns that step's aggregates.
func (s *Simulation) Step() ModelRecord {
	step := s.Scheduler.StepCount()

	// Newborns are drawn first, placed after the broadcast, and sit out this
	// step's scheduler pass. A run founded with no one stays empty.
	newborns := s.rng.IntRange(0, MaxNewborns)
	if s.Stats.Founders == 0 {
		newborns = 0
	}
	s.maybeBroadcast(step)
	for i := 0; i < newborns; i++ {
		s.addNewborn(s.Spawner.SpawnNewborn())
	}
	s.Stats.Births += newborns

	s.Spatial.Rebuild(s.Graph.Sites())

	dead := s.Scheduler.Step()
	s.Stats.Deaths += len(dead)
	s.verify()

	s.Spatial.Rebuild(s.Graph.Sites())

	pop := s.Scheduler.Agents()
	s.AverageAge = AverageAge(pop)
	rec := s.Metrics.Collect(s.Scheduler.StepCount(), pop, s.AverageAge)

	slog.Debug("step complete",
		"step", rec.Step,
		"population", len(pop),
		"newborns", newborns,
		"deaths", len(dead),
		"edges", s.Graph.EdgeCount(),
	)
	return rec
}

// verify panics when the registry and the graph disagree on the live ids.
// A mismatch is a programming error; the run cannot continue.
func (s *Simulation) verify() {
	ids := s.Scheduler.IDs()
	nodes := s.Graph.Nodes()
	if len(ids) == len(nodes) {
		same := true
		for i := range ids {
			if ids[i] != nodes[i] {
				same = false
				break
			}
		}
		if same {
			return
		}
	}

	var orphans, missing []agents.AgentID
	for _, id := range nodes {
		if _, ok := s.Scheduler.Lookup(id); !ok {
			orphans = append(orphans, id)
		}
	}
	for _, id := range ids {
		if !s.Graph.HasNode(id) {
			missing = append(missing, id)
		}
	}
	panic(fmt.Sprintf("engine: registry and graph out of sync after step %d: %d agents, %d nodes, orphan nodes %v, agents without node %v",
		s.Scheduler.StepCount(), len(ids), len(nodes), orphans, missing))
}
