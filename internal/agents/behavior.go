// Agent decision step: aging, adulthood links, neighbourhood conformity,
// conflict and stubbornness decay. Runs once per agent per scheduler step.
package agents

import "github.com/talgya/ideology-sim/internal/entropy"

// Network is the agent's view of the world during its step: the social graph,
// the agent registry, and the shared clock.
type Network interface {
	// Neighbors returns the ids adjacent to id in ascending order.
	Neighbors(id AgentID) []AgentID
	// Nodes returns every node id in ascending order.
	Nodes() []AgentID
	// Lookup returns the live agent with the given id.
	Lookup(id AgentID) (*Agent, bool)
	// Link adds an undirected edge between a and b.
	Link(a, b AgentID)
	// CurrentStep returns the global step counter.
	CurrentStep() int
}

// Step advances the agent by one step against the network as it stands.
func (a *Agent) Step(net Network, rng *entropy.Stream) {
	a.Age++

	if a.Age == AdultAge {
		a.formAdultLinks(net, rng)
	}

	neighbors := net.Neighbors(a.ID)
	step := net.CurrentStep()

	a.conform(net, neighbors, step, rng)
	a.resolveConflicts(net, neighbors, rng)

	if a.Stubborn > 0 && step%DecayInterval == 0 {
		a.SetStubborn(a.Stubborn - 1)
	}
}

// formAdultLinks connects a new adult to up to AdulthoodLinks random others.
func (a *Agent) formAdultLinks(net Network, rng *entropy.Stream) {
	nodes := net.Nodes()
	others := make([]AgentID, 0, len(nodes))
	for _, id := range nodes {
		if id != a.ID {
			others = append(others, id)
		}
	}
	for _, i := range rng.Sample(len(others), AdulthoodLinks) {
		net.Link(a.ID, others[i])
	}
}

// conform moves the agent to the adult neighbourhood mode when every gate passes.
func (a *Agent) conform(net Network, neighbors []AgentID, step int, rng *entropy.Stream) {
	mode, ok := AdultMode(net, neighbors)
	if !ok {
		return
	}
	if a.Stubborn >= StubbornCeiling || mode == a.Ideology || !a.IsAdult() || a.BiasedAgainst(mode) {
		return
	}
	if !rng.Chance(ChangeProbability * (1 - a.Resistance)) {
		return
	}
	if step-a.LastChangeStep < ChangeCooldown {
		return
	}
	a.Ideology = mode
	a.LastChangeStep = step
}

// resolveConflicts rolls a conflict against each disagreeing neighbour.
func (a *Agent) resolveConflicts(net Network, neighbors []AgentID, rng *entropy.Stream) {
	for _, id := range neighbors {
		other, ok := net.Lookup(id)
		if !ok || other.Ideology == a.Ideology {
			continue
		}
		if rng.Chance(ConflictChance) {
			a.SetStubborn(a.Stubborn + 1)
		}
	}
}

// AdultMode returns the most common ideology among adult neighbours.
// Ties go to the ideology declared first. ok is false when no neighbour is adult.
func AdultMode(net Network, neighbors []AgentID) (mode Ideology, ok bool) {
	var counts [NumIdeologies]int
	for _, id := range neighbors {
		other, found := net.Lookup(id)
		if !found || !other.IsAdult() {
			continue
		}
		counts[other.Ideology]++
		ok = true
	}
	if !ok {
		return 0, false
	}
	best := -1
	for _, i := range Ideologies {
		if counts[i] > best {
			best = counts[i]
			mode = i
		}
	}
	return mode, true
}
