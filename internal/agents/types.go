// Package agents provides the agent data model and the per-step opinion rules.
package agents

import (
	"fmt"
	"math"
)

// AgentID is a unique identifier for an agent. IDs are issued in increasing
// order and never reused.
type AgentID int64

// Ideology is the opinion state of an agent.
type Ideology uint8

// Declaration order is also the tie-break order for the neighbourhood mode.
const (
	Conservative Ideology = iota
	Liberal
	Neutral
)

// NumIdeologies is the number of ideology values.
const NumIdeologies = 3

// Ideologies lists every ideology in declaration order.
var Ideologies = [NumIdeologies]Ideology{Conservative, Liberal, Neutral}

var ideologyNames = [NumIdeologies]string{"conservative", "liberal", "neutral"}

// String returns the lowercase wire name ("conservative", "liberal", "neutral").
func (i Ideology) String() string {
	if int(i) < len(ideologyNames) {
		return ideologyNames[i]
	}
	return "unknown"
}

// Valid reports whether i is one of the three defined ideologies.
func (i Ideology) Valid() bool {
	return i < NumIdeologies
}

// ParseIdeology maps a wire name back to an Ideology.
func ParseIdeology(name string) (Ideology, bool) {
	for i, n := range ideologyNames {
		if n == name {
			return Ideology(i), true
		}
	}
	return 0, false
}

// MarshalText encodes the ideology by name.
func (i Ideology) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("invalid ideology %d", i)
	}
	return []byte(i.String()), nil
}

// UnmarshalText decodes an ideology name.
func (i *Ideology) UnmarshalText(b []byte) error {
	v, ok := ParseIdeology(string(b))
	if !ok {
		return fmt.Errorf("unknown ideology %q", b)
	}
	*i = v
	return nil
}

// Behavioural constants.
const (
	AdultAge          = 18   // Neighbours younger than this carry no opinion weight
	AdulthoodLinks    = 4    // Edges formed on turning AdultAge
	StubbornCeiling   = 5    // Agents at or above this no longer adopt the local mode
	ChangeProbability = 0.15 // Base chance of adopting the local mode
	ChangeCooldown    = 20   // Minimum steps between two ideology changes
	ConflictChance    = 0.07 // Per disagreeing neighbour, per step
	DecayInterval     = 5    // Stubbornness decays on steps divisible by this
	ResistancePerUnit = 0.1  // Resistance gained per stubbornness unit
)

// NeverChanged is the initial LastChangeStep. Steps start at 0, so the
// cooldown never blocks the first change.
const NeverChanged = -ChangeCooldown

// Agent is one individual in the population.
type Agent struct {
	ID AgentID `json:"id"`

	Ideology Ideology  `json:"ideology"`
	Bias     *Ideology `json:"bias_ideology,omitempty"` // Never adopted; set once at creation

	Stubborn   int     `json:"stubborn"`
	Resistance float64 `json:"resistance_to_change"` // Always min(1, 0.1 * Stubborn)

	Age       int `json:"age"`
	Education int `json:"education"` // 0 to 20; 18+ is immune to media
	Income    int `json:"income"`    // 600 to 6000

	LastChangeStep int `json:"last_ideology_change_step"`
}

// SetStubborn sets the stubbornness counter and recomputes resistance.
// Negative values are clamped to zero.
func (a *Agent) SetStubborn(v int) {
	if v < 0 {
		v = 0
	}
	a.Stubborn = v
	a.Resistance = math.Min(1.0, ResistancePerUnit*float64(v))
}

// IsAdult reports whether the agent's opinion counts for its neighbours.
func (a *Agent) IsAdult() bool {
	return a.Age >= AdultAge
}

// BiasedAgainst reports whether the agent can never be moved to ideology i.
func (a *Agent) BiasedAgainst(i Ideology) bool {
	return a.Bias != nil && *a.Bias == i
}
