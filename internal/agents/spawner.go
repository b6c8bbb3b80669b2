// Agent spawning: founders with a random demographic profile, and newborns.
package agents

import "github.com/talgya/ideology-sim/internal/entropy"

// Founder and newborn attribute ranges.
const (
	MaxFounderAge      = 80
	MaxFounderStubborn = 7
	MaxEducation       = 20
	MinIncome          = 600
	MaxIncome          = 6000
	BiasChance         = 0.2
)

// Spawner creates agents. It does not issue ids; the scheduler does that on add.
type Spawner struct {
	rng *entropy.Stream
}

// NewSpawner creates a spawner drawing from the run's stream.
func NewSpawner(rng *entropy.Stream) *Spawner {
	return &Spawner{rng: rng}
}

// SpawnFounder creates a member of the initial population.
// Minors start neutral; adults pick any ideology and may carry a bias against
// one of the two ideologies they do not hold.
func (s *Spawner) SpawnFounder() *Agent {
	age := s.rng.IntRange(0, MaxFounderAge)

	ideology := Neutral
	if age >= AdultAge {
		ideology = Ideologies[s.rng.Intn(NumIdeologies)]
	}

	var bias *Ideology
	if age >= AdultAge && s.rng.Chance(BiasChance) {
		others := make([]Ideology, 0, NumIdeologies-1)
		for _, i := range Ideologies {
			if i != ideology {
				others = append(others, i)
			}
		}
		b := others[s.rng.Intn(len(others))]
		bias = &b
	}

	stubborn := s.rng.IntRange(0, MaxFounderStubborn)
	a := s.spawn(ideology, age)
	a.Bias = bias
	a.SetStubborn(stubborn)
	return a
}

// SpawnNewborn creates a neutral, unbiased agent of age 0.
func (s *Spawner) SpawnNewborn() *Agent {
	return s.spawn(Neutral, 0)
}

func (s *Spawner) spawn(ideology Ideology, age int) *Agent {
	a := &Agent{
		Ideology:       ideology,
		Age:            age,
		Education:      s.rng.IntRange(0, MaxEducation),
		Income:         s.rng.IntRange(MinIncome, MaxIncome),
		LastChangeStep: NeverChanged,
	}
	a.SetStubborn(0)
	return a
}
