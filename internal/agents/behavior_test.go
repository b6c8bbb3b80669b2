package agents

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/ideology-sim/internal/entropy"
)

// testNet is an in-memory Network for driving single agents.
type testNet struct {
	agents map[AgentID]*Agent
	adj    map[AgentID]map[AgentID]bool
	step   int
}

func newTestNet(step int) *testNet {
	return &testNet{
		agents: make(map[AgentID]*Agent),
		adj:    make(map[AgentID]map[AgentID]bool),
		step:   step,
	}
}

func (n *testNet) add(a *Agent) *Agent {
	n.agents[a.ID] = a
	if n.adj[a.ID] == nil {
		n.adj[a.ID] = make(map[AgentID]bool)
	}
	return a
}

func (n *testNet) Neighbors(id AgentID) []AgentID {
	var out []AgentID
	for o := range n.adj[id] {
		out = append(out, o)
	}
	slices.Sort(out)
	return out
}

func (n *testNet) Nodes() []AgentID {
	var out []AgentID
	for id := range n.agents {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (n *testNet) Lookup(id AgentID) (*Agent, bool) {
	a, ok := n.agents[id]
	return a, ok
}

func (n *testNet) Link(a, b AgentID) {
	if a == b {
		return
	}
	n.adj[a][b] = true
	n.adj[b][a] = true
}

func (n *testNet) CurrentStep() int { return n.step }

func person(id AgentID, ideology Ideology, age, stubborn int) *Agent {
	a := &Agent{ID: id, Ideology: ideology, Age: age, LastChangeStep: NeverChanged}
	a.SetStubborn(stubborn)
	return a
}

// surrounded returns a net where subject is linked to one adult of each
// given ideology.
func surrounded(step int, subject *Agent, around ...Ideology) *testNet {
	net := newTestNet(step)
	net.add(subject)
	for i, ideo := range around {
		o := net.add(person(AgentID(100+i), ideo, 40, 0))
		net.Link(subject.ID, o.ID)
	}
	return net
}

func TestSetStubbornKeepsResistance(t *testing.T) {
	a := &Agent{}
	for v := 0; v <= 15; v++ {
		a.SetStubborn(v)
		want := 0.1 * float64(v)
		if want > 1 {
			want = 1
		}
		assert.InDelta(t, want, a.Resistance, 1e-9, "stubborn=%d", v)
	}

	a.SetStubborn(-3)
	assert.Equal(t, 0, a.Stubborn)
	assert.Zero(t, a.Resistance)
}

func TestStepAgesByOne(t *testing.T) {
	a := person(1, Neutral, 30, 0)
	net := newTestNet(1)
	net.add(a)
	a.Step(net, entropy.NewStream(1))
	assert.Equal(t, 31, a.Age)
}

func TestAdulthoodLinks(t *testing.T) {
	tests := []struct {
		name   string
		others int
		want   int
	}{
		{"crowd", 10, AdulthoodLinks},
		{"few", 2, 2},
		{"alone", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := newTestNet(1)
			a := net.add(person(0, Neutral, AdultAge-1, 0))
			for i := 1; i <= tt.others; i++ {
				net.add(person(AgentID(i), Liberal, 40, 0))
			}

			a.Step(net, entropy.NewStream(3))

			assert.Equal(t, AdultAge, a.Age)
			nbrs := net.Neighbors(a.ID)
			assert.Len(t, nbrs, tt.want)
			assert.NotContains(t, nbrs, a.ID)
		})
	}
}

func TestAdulthoodLinksFormOnce(t *testing.T) {
	net := newTestNet(1)
	a := net.add(person(0, Neutral, AdultAge, 0))
	for i := 1; i <= 10; i++ {
		net.add(person(AgentID(i), Neutral, 40, 0))
	}
	a.Step(net, entropy.NewStream(3))
	assert.Empty(t, net.Neighbors(a.ID))
}

func TestAdultModeTieBreak(t *testing.T) {
	net := newTestNet(0)
	net.add(person(1, Liberal, 30, 0))
	net.add(person(2, Conservative, 30, 0))
	net.add(person(3, Neutral, 30, 0))
	net.add(person(4, Liberal, 5, 0))

	mode, ok := AdultMode(net, []AgentID{1, 2, 3, 4})
	require.True(t, ok)
	assert.Equal(t, Conservative, mode)

	mode, ok = AdultMode(net, []AgentID{1, 3})
	require.True(t, ok)
	assert.Equal(t, Liberal, mode)

	_, ok = AdultMode(net, []AgentID{4})
	assert.False(t, ok, "minors carry no weight")

	_, ok = AdultMode(net, nil)
	assert.False(t, ok)
}

func TestConformEventuallyAdoptsMode(t *testing.T) {
	changed := 0
	for seed := int64(0); seed < 200; seed++ {
		a := person(0, Conservative, 40, 0)
		net := surrounded(7, a, Liberal, Liberal, Liberal)
		a.Step(net, entropy.NewStream(seed))
		if a.Ideology == Liberal {
			changed++
			assert.Equal(t, 7, a.LastChangeStep)
		} else {
			assert.Equal(t, NeverChanged, a.LastChangeStep)
		}
	}
	assert.Positive(t, changed)
	assert.Less(t, changed, 200)
}

func TestConformGates(t *testing.T) {
	liberal := Liberal
	tests := []struct {
		name  string
		agent func() *Agent
	}{
		{"stubborn", func() *Agent { return person(0, Conservative, 40, StubbornCeiling) }},
		{"minor", func() *Agent { return person(0, Conservative, 10, 0) }},
		{"biased", func() *Agent {
			a := person(0, Conservative, 40, 0)
			a.Bias = &liberal
			return a
		}},
		{"cooldown", func() *Agent {
			a := person(0, Conservative, 40, 0)
			a.LastChangeStep = 50 - ChangeCooldown + 1
			return a
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(0); seed < 100; seed++ {
				a := tt.agent()
				net := surrounded(50, a, Liberal, Liberal, Liberal)
				a.Step(net, entropy.NewStream(seed))
				require.Equal(t, Conservative, a.Ideology, "seed %d", seed)
			}
		})
	}
}

func TestCooldownBoundary(t *testing.T) {
	changed := false
	for seed := int64(0); seed < 200 && !changed; seed++ {
		a := person(0, Conservative, 40, 0)
		a.LastChangeStep = 50 - ChangeCooldown
		net := surrounded(50, a, Liberal, Liberal)
		a.Step(net, entropy.NewStream(seed))
		changed = a.Ideology == Liberal
	}
	assert.True(t, changed, "a change exactly one cooldown later is allowed")
}

func TestFirstChangeAtStepZero(t *testing.T) {
	changed := 0
	for seed := int64(0); seed < 200; seed++ {
		a := person(0, Conservative, 40, 0)
		net := surrounded(0, a, Liberal, Liberal, Liberal)
		a.Step(net, entropy.NewStream(seed))
		if a.Ideology == Liberal {
			changed++
			require.Equal(t, 0, a.LastChangeStep)
		}
	}
	assert.Positive(t, changed, "the first change is never blocked by the cooldown")
}

func TestNeverChangedClearsCooldown(t *testing.T) {
	assert.GreaterOrEqual(t, 0-NeverChanged, ChangeCooldown)
	assert.Less(t, NeverChanged, 0)
}

func TestConflictsRaiseStubbornness(t *testing.T) {
	a := person(0, Conservative, 40, 0)
	around := make([]Ideology, 30)
	for i := range around {
		around[i] = Liberal
	}
	// Step 1 is not a decay step.
	net := surrounded(1, a, around...)
	// Keep it from conforming so every neighbour keeps disagreeing.
	liberal := Liberal
	a.Bias = &liberal

	rng := entropy.NewStream(11)
	for i := 0; i < 20; i++ {
		before := a.Stubborn
		a.Step(net, rng)
		require.GreaterOrEqual(t, a.Stubborn, before)
		require.LessOrEqual(t, a.Stubborn, before+len(around))
	}
	assert.Positive(t, a.Stubborn)
	assert.InDelta(t, min(1.0, 0.1*float64(a.Stubborn)), a.Resistance, 1e-9)
}

func TestStubbornDecay(t *testing.T) {
	a := person(0, Neutral, 40, 3)
	net := newTestNet(DecayInterval * 2)
	net.add(a)
	a.Step(net, entropy.NewStream(1))
	assert.Equal(t, 2, a.Stubborn)
	assert.InDelta(t, 0.2, a.Resistance, 1e-9)

	net.step = DecayInterval*2 + 1
	a.Step(net, entropy.NewStream(1))
	assert.Equal(t, 2, a.Stubborn)

	b := person(1, Neutral, 40, 0)
	net.add(b)
	net.step = 0
	b.Step(net, entropy.NewStream(1))
	assert.Equal(t, 0, b.Stubborn, "never goes negative")
}

func TestIdeologyText(t *testing.T) {
	for _, i := range Ideologies {
		b, err := i.MarshalText()
		require.NoError(t, err)

		var got Ideology
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, i, got)
	}

	var bad Ideology
	assert.Error(t, bad.UnmarshalText([]byte("anarchist")))
	_, err := Ideology(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "unknown", Ideology(9).String())
}
