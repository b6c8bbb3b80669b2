package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/ideology-sim/internal/entropy"
)

func TestSpawnFounder(t *testing.T) {
	s := NewSpawner(entropy.NewStream(5))
	biased := 0
	for i := 0; i < 1000; i++ {
		a := s.SpawnFounder()

		require.GreaterOrEqual(t, a.Age, 0)
		require.LessOrEqual(t, a.Age, MaxFounderAge)
		require.True(t, a.Ideology.Valid())
		if !a.IsAdult() {
			require.Equal(t, Neutral, a.Ideology, "minors start neutral")
			require.Nil(t, a.Bias, "minors carry no bias")
		}
		if a.Bias != nil {
			biased++
			require.NotEqual(t, a.Ideology, *a.Bias)
		}

		require.GreaterOrEqual(t, a.Stubborn, 0)
		require.LessOrEqual(t, a.Stubborn, MaxFounderStubborn)
		require.InDelta(t, min(1.0, 0.1*float64(a.Stubborn)), a.Resistance, 1e-9)

		require.GreaterOrEqual(t, a.Education, 0)
		require.LessOrEqual(t, a.Education, MaxEducation)
		require.GreaterOrEqual(t, a.Income, MinIncome)
		require.LessOrEqual(t, a.Income, MaxIncome)
		require.Equal(t, NeverChanged, a.LastChangeStep)
	}
	assert.Positive(t, biased)
}

func TestSpawnNewborn(t *testing.T) {
	s := NewSpawner(entropy.NewStream(5))
	for i := 0; i < 100; i++ {
		a := s.SpawnNewborn()
		assert.Equal(t, Neutral, a.Ideology)
		assert.Equal(t, 0, a.Age)
		assert.Nil(t, a.Bias)
		assert.Equal(t, 0, a.Stubborn)
		assert.Zero(t, a.Resistance)
		assert.Equal(t, NeverChanged, a.LastChangeStep)
	}
}
