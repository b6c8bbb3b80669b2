package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		field string
	}{
		{"zero run", Options{}, ""},
		{"typical", Options{Population: 200, Steps: 100}, ""},
		{"negative population", Options{Population: -1, Steps: 10}, "population"},
		{"negative steps", Options{Population: 10, Steps: -5}, "steps"},
		{"huge population", Options{Population: MaxPopulation + 1, Steps: 1}, "population"},
		{"huge steps", Options{Population: 1, Steps: MaxSteps + 1}, "steps"},
		{"too much work", Options{Population: MaxPopulation, Steps: MaxSteps}, "population*steps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	res, err := Run(Options{Population: -3, Steps: 1})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
