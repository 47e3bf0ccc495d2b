package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

func TestFitScaler_PopulationStdDev(t *testing.T) {
	cols := []string{"a", "b"}
	matrix := [][]float64{
		{1, 5},
		{3, 5},
	}

	s, err := model.FitScaler(cols, matrix)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 5}, s.Means())
	// population std of {1,3} is 1; a constant column scales by 1
	assert.Equal(t, []float64{1, 1}, s.Scales())

	out, err := s.Apply(cols, []float64{3, 7})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2}, out, 1e-12)
}

func TestScalerState_ColumnMismatch(t *testing.T) {
	s, err := model.NewScalerState([]string{"a", "b"}, []float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)

	tests := []struct {
		name string
		cols []string
		row  []float64
	}{
		{"reordered", []string{"b", "a"}, []float64{1, 2}},
		{"missing", []string{"a"}, []float64{1}},
		{"width", []string{"a", "b"}, []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Apply(tt.cols, tt.row)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrFeatureMismatch))
		})
	}
}

func TestNewScalerState_Invalid(t *testing.T) {
	_, err := model.NewScalerState(nil, nil, nil)
	assert.Error(t, err)

	_, err = model.NewScalerState([]string{"a"}, []float64{0, 1}, []float64{1})
	assert.Error(t, err)

	_, err = model.NewScalerState([]string{"a"}, []float64{0}, []float64{0})
	assert.Error(t, err)
}

func TestFitScaler_Empty(t *testing.T) {
	_, err := model.FitScaler([]string{"a"}, nil)
	assert.Error(t, err)
}
