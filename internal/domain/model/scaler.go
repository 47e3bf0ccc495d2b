package model

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ScalerState holds per-column (mean, scale) pairs fitted over a training
// matrix. Scale is the population standard deviation, or 1 for a constant
// column. It is immutable once built.
type ScalerState struct {
	columns []string
	means   []float64
	scales  []float64
}

// NewScalerState rebuilds a scaler from persisted parameters.
func NewScalerState(columns []string, means, scales []float64) (*ScalerState, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("scaler requires at least one column")
	}
	if len(means) != len(columns) || len(scales) != len(columns) {
		return nil, fmt.Errorf("scaler has %d columns but %d means and %d scales",
			len(columns), len(means), len(scales))
	}
	for i, s := range scales {
		if s <= 0 {
			return nil, fmt.Errorf("scaler column %s has non-positive scale %g", columns[i], s)
		}
	}
	return &ScalerState{
		columns: slices.Clone(columns),
		means:   slices.Clone(means),
		scales:  slices.Clone(scales),
	}, nil
}

// FitScaler computes the mean and population standard deviation of every
// column of matrix.
func FitScaler(columns []string, matrix [][]float64) (*ScalerState, error) {
	if len(matrix) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on an empty matrix")
	}

	means := make([]float64, len(columns))
	scales := make([]float64, len(columns))
	col := make([]float64, len(matrix))
	for j := range columns {
		for i, row := range matrix {
			if len(row) != len(columns) {
				return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
			}
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		means[j] = mean
		scales[j] = std
	}
	return NewScalerState(columns, means, scales)
}

// Apply standardizes row. columns names the layout of row and must equal the
// fitted layout exactly, order included.
func (s *ScalerState) Apply(columns []string, row []float64) ([]float64, error) {
	if !slices.Equal(columns, s.columns) {
		return nil, &FeatureMismatchError{Expected: s.Columns(), Got: slices.Clone(columns)}
	}
	if len(row) != len(s.columns) {
		return nil, &FeatureMismatchError{
			Reason: fmt.Sprintf("vector has %d values, scaler fitted on %d columns", len(row), len(s.columns)),
		}
	}

	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.means[i]) / s.scales[i]
	}
	return out, nil
}

func (s *ScalerState) Columns() []string { return slices.Clone(s.columns) }
func (s *ScalerState) Means() []float64  { return slices.Clone(s.means) }
func (s *ScalerState) Scales() []float64 { return slices.Clone(s.scales) }
