package mlmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"demand-api/internal/models"
)

// MinMaxScaler holds the per-column [min,max] ranges fitted at training
// time. It is name-aware: the fitted column names are persisted with the
// ranges and checked against the feature schema when the bundle loads, so a
// scaler from a different training run fails loudly instead of silently
// miscalculating.
type MinMaxScaler struct {
	Columns []string  `json:"columns"`
	DataMin []float64 `json:"data_min"`
	DataMax []float64 `json:"data_max"`
}

// Transform scales a schema-ordered row into a fresh vector, one value per
// fitted column. The input row is not mutated. A row whose width differs
// from the fitted dimensionality is a structural fault.
func (s *MinMaxScaler) Transform(row models.FeatureRow) (*mat.VecDense, error) {
	if row.Len() != len(s.DataMin) {
		return nil, fmt.Errorf("scaler fitted with %d columns, got row of %d", len(s.DataMin), row.Len())
	}

	out := mat.NewVecDense(row.Len(), nil)
	for i, v := range row.Values {
		span := s.DataMax[i] - s.DataMin[i]
		if span == 0 {
			out.SetVec(i, 0)
			continue
		}
		out.SetVec(i, (v-s.DataMin[i])/span)
	}

	return out, nil
}

func (s *MinMaxScaler) validate(schema []string) error {
	if len(s.DataMin) != len(s.DataMax) {
		return fmt.Errorf("scaler range arrays disagree: %d min vs %d max", len(s.DataMin), len(s.DataMax))
	}
	if len(s.Columns) != len(s.DataMin) {
		return fmt.Errorf("scaler has %d columns but %d ranges", len(s.Columns), len(s.DataMin))
	}
	if len(s.Columns) != len(schema) {
		return fmt.Errorf("scaler fitted with %d columns, schema has %d", len(s.Columns), len(schema))
	}
	for i, col := range s.Columns {
		if col != schema[i] {
			return fmt.Errorf("scaler column %d is %q, schema expects %q", i, col, schema[i])
		}
	}
	return nil
}
