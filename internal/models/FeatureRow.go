package models

// FeatureRow is a single-row numeric record with an explicit column order.
// The model and scaler address columns positionally, so order is part of
// the value, not an implementation detail.
type FeatureRow struct {
	Names  []string
	Values []float64
}

// NewFeatureRow allocates an empty row with capacity for n columns.
func NewFeatureRow(n int) FeatureRow {
	return FeatureRow{
		Names:  make([]string, 0, n),
		Values: make([]float64, 0, n),
	}
}

// Append adds one named column to the end of the row.
func (r *FeatureRow) Append(name string, value float64) {
	r.Names = append(r.Names, name)
	r.Values = append(r.Values, value)
}

// Len returns the number of columns.
func (r FeatureRow) Len() int {
	return len(r.Names)
}

// Get returns the value of the named column, or (0, false) if absent.
func (r FeatureRow) Get(name string) (float64, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Values[i], true
		}
	}
	return 0, false
}
