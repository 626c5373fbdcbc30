package model

// FeatureVector is the ordered numeric input handed to a scoring model.
type FeatureVector struct {
	Columns []string
	Values  []float64
}

// Len returns the number of columns.
func (v FeatureVector) Len() int {
	return len(v.Values)
}

// Map returns the vector keyed by column name.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, len(v.Columns))
	for i, c := range v.Columns {
		m[c] = v.Values[i]
	}
	return m
}
