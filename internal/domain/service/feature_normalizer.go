package service

import (
	"fmt"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

// Engineered column names, appended after the raw attributes in this order.
const (
	ColumnAgeCholRatio       = "age_chol_ratio"
	ColumnBPCholProduct      = "bp_chol_product"
	ColumnRestECGThalachDiff = "restecg_thalach_diff"
	ColumnHighCholFlag       = "high_chol_flag"
	ColumnHighBPFlag         = "high_bp_flag"
	ColumnLowThalachFlag     = "low_thalach_flag"
	ColumnAgeExerciseRisk    = "age_exercise_risk"
	ColumnSTSlopeRisk        = "st_slope_risk"
)

// RawColumns returns the raw column layout.
func RawColumns() []string {
	return append([]string(nil), model.PatientFields...)
}

// EngineeredColumns returns the raw layout followed by the derived columns.
func EngineeredColumns() []string {
	return append(RawColumns(),
		ColumnAgeCholRatio,
		ColumnBPCholProduct,
		ColumnRestECGThalachDiff,
		ColumnHighCholFlag,
		ColumnHighBPFlag,
		ColumnLowThalachFlag,
		ColumnAgeExerciseRisk,
		ColumnSTSlopeRisk,
	)
}

// ColumnsFor returns the column layout of a feature set.
func ColumnsFor(set valueobject.FeatureSet) []string {
	if set.Equal(valueobject.FeatureSetEngineered) {
		return EngineeredColumns()
	}
	return RawColumns()
}

// Scaler holds per-column standardisation parameters. A zero scale is
// treated as 1.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FeatureNormalizer turns a PatientRecord into the ordered numeric vector a
// scoring model consumes. It is immutable after construction.
type FeatureNormalizer struct {
	scaler  *Scaler
	set     valueobject.FeatureSet
	columns []string
}

// NewFeatureNormalizer creates a normalizer for the given feature set. The
// scaler is optional; when present its lengths must match the column count.
func NewFeatureNormalizer(set valueobject.FeatureSet, scaler *Scaler) (*FeatureNormalizer, error) {
	if set.IsZero() {
		set = valueobject.FeatureSetRaw
	}
	columns := ColumnsFor(set)
	if scaler != nil {
		if len(scaler.Mean) != len(columns) || len(scaler.Scale) != len(columns) {
			return nil, fmt.Errorf("scaler expects %d columns, got mean=%d scale=%d",
				len(columns), len(scaler.Mean), len(scaler.Scale))
		}
	}
	return &FeatureNormalizer{set: set, columns: columns, scaler: scaler}, nil
}

// FeatureSet returns the active feature set.
func (n *FeatureNormalizer) FeatureSet() valueobject.FeatureSet { return n.set }

// Columns returns a copy of the output column layout.
func (n *FeatureNormalizer) Columns() []string {
	return append([]string(nil), n.columns...)
}

// VerifyColumns fails with a FeatureOrderMismatchError when expected does not
// list exactly the normalizer's columns in the same order.
func (n *FeatureNormalizer) VerifyColumns(expected []string) error {
	if len(expected) == 0 {
		return &model.FeatureOrderMismatchError{Position: 0, Have: n.columns[0], Want: "<none declared>"}
	}
	for i := 0; i < len(n.columns) || i < len(expected); i++ {
		have, want := "<end>", "<end>"
		if i < len(n.columns) {
			have = n.columns[i]
		}
		if i < len(expected) {
			want = expected[i]
		}
		if have != want {
			return &model.FeatureOrderMismatchError{Position: i, Have: have, Want: want}
		}
	}
	return nil
}

// Normalize validates the record and produces its feature vector.
func (n *FeatureNormalizer) Normalize(r model.PatientRecord) (model.FeatureVector, error) {
	if err := r.Validate(); err != nil {
		return model.FeatureVector{}, err
	}

	values := []float64{
		float64(r.Age), float64(r.Sex), float64(r.CP), float64(r.Trestbps),
		float64(r.Chol), float64(r.FBS), float64(r.RestECG), float64(r.Thalach),
		float64(r.Exang), r.Oldpeak, float64(r.Slope), float64(r.CA), float64(r.Thal),
	}
	if n.set.Equal(valueobject.FeatureSetEngineered) {
		values = append(values,
			float64(r.Chol)/(float64(r.Age)+1),
			float64(r.Trestbps)*float64(r.Chol),
			float64(r.Thalach)-float64(r.Trestbps),
			flag(r.Chol > 240),
			flag(r.Trestbps > 130),
			flag(r.Thalach < 120),
			float64(r.Age)*float64(r.Exang),
			r.Oldpeak*float64(r.Slope),
		)
	}

	if n.scaler != nil {
		for i := range values {
			scale := n.scaler.Scale[i]
			if scale == 0 {
				scale = 1
			}
			values[i] = (values[i] - n.scaler.Mean[i]) / scale
		}
	}

	return model.FeatureVector{Columns: n.Columns(), Values: values}, nil
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
