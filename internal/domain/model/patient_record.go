package model

import (
	"math"
)

// Canonical attribute names, in training-file column order.
const (
	FieldAge      = "age"
	FieldSex      = "sex"
	FieldCP       = "cp"
	FieldTrestbps = "trestbps"
	FieldChol     = "chol"
	FieldFBS      = "fbs"
	FieldRestECG  = "restecg"
	FieldThalach  = "thalach"
	FieldExang    = "exang"
	FieldOldpeak  = "oldpeak"
	FieldSlope    = "slope"
	FieldCA       = "ca"
	FieldThal     = "thal"
)

// PatientFields lists the 13 attribute names in canonical order.
var PatientFields = []string{
	FieldAge, FieldSex, FieldCP, FieldTrestbps, FieldChol, FieldFBS, FieldRestECG,
	FieldThalach, FieldExang, FieldOldpeak, FieldSlope, FieldCA, FieldThal,
}

// PatientRecord holds the 13 clinical attributes of one patient. All fields
// are required; presence is checked where the record is decoded.
type PatientRecord struct {
	Age      int     `json:"age" yaml:"age"`           // years
	Sex      int     `json:"sex" yaml:"sex"`           // 0 female, 1 male
	CP       int     `json:"cp" yaml:"cp"`             // chest pain type 0..3
	Trestbps int     `json:"trestbps" yaml:"trestbps"` // resting blood pressure, mm Hg
	Chol     int     `json:"chol" yaml:"chol"`         // serum cholesterol, mg/dl
	FBS      int     `json:"fbs" yaml:"fbs"`           // fasting blood sugar > 120 mg/dl
	RestECG  int     `json:"restecg" yaml:"restecg"`   // resting ECG 0..2
	Thalach  int     `json:"thalach" yaml:"thalach"`   // max heart rate achieved
	Exang    int     `json:"exang" yaml:"exang"`       // exercise-induced angina
	Oldpeak  float64 `json:"oldpeak" yaml:"oldpeak"`   // ST depression
	Slope    int     `json:"slope" yaml:"slope"`       // ST segment slope 0..2
	CA       int     `json:"ca" yaml:"ca"`             // major vessels coloured 0..4
	Thal     int     `json:"thal" yaml:"thal"`         // thalassemia code 0..3
}

// SamplePatientRecord returns a plausible healthy-looking record, handy for
// demos and smoke tests.
func SamplePatientRecord() PatientRecord {
	return PatientRecord{
		Age: 47, Sex: 0, CP: 1, Trestbps: 122, Chol: 224, FBS: 0, RestECG: 1,
		Thalach: 168, Exang: 0, Oldpeak: 0.6, Slope: 2, CA: 0, Thal: 2,
	}
}

// Validate checks every attribute domain and reports all violations at once.
func (r PatientRecord) Validate() error {
	ve := &ValidationError{}

	nonNegative := func(field string, v int) {
		if v < 0 {
			ve.Add(field, "must be >= 0, got %d", v)
		}
	}
	inRange := func(field string, v, lo, hi int) {
		if v < lo || v > hi {
			ve.Add(field, "must be in [%d, %d], got %d", lo, hi, v)
		}
	}

	nonNegative(FieldAge, r.Age)
	inRange(FieldSex, r.Sex, 0, 1)
	inRange(FieldCP, r.CP, 0, 3)
	nonNegative(FieldTrestbps, r.Trestbps)
	nonNegative(FieldChol, r.Chol)
	inRange(FieldFBS, r.FBS, 0, 1)
	inRange(FieldRestECG, r.RestECG, 0, 2)
	nonNegative(FieldThalach, r.Thalach)
	inRange(FieldExang, r.Exang, 0, 1)
	switch {
	case math.IsNaN(r.Oldpeak) || math.IsInf(r.Oldpeak, 0):
		ve.Add(FieldOldpeak, "must be a finite number")
	case r.Oldpeak < 0:
		ve.Add(FieldOldpeak, "must be >= 0, got %g", r.Oldpeak)
	}
	inRange(FieldSlope, r.Slope, 0, 2)
	inRange(FieldCA, r.CA, 0, 4)
	inRange(FieldThal, r.Thal, 0, 3)

	return ve.OrNil()
}

// ValidateProbability checks that p is a probability in [0, 1].
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return NewValidationError("probability", "must be in [0, 1], got %v", p)
	}
	return nil
}
