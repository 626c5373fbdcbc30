package service

import (
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

// Rule identifiers, in evaluation order.
const (
	RuleCholesterol         = "cholesterol"
	RuleBloodPressure       = "blood_pressure"
	RuleExerciseAngina      = "exercise_angina"
	RuleMaxHeartRate        = "max_heart_rate"
	RuleSTDepression        = "st_depression"
	RuleSTSlope             = "st_slope"
	RuleThalassemia         = "thalassemia"
	RuleHighRiskCombination = "high_risk_combination"
)

// Finding messages.
const (
	MsgHighCholesterol      = "High cholesterol; risk of arterial plaque."
	MsgNormalCholesterol    = "Cholesterol within normal limits."
	MsgHighBloodPressure    = "Elevated blood pressure; consider monitoring/treatment."
	MsgHealthyBloodPressure = "Blood pressure in a healthy range."
	MsgExerciseAngina       = "Exercise-induced angina; potential heart issue."
	MsgNoExerciseAngina     = "No exercise-induced angina, good sign."
	MsgLowMaxHeartRate      = "Low max heart rate; possibly low exercise capacity."
	MsgExcellentHeartRate   = "Excellent heart rate response."
	MsgModerateHeartRate    = "Moderate heart rate, consider further testing."
	MsgHighSTDepression     = "High ST depression (oldpeak>2); possible ischemia."
	MsgSafeSTDepression     = "ST depression within safe range."
	MsgFlatSTSlope          = "Flat ST slope on ECG; can be abnormal."
	MsgFixedThalDefect      = "Fixed defect on Thallium scan; risk of prior heart damage."
	MsgHighRiskCombination  = "High-risk combination detected: ST depression or flat slope with a fixed thallium defect."
)

// Rule evaluates one patient attribute. ok is false when the rule stays
// silent for this record.
type Rule interface {
	ID() string
	Evaluate(r model.PatientRecord) (finding model.Finding, ok bool)
}

type ruleFunc struct {
	fn func(r model.PatientRecord) (model.Finding, bool)
	id string
}

func (f ruleFunc) ID() string { return f.id }

func (f ruleFunc) Evaluate(r model.PatientRecord) (model.Finding, bool) { return f.fn(r) }

func finding(id string, p valueobject.Polarity, msg string) model.Finding {
	return model.Finding{RuleID: id, Polarity: p, Message: msg}
}

// threshold builds a symmetric rule that is adverse when above is true and
// reassuring otherwise.
func threshold(id string, above func(model.PatientRecord) bool, adverse, reassuring string) Rule {
	return ruleFunc{id: id, fn: func(r model.PatientRecord) (model.Finding, bool) {
		if above(r) {
			return finding(id, valueobject.PolarityAdverse, adverse), true
		}
		return finding(id, valueobject.PolarityReassuring, reassuring), true
	}}
}

// DefaultRules returns the seven attribute rules in their fixed order.
func DefaultRules() []Rule {
	return []Rule{
		threshold(RuleCholesterol,
			func(r model.PatientRecord) bool { return r.Chol > 240 },
			MsgHighCholesterol, MsgNormalCholesterol),
		threshold(RuleBloodPressure,
			func(r model.PatientRecord) bool { return r.Trestbps > 140 },
			MsgHighBloodPressure, MsgHealthyBloodPressure),
		threshold(RuleExerciseAngina,
			func(r model.PatientRecord) bool { return r.Exang == 1 },
			MsgExerciseAngina, MsgNoExerciseAngina),
		ruleFunc{id: RuleMaxHeartRate, fn: func(r model.PatientRecord) (model.Finding, bool) {
			switch {
			case r.Thalach < 100:
				return finding(RuleMaxHeartRate, valueobject.PolarityAdverse, MsgLowMaxHeartRate), true
			case r.Thalach > 140:
				return finding(RuleMaxHeartRate, valueobject.PolarityReassuring, MsgExcellentHeartRate), true
			default:
				return finding(RuleMaxHeartRate, valueobject.PolarityNeutral, MsgModerateHeartRate), true
			}
		}},
		threshold(RuleSTDepression,
			func(r model.PatientRecord) bool { return r.Oldpeak > 2 },
			MsgHighSTDepression, MsgSafeSTDepression),
		// The slope and thal rules only speak up when triggered.
		ruleFunc{id: RuleSTSlope, fn: func(r model.PatientRecord) (model.Finding, bool) {
			if r.Slope == 0 {
				return finding(RuleSTSlope, valueobject.PolarityAdverse, MsgFlatSTSlope), true
			}
			return model.Finding{}, false
		}},
		ruleFunc{id: RuleThalassemia, fn: func(r model.PatientRecord) (model.Finding, bool) {
			if r.Thal == 1 {
				return finding(RuleThalassemia, valueobject.PolarityAdverse, MsgFixedThalDefect), true
			}
			return model.Finding{}, false
		}},
	}
}

// HighRiskCombo reports the combination that forces the summary tier to high
// regardless of probability.
func HighRiskCombo(r model.PatientRecord) bool {
	return (r.Oldpeak > 2 && r.Thal == 1) || (r.Slope == 0 && r.Thal == 1)
}
