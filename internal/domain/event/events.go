package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehdighelich1379/Heart-Disease/pkg/events"
)

const (
	// EventTypeAssessmentCompleted is emitted for every stored assessment.
	EventTypeAssessmentCompleted = "heart.assessment.completed"

	// EventTypeHighRiskDetected is emitted when the summary tier is high.
	EventTypeHighRiskDetected = "heart.high_risk.detected"

	AggregateType = "RiskAssessment"
)

// AssessmentCompleted is published once an assessment has been scored,
// explained and stored.
type AssessmentCompleted struct {
	events.BaseEvent
	SubjectRef      string   `json:"subject_ref,omitempty"`
	ModelName       string   `json:"model_name"`
	Policy          string   `json:"banner_policy"`
	Probability     float64  `json:"probability"`
	BannerTier      string   `json:"banner_tier"`
	SummaryTier     string   `json:"summary_tier"`
	HighRiskCombo   bool     `json:"high_risk_combo"`
	AdverseFindings []string `json:"adverse_findings"`
}

// NewAssessmentCompleted builds the event envelope and payload.
func NewAssessmentCompleted(
	assessmentID, tenantID uuid.UUID,
	subjectRef, modelName, policy string,
	probability float64,
	bannerTier, summaryTier string,
	highRiskCombo bool,
	adverse []string,
	at time.Time,
) AssessmentCompleted {
	return AssessmentCompleted{
		BaseEvent:       events.NewBaseEvent(EventTypeAssessmentCompleted, assessmentID, AggregateType, tenantID, at),
		SubjectRef:      subjectRef,
		ModelName:       modelName,
		Policy:          policy,
		Probability:     probability,
		BannerTier:      bannerTier,
		SummaryTier:     summaryTier,
		HighRiskCombo:   highRiskCombo,
		AdverseFindings: adverse,
	}
}

// HighRiskDetected is published when an assessment lands in the high summary
// tier, so that downstream consumers can page a cardiologist.
type HighRiskDetected struct {
	events.BaseEvent
	SubjectRef      string   `json:"subject_ref,omitempty"`
	Probability     float64  `json:"probability"`
	HighRiskCombo   bool     `json:"high_risk_combo"`
	AdverseFindings []string `json:"adverse_findings"`
}

// NewHighRiskDetected builds the event envelope and payload.
func NewHighRiskDetected(
	assessmentID, tenantID uuid.UUID,
	subjectRef string,
	probability float64,
	highRiskCombo bool,
	adverse []string,
	at time.Time,
) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:       events.NewBaseEvent(EventTypeHighRiskDetected, assessmentID, AggregateType, tenantID, at),
		SubjectRef:      subjectRef,
		Probability:     probability,
		HighRiskCombo:   highRiskCombo,
		AdverseFindings: adverse,
	}
}
