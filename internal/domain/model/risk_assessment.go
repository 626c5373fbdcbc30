package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/event"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
	"github.com/mehdighelich1379/Heart-Disease/pkg/events"
)

const maxSubjectRefLen = 128

// RiskAssessment is the aggregate root recording one scored and explained
// patient record. It is immutable once created.
type RiskAssessment struct {
	collector events.EventCollector

	createdAt   time.Time
	explanation Explanation
	record      PatientRecord
	subjectRef  string
	modelName   string
	probability float64
	version     int
	tenantID    uuid.UUID
	id          uuid.UUID
}

// NewRiskAssessment validates its inputs, builds the aggregate and records
// AssessmentCompleted, plus HighRiskDetected for a high summary tier.
func NewRiskAssessment(
	tenantID uuid.UUID,
	subjectRef string,
	record PatientRecord,
	probability float64,
	modelName string,
	explanation Explanation,
) (*RiskAssessment, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if len(subjectRef) > maxSubjectRefLen {
		return nil, NewValidationError("subject_ref", "must be at most %d characters", maxSubjectRefLen)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateProbability(probability); err != nil {
		return nil, err
	}
	if explanation.SummaryTier.IsZero() || explanation.BannerTier.IsZero() || explanation.Policy.IsZero() {
		return nil, fmt.Errorf("explanation is incomplete")
	}

	a := &RiskAssessment{
		id:          uuid.New(),
		tenantID:    tenantID,
		subjectRef:  subjectRef,
		record:      record,
		probability: probability,
		modelName:   modelName,
		explanation: explanation,
		version:     1,
		createdAt:   time.Now().UTC(),
	}

	adverse := explanation.AdverseRuleIDs()
	a.collector.Record(event.NewAssessmentCompleted(
		a.id, a.tenantID, a.subjectRef, a.modelName, explanation.Policy.String(),
		a.probability, explanation.BannerTier.String(), explanation.SummaryTier.String(),
		explanation.HighRiskCombo, adverse, a.createdAt,
	))

	if explanation.SummaryTier.Equal(valueobject.RiskTierHigh) {
		a.collector.Record(event.NewHighRiskDetected(
			a.id, a.tenantID, a.subjectRef, a.probability,
			explanation.HighRiskCombo, adverse, a.createdAt,
		))
	}

	return a, nil
}

// RiskAssessmentState is the persisted form used to rebuild an aggregate.
type RiskAssessmentState struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	SubjectRef  string
	Record      PatientRecord
	Probability float64
	ModelName   string
	Explanation Explanation
	Version     int
	CreatedAt   time.Time
}

// Reconstruct rebuilds a RiskAssessment from persisted data (no validation, no events).
func Reconstruct(s RiskAssessmentState) *RiskAssessment {
	return &RiskAssessment{
		id:          s.ID,
		tenantID:    s.TenantID,
		subjectRef:  s.SubjectRef,
		record:      s.Record,
		probability: s.Probability,
		modelName:   s.ModelName,
		explanation: s.Explanation,
		version:     s.Version,
		createdAt:   s.CreatedAt,
	}
}

// --- Accessors ---

func (a *RiskAssessment) ID() uuid.UUID                     { return a.id }
func (a *RiskAssessment) TenantID() uuid.UUID               { return a.tenantID }
func (a *RiskAssessment) SubjectRef() string                { return a.subjectRef }
func (a *RiskAssessment) Record() PatientRecord             { return a.record }
func (a *RiskAssessment) Probability() float64              { return a.probability }
func (a *RiskAssessment) ModelName() string                 { return a.modelName }
func (a *RiskAssessment) Explanation() Explanation          { return a.explanation }
func (a *RiskAssessment) Policy() valueobject.BannerPolicy  { return a.explanation.Policy }
func (a *RiskAssessment) BannerTier() valueobject.RiskTier  { return a.explanation.BannerTier }
func (a *RiskAssessment) SummaryTier() valueobject.RiskTier { return a.explanation.SummaryTier }
func (a *RiskAssessment) Findings() []Finding               { return a.explanation.Findings }
func (a *RiskAssessment) Version() int                      { return a.version }
func (a *RiskAssessment) CreatedAt() time.Time              { return a.createdAt }

// State snapshots the aggregate for persistence.
func (a *RiskAssessment) State() RiskAssessmentState {
	return RiskAssessmentState{
		ID:          a.id,
		TenantID:    a.tenantID,
		SubjectRef:  a.subjectRef,
		Record:      a.record,
		Probability: a.probability,
		ModelName:   a.modelName,
		Explanation: a.explanation,
		Version:     a.version,
		CreatedAt:   a.createdAt,
	}
}

// DomainEvents returns all accumulated domain events and clears them.
func (a *RiskAssessment) DomainEvents() []events.DomainEvent {
	return a.collector.ClearEvents()
}
