package model

import (
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

// Finding is one per-attribute observation produced by a rule.
type Finding struct {
	RuleID   string
	Polarity valueobject.Polarity
	Message  string
}

// Explanation is the full classifier output for one record and probability.
type Explanation struct {
	Policy         valueobject.BannerPolicy
	BannerTier     valueobject.RiskTier
	BannerMessage  string
	SummaryTier    valueobject.RiskTier
	SummaryMessage string
	HighRiskCombo  bool
	Findings       []Finding
}

// AdverseRuleIDs returns the rule IDs of all adverse findings, in order.
func (e Explanation) AdverseRuleIDs() []string {
	ids := make([]string, 0, len(e.Findings))
	for _, f := range e.Findings {
		if f.Polarity.Equal(valueobject.PolarityAdverse) {
			ids = append(ids, f.RuleID)
		}
	}
	return ids
}
