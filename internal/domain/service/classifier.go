package service

import (
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

const (
	highThreshold   = 0.85
	mediumThreshold = 0.6
	binaryThreshold = 0.5
)

// Banner and summary messages per tier.
const (
	BannerHigh   = "High probability of heart disease."
	BannerMedium = "Moderate probability of heart disease."
	BannerLow    = "Low probability of heart disease."

	SummaryHigh   = "High risk: cardiologist consultation recommended."
	SummaryMedium = "Moderate risk: checkup advised."
	SummaryLow    = "Low risk: keep a healthy lifestyle."
)

// Classifier maps a patient record and a probability to tiers, messages and
// ordered findings. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	policy valueobject.BannerPolicy
	rules  []Rule
}

// NewClassifier creates a Classifier with the given banner policy. A zero
// policy selects the default.
func NewClassifier(policy valueobject.BannerPolicy) *Classifier {
	if policy.IsZero() {
		policy = valueobject.DefaultBannerPolicy
	}
	return &Classifier{policy: policy, rules: DefaultRules()}
}

// Policy returns the configured banner policy.
func (c *Classifier) Policy() valueobject.BannerPolicy { return c.policy }

// WithPolicy returns a copy of c using another banner policy. A zero policy
// keeps the current one.
func (c *Classifier) WithPolicy(policy valueobject.BannerPolicy) *Classifier {
	if policy.IsZero() || policy.Equal(c.policy) {
		return c
	}
	return &Classifier{policy: policy, rules: c.rules}
}

// Classify validates the record and probability, then explains the result.
func (c *Classifier) Classify(r model.PatientRecord, probability float64) (model.Explanation, error) {
	ve := &model.ValidationError{}
	ve.Merge(r.Validate())
	ve.Merge(model.ValidateProbability(probability))
	if err := ve.OrNil(); err != nil {
		return model.Explanation{}, err
	}

	combo := HighRiskCombo(r)
	summary := SummaryTier(probability, combo)
	banner := BannerTier(c.policy, probability, combo)

	findings := make([]model.Finding, 0, len(c.rules)+1)
	for _, rule := range c.rules {
		if f, ok := rule.Evaluate(r); ok {
			findings = append(findings, f)
		}
	}
	if combo && c.policy.ReportsCombination() {
		findings = append(findings, finding(RuleHighRiskCombination, valueobject.PolarityAdverse, MsgHighRiskCombination))
	}

	return model.Explanation{
		Policy:         c.policy,
		BannerTier:     banner,
		BannerMessage:  bannerMessage(banner),
		SummaryTier:    summary,
		SummaryMessage: summaryMessage(summary),
		HighRiskCombo:  combo,
		Findings:       findings,
	}, nil
}

// SummaryTier is the combination-aware three-way tier. Both thresholds are
// exclusive.
func SummaryTier(probability float64, combo bool) valueobject.RiskTier {
	switch {
	case probability > highThreshold || combo:
		return valueobject.RiskTierHigh
	case probability > mediumThreshold:
		return valueobject.RiskTierMedium
	default:
		return valueobject.RiskTierLow
	}
}

// BannerTier derives the headline tier for a policy.
func BannerTier(policy valueobject.BannerPolicy, probability float64, combo bool) valueobject.RiskTier {
	if policy.Equal(valueobject.BannerPolicyBinary) {
		if probability >= binaryThreshold {
			return valueobject.RiskTierHigh
		}
		return valueobject.RiskTierLow
	}
	return SummaryTier(probability, combo)
}

func bannerMessage(t valueobject.RiskTier) string {
	switch {
	case t.Equal(valueobject.RiskTierHigh):
		return BannerHigh
	case t.Equal(valueobject.RiskTierMedium):
		return BannerMedium
	default:
		return BannerLow
	}
}

func summaryMessage(t valueobject.RiskTier) string {
	switch {
	case t.Equal(valueobject.RiskTierHigh):
		return SummaryHigh
	case t.Equal(valueobject.RiskTierMedium):
		return SummaryMedium
	default:
		return SummaryLow
	}
}
