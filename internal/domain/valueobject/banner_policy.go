package valueobject

import (
	"fmt"
	"strings"
)

// BannerPolicy selects how the headline banner tier is derived from the
// probability.
//
// Ternary mirrors the summary tier (low/medium/high, combination-aware).
// Binary splits at 0.5 into low/high, ignores the combination for the banner
// and reports the combination as its own finding instead.
type BannerPolicy struct {
	value string
}

var (
	BannerPolicyTernary = BannerPolicy{value: "ternary"}
	BannerPolicyBinary  = BannerPolicy{value: "binary"}
)

// DefaultBannerPolicy is used when nothing else is configured.
var DefaultBannerPolicy = BannerPolicyTernary

// BannerPolicyFromString parses a policy name. The empty string yields the
// default policy.
func BannerPolicyFromString(s string) (BannerPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultBannerPolicy, nil
	case "ternary":
		return BannerPolicyTernary, nil
	case "binary":
		return BannerPolicyBinary, nil
	default:
		return BannerPolicy{}, fmt.Errorf("invalid banner policy: %q", s)
	}
}

// ReportsCombination reports whether this policy emits the standalone
// high-risk combination finding.
func (p BannerPolicy) ReportsCombination() bool {
	return p.Equal(BannerPolicyBinary)
}

func (p BannerPolicy) String() string                { return p.value }
func (p BannerPolicy) IsZero() bool                  { return p.value == "" }
func (p BannerPolicy) Equal(other BannerPolicy) bool { return p.value == other.value }
