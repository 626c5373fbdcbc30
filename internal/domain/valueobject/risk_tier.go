package valueobject

import (
	"fmt"
	"strings"
)

// RiskTier is an immutable, ordered risk classification: low < medium < high.
type RiskTier struct {
	value string
}

var (
	RiskTierLow    = RiskTier{value: "low"}
	RiskTierMedium = RiskTier{value: "medium"}
	RiskTierHigh   = RiskTier{value: "high"}
)

// RiskTierFromString reconstructs a RiskTier from its string representation.
// Matching is case-insensitive.
func RiskTierFromString(s string) (RiskTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskTierLow, nil
	case "medium":
		return RiskTierMedium, nil
	case "high":
		return RiskTierHigh, nil
	default:
		return RiskTier{}, fmt.Errorf("invalid risk tier: %q", s)
	}
}

// String returns the string representation.
func (t RiskTier) String() string {
	return t.value
}

// Rank orders tiers: low=1, medium=2, high=3. The zero value ranks 0.
func (t RiskTier) Rank() int {
	switch t.value {
	case "low":
		return 1
	case "medium":
		return 2
	case "high":
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether t is at or above other.
func (t RiskTier) AtLeast(other RiskTier) bool {
	return t.Rank() >= other.Rank()
}

// IsZero returns true if the tier has not been set.
func (t RiskTier) IsZero() bool {
	return t.value == ""
}

// Equal checks equality with another RiskTier.
func (t RiskTier) Equal(other RiskTier) bool {
	return t.value == other.value
}
