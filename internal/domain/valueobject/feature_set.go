package valueobject

import (
	"fmt"
	"strings"
)

// FeatureSet names the column layout a scoring model was trained on.
type FeatureSet struct {
	value string
}

var (
	// FeatureSetRaw is the 13 canonical attributes in training-file order.
	FeatureSetRaw = FeatureSet{value: "raw"}
	// FeatureSetEngineered appends eight derived columns to the raw set.
	FeatureSetEngineered = FeatureSet{value: "engineered"}
)

// FeatureSetFromString parses a feature set name. Empty means raw.
func FeatureSetFromString(s string) (FeatureSet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return FeatureSetRaw, nil
	case "engineered":
		return FeatureSetEngineered, nil
	default:
		return FeatureSet{}, fmt.Errorf("invalid feature set: %q", s)
	}
}

func (f FeatureSet) String() string              { return f.value }
func (f FeatureSet) IsZero() bool                { return f.value == "" }
func (f FeatureSet) Equal(other FeatureSet) bool { return f.value == other.value }
