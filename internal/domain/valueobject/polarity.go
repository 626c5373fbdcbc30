package valueobject

import "fmt"

// Polarity tells whether a finding argues for or against cardiac risk.
type Polarity struct {
	value string
}

var (
	PolarityAdverse    = Polarity{value: "adverse"}
	PolarityReassuring = Polarity{value: "reassuring"}
	// PolarityNeutral is used for readings that sit between the adverse and
	// reassuring bands, such as a moderate maximum heart rate.
	PolarityNeutral = Polarity{value: "neutral"}
)

// PolarityFromString reconstructs a Polarity from its string representation.
func PolarityFromString(s string) (Polarity, error) {
	switch s {
	case "adverse":
		return PolarityAdverse, nil
	case "reassuring":
		return PolarityReassuring, nil
	case "neutral":
		return PolarityNeutral, nil
	default:
		return Polarity{}, fmt.Errorf("invalid polarity: %q", s)
	}
}

func (p Polarity) String() string            { return p.value }
func (p Polarity) IsZero() bool              { return p.value == "" }
func (p Polarity) Equal(other Polarity) bool { return p.value == other.value }
