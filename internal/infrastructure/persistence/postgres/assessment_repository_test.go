package postgres

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewAssessmentRepository tests the constructor.
func TestNewAssessmentRepository(t *testing.T) {
	t.Run("creates repository with nil pool", func(t *testing.T) {
		repo := NewAssessmentRepository(nil)
		assert.NotNil(t, repo)
		assert.Nil(t, repo.pool)
	})
}

func TestNumericRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{name: "oldpeak just above the ST depression cutoff", value: 2.001},
		{name: "probability just above the medium boundary", value: 0.600000001},
		{name: "probability just below the high boundary", value: 0.8499999999999999},
		{name: "one tenth", value: 0.1},
		{name: "tiny", value: 1e-12},
		{name: "zero", value: 0},
		{name: "one", value: 1},
		{name: "large oldpeak", value: 123456.789},
		{name: "huge oldpeak", value: 1e300},
		{name: "max float", value: math.MaxFloat64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// NUMERIC values travel as text between pgx and the server.
			parsed, err := decimal.NewFromString(toNumeric(tt.value).String())
			require.NoError(t, err)
			assert.Equal(t, tt.value, fromNumeric(parsed))
		})
	}
}
