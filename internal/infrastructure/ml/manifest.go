package ml

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

// Manifest describes a model artifact: the column layout it was fitted on,
// optional scaling parameters and, for the built-in scorer, logistic weights.
type Manifest struct {
	Scaler       *ScalerParams   `yaml:"scaler,omitempty"`
	Logistic     *LogisticParams `yaml:"logistic,omitempty"`
	Name         string          `yaml:"name"`
	FeatureSet   string          `yaml:"feature_set"`
	Columns      []string        `yaml:"columns"`
	InvertOutput bool            `yaml:"invert_output"`
}

// ScalerParams are per-column standardisation parameters.
type ScalerParams struct {
	Mean  []float64 `yaml:"mean"`
	Scale []float64 `yaml:"scale"`
}

// LogisticParams are the weights of a logistic regression.
type LogisticParams struct {
	Coefficients []float64 `yaml:"coefficients"`
	Intercept    float64   `yaml:"intercept"`
}

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks internal consistency. Column order against the normalizer
// is checked separately when the assessor is built.
func (m *Manifest) Validate() error {
	var errs []error
	if m.Name == "" {
		errs = append(errs, errors.New("manifest: name is required"))
	}
	if _, err := valueobject.FeatureSetFromString(m.FeatureSet); err != nil {
		errs = append(errs, fmt.Errorf("manifest: %w", err))
	}
	n := len(m.Columns)
	if m.Scaler != nil && (len(m.Scaler.Mean) != n || len(m.Scaler.Scale) != n) {
		errs = append(errs, fmt.Errorf("manifest: scaler has mean=%d scale=%d entries for %d columns",
			len(m.Scaler.Mean), len(m.Scaler.Scale), n))
	}
	if m.Logistic != nil && len(m.Logistic.Coefficients) != n {
		errs = append(errs, fmt.Errorf("manifest: %d coefficients for %d columns", len(m.Logistic.Coefficients), n))
	}
	return errors.Join(errs...)
}

// Set returns the parsed feature set.
func (m *Manifest) Set() valueobject.FeatureSet {
	fs, _ := valueobject.FeatureSetFromString(m.FeatureSet)
	return fs
}

// ServiceScaler converts the scaler block for the feature normalizer.
func (m *Manifest) ServiceScaler() *service.Scaler {
	if m.Scaler == nil {
		return nil
	}
	return &service.Scaler{Mean: m.Scaler.Mean, Scale: m.Scaler.Scale}
}
