package ml

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/port"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
)

// Backends understood by Load.
const (
	BackendStub     = "stub"
	BackendHTTP     = "http"
	BackendLogistic = "logistic"
)

// Options select and configure a scoring model.
type Options struct {
	Backend         string
	URL             string
	ManifestPath    string
	FeatureSet      string
	Timeout         time.Duration
	CacheTTL        time.Duration
	StubProbability float64
	InvertOutput    bool
}

// Loaded bundles a scoring model with the normalizer it expects.
type Loaded struct {
	Model      port.ScoringModel
	Normalizer *service.FeatureNormalizer
}

// Load builds the configured model and a matching feature normalizer. A
// logistic manifest supplies its own feature set and scaler; the other
// backends use opts.FeatureSet.
func Load(opts Options, logger *slog.Logger) (*Loaded, error) {
	set, err := valueobject.FeatureSetFromString(opts.FeatureSet)
	if err != nil {
		return nil, err
	}

	var (
		scoring port.ScoringModel
		scaler  *service.Scaler
	)
	switch opts.Backend {
	case BackendStub, "":
		scoring = NewStubModelClient(service.ColumnsFor(set), opts.StubProbability, logger)
	case BackendHTTP:
		scoring, err = NewHTTPModelClient(HTTPModelConfig{
			BaseURL: opts.URL,
			Columns: service.ColumnsFor(set),
			Timeout: opts.Timeout,
			Invert:  opts.InvertOutput,
		}, logger)
		if err != nil {
			return nil, err
		}
	case BackendLogistic:
		manifest, err := LoadManifest(opts.ManifestPath)
		if err != nil {
			return nil, err
		}
		lm, err := NewLogisticModel(manifest)
		if err != nil {
			return nil, err
		}
		scoring, set, scaler = lm, manifest.Set(), manifest.ServiceScaler()
	default:
		return nil, fmt.Errorf("unknown model backend %q", opts.Backend)
	}

	if opts.CacheTTL > 0 {
		scoring = NewCachedModel(scoring, opts.CacheTTL)
	}

	normalizer, err := service.NewFeatureNormalizer(set, scaler)
	if err != nil {
		return nil, fmt.Errorf("failed to build normalizer: %w", err)
	}

	logger.Info("scoring model loaded",
		slog.String("backend", opts.Backend),
		slog.String("model", scoring.Name()),
		slog.String("feature_set", set.String()),
		slog.Bool("scaled", scaler != nil),
		slog.Duration("cache_ttl", opts.CacheTTL),
	)
	return &Loaded{Model: scoring, Normalizer: normalizer}, nil
}
