package ml_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/ml"
	"github.com/mehdighelich1379/Heart-Disease/pkg/observability"
)

func sampleVector(t *testing.T) model.FeatureVector {
	t.Helper()
	n, err := service.NewFeatureNormalizer(valueobject.FeatureSetRaw, nil)
	require.NoError(t, err)
	v, err := n.Normalize(model.SamplePatientRecord())
	require.NoError(t, err)
	return v
}

func TestStubModelClient(t *testing.T) {
	c := ml.NewStubModelClient(service.RawColumns(), 0.42, observability.DiscardLogger())

	p, err := c.Predict(context.Background(), sampleVector(t))

	require.NoError(t, err)
	assert.InDelta(t, 0.42, p, 1e-12)
	assert.Equal(t, "stub", c.Name())
	assert.Equal(t, service.RawColumns(), c.FeatureColumns())
}

func TestHTTPModelClient_Predict(t *testing.T) {
	t.Run("posts the vector and reads the probability", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/predict", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"probability": 0.81}`))
		}))
		defer srv.Close()

		c, err := ml.NewHTTPModelClient(ml.HTTPModelConfig{BaseURL: srv.URL + "/", Columns: service.RawColumns()}, observability.DiscardLogger())
		require.NoError(t, err)

		p, err := c.Predict(context.Background(), sampleVector(t))

		require.NoError(t, err)
		assert.InDelta(t, 0.81, p, 1e-12)
		assert.Equal(t, "remote", got["model"])
		assert.Len(t, got["values"], 13)
		features, ok := got["features"].(map[string]any)
		require.True(t, ok)
		assert.EqualValues(t, 224, features["chol"])
	})

	t.Run("invert reports the complement", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"probability": 0.25}`))
		}))
		defer srv.Close()

		c, err := ml.NewHTTPModelClient(ml.HTTPModelConfig{BaseURL: srv.URL, Invert: true}, observability.DiscardLogger())
		require.NoError(t, err)

		p, err := c.Predict(context.Background(), sampleVector(t))
		require.NoError(t, err)
		assert.InDelta(t, 0.75, p, 1e-12)
	})

	t.Run("non-200 includes the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c, err := ml.NewHTTPModelClient(ml.HTTPModelConfig{BaseURL: srv.URL}, observability.DiscardLogger())
		require.NoError(t, err)

		_, err = c.Predict(context.Background(), sampleVector(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "model not loaded")
	})

	t.Run("missing probability is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"score": 0.3}`))
		}))
		defer srv.Close()

		c, err := ml.NewHTTPModelClient(ml.HTTPModelConfig{BaseURL: srv.URL}, observability.DiscardLogger())
		require.NoError(t, err)

		_, err = c.Predict(context.Background(), sampleVector(t))
		assert.ErrorContains(t, err, "no probability")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		c, err := ml.NewHTTPModelClient(ml.HTTPModelConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, observability.DiscardLogger())
		require.NoError(t, err)

		_, err = c.Predict(context.Background(), sampleVector(t))
		assert.ErrorContains(t, err, "failed to call model server")
	})

	t.Run("requires a base URL", func(t *testing.T) {
		_, err := ml.NewHTTPModelClient(ml.HTTPModelConfig{}, observability.DiscardLogger())
		assert.Error(t, err)
	})
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "valid", yaml: "name: m\nfeature_set: raw\ncolumns: [age, sex]\nlogistic:\n  intercept: 0\n  coefficients: [1, 2]\n"},
		{name: "missing name", yaml: "feature_set: raw\ncolumns: [age]\n", wantErr: "name is required"},
		{name: "bad feature set", yaml: "name: m\nfeature_set: poly\n", wantErr: "invalid feature set"},
		{name: "coefficient count", yaml: "name: m\ncolumns: [age, sex]\nlogistic:\n  coefficients: [1]\n", wantErr: "1 coefficients for 2 columns"},
		{name: "scaler count", yaml: "name: m\ncolumns: [age]\nscaler:\n  mean: [1, 2]\n  scale: [1]\n", wantErr: "scaler has mean=2"},
		{name: "not yaml", yaml: "name: [", wantErr: "failed to parse manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ml.ParseManifest([]byte(tt.yaml))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "m", m.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogisticModel_Predict(t *testing.T) {
	m := &ml.Manifest{
		Name:     "tiny",
		Columns:  []string{"a", "b"},
		Logistic: &ml.LogisticParams{Intercept: -1, Coefficients: []float64{0.5, 2}},
	}
	lm, err := ml.NewLogisticModel(m)
	require.NoError(t, err)

	p, err := lm.Predict(context.Background(), model.FeatureVector{Columns: m.Columns, Values: []float64{2, 0.25}})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-0.5)), p, 1e-12)

	m.InvertOutput = true
	inverted, err := ml.NewLogisticModel(m)
	require.NoError(t, err)
	q, err := inverted.Predict(context.Background(), model.FeatureVector{Values: []float64{2, 0.25}})
	require.NoError(t, err)
	assert.InDelta(t, 1-p, q, 1e-12)

	_, err = lm.Predict(context.Background(), model.FeatureVector{Values: []float64{1}})
	assert.Error(t, err)

	_, err = ml.NewLogisticModel(&ml.Manifest{Name: "x"})
	assert.Error(t, err)
}

type countingModel struct {
	err   error
	calls int
}

func (c *countingModel) Name() string             { return "counting" }
func (c *countingModel) FeatureColumns() []string { return service.RawColumns() }

func (c *countingModel) Predict(_ context.Context, v model.FeatureVector) (float64, error) {
	c.calls++
	return v.Values[0] / 100, c.err
}

func TestCachedModel(t *testing.T) {
	next := &countingModel{}
	cached := ml.NewCachedModel(next, time.Minute)

	v := sampleVector(t)
	p1, err := cached.Predict(context.Background(), v)
	require.NoError(t, err)
	p2, err := cached.Predict(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cached.Len())
	assert.Equal(t, "counting", cached.Name())

	other := sampleVector(t)
	other.Values[0] = 60
	p3, err := cached.Predict(context.Background(), other)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, p3, 1e-12)
	assert.Equal(t, 2, next.calls)
}

func TestCachedModel_DoesNotCacheErrors(t *testing.T) {
	next := &countingModel{err: errors.New("boom")}
	cached := ml.NewCachedModel(next, time.Minute)

	_, err := cached.Predict(context.Background(), sampleVector(t))
	require.Error(t, err)
	_, err = cached.Predict(context.Background(), sampleVector(t))
	require.Error(t, err)

	assert.Equal(t, 2, next.calls)
	assert.Zero(t, cached.Len())
}

func TestLoad(t *testing.T) {
	logger := observability.DiscardLogger()

	t.Run("stub with engineered columns", func(t *testing.T) {
		loaded, err := ml.Load(ml.Options{Backend: ml.BackendStub, FeatureSet: "engineered", StubProbability: 0.3}, logger)
		require.NoError(t, err)

		assert.Equal(t, loaded.Normalizer.Columns(), loaded.Model.FeatureColumns())
		_, err = service.NewAssessor(loaded.Normalizer, loaded.Model)
		assert.NoError(t, err)
	})

	t.Run("cache wraps the model", func(t *testing.T) {
		loaded, err := ml.Load(ml.Options{Backend: ml.BackendStub, CacheTTL: time.Minute}, logger)
		require.NoError(t, err)
		_, ok := loaded.Model.(*ml.CachedModel)
		assert.True(t, ok)
	})

	t.Run("bundled demo manifest", func(t *testing.T) {
		loaded, err := ml.Load(ml.Options{
			Backend:      ml.BackendLogistic,
			ManifestPath: filepath.Join("..", "..", "..", "configs", "model.yaml"),
		}, logger)
		require.NoError(t, err)

		assessor, err := service.NewAssessor(loaded.Normalizer, loaded.Model)
		require.NoError(t, err)

		healthy, _, err := assessor.Score(context.Background(), model.SamplePatientRecord())
		require.NoError(t, err)

		sick := model.SamplePatientRecord()
		sick.Age, sick.Sex, sick.Thalach, sick.Exang, sick.Oldpeak, sick.CA, sick.Thal = 67, 1, 108, 1, 3.5, 3, 3
		risky, _, err := assessor.Score(context.Background(), sick)
		require.NoError(t, err)

		assert.Less(t, healthy, risky)
	})

	t.Run("manifest column order mismatch is caught by the assessor", func(t *testing.T) {
		cols := service.RawColumns()
		cols[0], cols[1] = cols[1], cols[0]
		data, err := json.Marshal(map[string]any{
			"name":        "swapped",
			"feature_set": "raw",
			"columns":     cols,
			"logistic":    map[string]any{"intercept": 0, "coefficients": make([]float64, len(cols))},
		})
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "model.yaml")
		require.NoError(t, os.WriteFile(path, data, 0o600)) // JSON is valid YAML

		loaded, err := ml.Load(ml.Options{Backend: ml.BackendLogistic, ManifestPath: path}, logger)
		require.NoError(t, err)

		_, err = service.NewAssessor(loaded.Normalizer, loaded.Model)
		assert.ErrorIs(t, err, model.ErrFeatureOrderMismatch)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := ml.Load(ml.Options{Backend: "onnx"}, logger)
		assert.ErrorContains(t, err, "unknown model backend")
	})
}
