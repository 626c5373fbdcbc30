package ml

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/port"
)

// CachedModel memoizes predictions of an idempotent model, keyed by the
// exact feature vector.
type CachedModel struct {
	next  port.ScoringModel
	cache *gocache.Cache
}

// NewCachedModel wraps next with a TTL cache.
func NewCachedModel(next port.ScoringModel, ttl time.Duration) *CachedModel {
	return &CachedModel{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedModel) Name() string { return c.next.Name() }

func (c *CachedModel) FeatureColumns() []string { return c.next.FeatureColumns() }

// Predict answers from the cache or delegates. Errors are never cached.
func (c *CachedModel) Predict(ctx context.Context, features model.FeatureVector) (float64, error) {
	key := vectorKey(features)
	if v, found := c.cache.Get(key); found {
		return v.(float64), nil
	}

	p, err := c.next.Predict(ctx, features)
	if err != nil {
		return 0, err
	}
	c.cache.SetDefault(key, p)
	return p, nil
}

// Len returns the number of cached predictions.
func (c *CachedModel) Len() int { return c.cache.ItemCount() }

func vectorKey(v model.FeatureVector) string {
	h := sha256.New()
	var buf [8]byte
	for _, x := range v.Values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
