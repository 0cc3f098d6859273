// internal/matching/cache.go
package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultCacheTTL is how long a computed match stays cached.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "match:"

// Store is the key-value backend of the result cache. Get reports a miss
// with found=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// ResultCache stores MatchResults keyed candidate-major, so every entry of
// one candidate shares a key prefix.
type ResultCache struct {
	store Store
	ttl   time.Duration
}

func NewResultCache(store Store, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{store: store, ttl: ttl}
}

// ':' separates key segments and '%' is the escape character.
var keySegmentEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

func CandidatePrefix(candidateID string) string {
	return cacheKeyPrefix + keySegmentEscaper.Replace(candidateID) + ":"
}

func CacheKey(jobID, candidateID string) string {
	return CandidatePrefix(candidateID) + keySegmentEscaper.Replace(jobID)
}

func (c *ResultCache) Get(ctx context.Context, jobID, candidateID string) (*MatchResult, bool, error) {
	data, found, err := c.store.Get(ctx, CacheKey(jobID, candidateID))
	if err != nil || !found {
		return nil, false, err
	}

	var result MatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("decode cached match: %w", err)
	}
	return &result, true, nil
}

// Put stores the result. A non-positive ttl uses the cache default.
func (c *ResultCache) Put(ctx context.Context, jobID, candidateID string, result *MatchResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode match: %w", err)
	}
	return c.store.Set(ctx, CacheKey(jobID, candidateID), data, ttl)
}

func (c *ResultCache) Invalidate(ctx context.Context, jobID, candidateID string) error {
	return c.store.Delete(ctx, CacheKey(jobID, candidateID))
}

// InvalidateAllForCandidate drops every cached pair of the candidate and
// returns how many entries were removed.
func (c *ResultCache) InvalidateAllForCandidate(ctx context.Context, candidateID string) (int, error) {
	return c.store.DeleteByPrefix(ctx, CandidatePrefix(candidateID))
}

func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}
