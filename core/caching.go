package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/prodscore/core/algo"
	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheMaxAge is how long a cached score vector stays valid.
const cacheMaxAge = 7 * 24 * time.Hour

// cachedScores returns the score vector for a (table, weights, bands) triple,
// computing and storing it on a cache miss.
func cachedScores(mgr contract.CacheManager, t *schema.Table, weights schema.WeightSet, bands schema.SubValueMap) ([]float64, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetScoreStore()
	}
	if store == nil {
		// Fallback to direct computation
		return algo.CalculateScores(t.Rows, weights, bands)
	}

	key := generateCacheKey(t, weights, bands)

	// Check for cache hit
	if scores := checkCacheHit(store, key, len(t.Rows)); scores != nil {
		contract.Logger.WithField("key", key[:12]).Debug("Score cache hit")
		return scores, nil
	}

	// Cache miss: compute and store
	return computeAndStore(store, key, t, weights, bands)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string, rows int) []float64 {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheMaxAge {
		return nil
	}

	var scores []float64
	if err := json.Unmarshal(data, &scores); err != nil || len(scores) != rows {
		return nil
	}
	return scores
}

// computeAndStore computes the scores and stores them in cache.
// Score vectors that JSON cannot hold (NaN or Inf from such band scores) are not cached.
func computeAndStore(store contract.CacheStore, key string, t *schema.Table, weights schema.WeightSet, bands schema.SubValueMap) ([]float64, error) {
	scores, err := algo.CalculateScores(t.Rows, weights, bands)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(scores)
	if err != nil {
		contract.Logger.WithError(err).Debug("Skipping score cache store")
		return scores, nil
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to store scores in cache", err)
	}
	return scores, nil
}

// generateCacheKey hashes the raw table cells together with the weights and bands.
// Floats are written with strconv so NaN and Inf bands hash like any other value.
func generateCacheKey(t *schema.Table, weights schema.WeightSet, bands schema.SubValueMap) string {
	h := sha256.New()

	writeString := func(s string) {
		_, _ = io.WriteString(h, strconv.Quote(s))
		_, _ = io.WriteString(h, ",")
	}
	writeFloat := func(v float64) {
		writeString(strconv.FormatFloat(v, 'g', -1, 64))
	}

	writeString("header")
	for _, col := range t.Header {
		writeString(col)
	}
	for _, row := range t.Rows {
		writeString("row")
		for _, col := range t.Header {
			writeString(row.Fields[col])
		}
	}

	writeString("weights")
	for _, w := range weights.Values() {
		writeFloat(w)
	}

	for _, fb := range bands {
		writeString("bands")
		writeString(string(fb.Factor))
		for _, band := range fb.Bands {
			writeFloat(band.Min)
			writeFloat(band.Max)
			writeFloat(band.Score)
		}
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}
