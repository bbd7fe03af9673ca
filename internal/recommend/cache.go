package recommend

import (
	"sync"

	"github.com/timmy/musicmatch/internal/domain"
)

// ComputeFunc produces the song list for a cluster.
type ComputeFunc func() ([]domain.ScoredSong, error)

// ResultCache memoizes non-personalized song lists per cluster ID.
//
// The lock guards map access only; compute runs outside it, so concurrent misses for the same
// cluster may compute redundantly and the last store wins. Stored and returned slices are
// copies. No TTL: entries live until Clear.
type ResultCache struct {
	mu      sync.Mutex
	entries map[int][]domain.ScoredSong
	epoch   uint64
	hits    uint64
	misses  uint64
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[int][]domain.ScoredSong)}
}

// GetOrCompute returns the cached list for clusterID or computes and stores it.
// A non-nil query marks a personalized request: compute always runs and nothing is read
// from or written to the cache. Failed computations are not stored.
func (c *ResultCache) GetOrCompute(clusterID int, query *domain.FeatureVector, compute ComputeFunc) ([]domain.ScoredSong, error) {
	if query != nil {
		return compute()
	}

	c.mu.Lock()
	if cached, ok := c.entries[clusterID]; ok {
		c.hits++
		c.mu.Unlock()
		return clone(cached), nil
	}
	c.misses++
	epoch := c.epoch
	c.mu.Unlock()

	songs, err := compute()
	if err != nil {
		return nil, err
	}

	stored := clone(songs)
	c.mu.Lock()
	// a Clear during compute means the result may belong to a replaced snapshot
	if c.epoch == epoch {
		c.entries[clusterID] = stored
	}
	c.mu.Unlock()
	return songs, nil
}

// Clear evicts every entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int][]domain.ScoredSong)
	c.epoch++
}

// CacheStats is a point-in-time view of cache usage.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// Stats returns current usage counters.
func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

func clone(songs []domain.ScoredSong) []domain.ScoredSong {
	if songs == nil {
		return nil
	}
	out := make([]domain.ScoredSong, len(songs))
	copy(out, songs)
	return out
}
