package recommend

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/timmy/musicmatch/internal/domain"
)

func fixedList(ids ...string) []domain.ScoredSong {
	out := make([]domain.ScoredSong, len(ids))
	for i, id := range ids {
		out[i] = domain.ScoredSong{Song: domain.Song{ID: id}}
	}
	return out
}

func TestResultCache_ServesFirstResult(t *testing.T) {
	cache := NewResultCache()

	first, err := cache.GetOrCompute(5, nil, func() ([]domain.ScoredSong, error) {
		return fixedList("a", "b"), nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}

	second, err := cache.GetOrCompute(5, nil, func() ([]domain.ScoredSong, error) {
		t.Fatal("second compute must not run")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if len(second) != len(first) || second[0].ID != "a" || second[1].ID != "b" {
		t.Errorf("cached result = %v, want %v", second, first)
	}

	stats := cache.Stats()
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestResultCache_ClearForcesRecompute(t *testing.T) {
	cache := NewResultCache()
	calls := 0
	compute := func() ([]domain.ScoredSong, error) {
		calls++
		return fixedList("x"), nil
	}

	_, _ = cache.GetOrCompute(1, nil, compute)
	cache.Clear()
	_, _ = cache.GetOrCompute(1, nil, compute)

	if calls != 2 {
		t.Errorf("compute ran %d times, want 2", calls)
	}
}

func TestResultCache_PersonalizedBypass(t *testing.T) {
	cache := NewResultCache()
	query := uniform(0.3)
	calls := 0
	compute := func() ([]domain.ScoredSong, error) {
		calls++
		return fixedList("p"), nil
	}

	_, _ = cache.GetOrCompute(2, &query, compute)
	_, _ = cache.GetOrCompute(2, &query, compute)
	if calls != 2 {
		t.Errorf("personalized compute ran %d times, want 2", calls)
	}
	if cache.Stats().Entries != 0 {
		t.Error("personalized result was stored")
	}

	_, _ = cache.GetOrCompute(2, nil, func() ([]domain.ScoredSong, error) {
		return fixedList("shared"), nil
	})
	got, _ := cache.GetOrCompute(2, &query, compute)
	if got[0].ID != "p" {
		t.Errorf("personalized call served cached entry %q", got[0].ID)
	}
}

func TestResultCache_ErrorsNotStored(t *testing.T) {
	cache := NewResultCache()
	boom := errors.New("boom")

	if _, err := cache.GetOrCompute(3, nil, func() ([]domain.ScoredSong, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}

	called := false
	_, _ = cache.GetOrCompute(3, nil, func() ([]domain.ScoredSong, error) {
		called = true
		return fixedList("ok"), nil
	})
	if !called {
		t.Error("failed result was cached")
	}
}

func TestResultCache_ReturnsCopies(t *testing.T) {
	cache := NewResultCache()
	compute := func() ([]domain.ScoredSong, error) { return fixedList("a"), nil }

	got, _ := cache.GetOrCompute(4, nil, compute)
	got[0].ID = "mutated"

	again, _ := cache.GetOrCompute(4, nil, compute)
	if again[0].ID != "a" {
		t.Errorf("cache entry mutated through returned slice: %q", again[0].ID)
	}
}

func TestResultCache_ClearDuringCompute(t *testing.T) {
	cache := NewResultCache()

	_, _ = cache.GetOrCompute(6, nil, func() ([]domain.ScoredSong, error) {
		cache.Clear()
		return fixedList("stale"), nil
	})
	if cache.Stats().Entries != 0 {
		t.Error("result computed before Clear was stored")
	}
}

func TestResultCache_Concurrent(t *testing.T) {
	cache := NewResultCache()
	var computed atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := i % 4
			got, err := cache.GetOrCompute(id, nil, func() ([]domain.ScoredSong, error) {
				computed.Add(1)
				return fixedList("a", "b", "c"), nil
			})
			if err != nil || len(got) != 3 {
				t.Errorf("GetOrCompute(%d) = %v, %v", id, got, err)
			}
			if i%16 == 0 {
				cache.Clear()
			}
		}(i)
	}
	wg.Wait()

	if computed.Load() < 4 {
		t.Errorf("compute ran %d times, want at least once per cluster", computed.Load())
	}
	for id, entry := range cache.entries {
		if len(entry) != 3 {
			t.Errorf("entry %d holds %d songs", id, len(entry))
		}
	}
}
