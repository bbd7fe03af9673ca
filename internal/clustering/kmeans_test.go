package clustering

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/timmy/musicmatch/internal/domain"
)

func songWith(id string, v domain.FeatureVector) domain.Song {
	s := domain.Song{ID: id, SourceType: "test", SourceID: id, Title: id, Artist: "tester"}
	s.SetFeatures(v)
	return s
}

func uniform(x float64) domain.FeatureVector {
	var v domain.FeatureVector
	for i := range v {
		v[i] = x
	}
	return v
}

func randomCatalog(n int, seed uint64) []domain.Song {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	songs := make([]domain.Song, n)
	for i := range songs {
		var v domain.FeatureVector
		for f := range v {
			v[f] = rng.Float64()
		}
		songs[i] = songWith(fmt.Sprintf("song-%03d", i), v)
	}
	return songs
}

func TestTrain_TwoObviousGroups(t *testing.T) {
	high := uniform(0.5).With(domain.FeatureEnergy, 0.9)
	highish := uniform(0.5).With(domain.FeatureEnergy, 0.88)
	low := uniform(0.5).With(domain.FeatureEnergy, 0.1)
	lowish := uniform(0.5).With(domain.FeatureEnergy, 0.12)

	songs := []domain.Song{
		songWith("a", high),
		songWith("b", low),
		songWith("c", highish),
		songWith("d", lowish),
	}

	m, err := Train(songs, TrainConfig{K: 2, Seed: 7})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if m.Iterations > 3 {
		t.Errorf("expected convergence within 3 iterations, took %d", m.Iterations)
	}
	if !m.Converged {
		t.Error("expected model to report convergence")
	}

	la, _ := m.Label("a")
	lb, _ := m.Label("b")
	lc, _ := m.Label("c")
	ld, _ := m.Label("d")
	if la != lc || lb != ld || la == lb {
		t.Fatalf("unexpected grouping: a=%d b=%d c=%d d=%d", la, lb, lc, ld)
	}

	label, dist := m.Nearest(high)
	if label != la {
		t.Errorf("query matched cluster %d, want %d", label, la)
	}
	if conf := domain.Similarity(dist); conf <= 0.9 {
		t.Errorf("expected confidence > 0.9, got %f", conf)
	}

	total := 0
	for _, c := range m.Clusters() {
		total += c.SongCount
		if c.Snapshot != m.Version {
			t.Errorf("cluster %d snapshot = %q, want %q", c.ID, c.Snapshot, m.Version)
		}
	}
	if total != len(songs) {
		t.Errorf("song counts sum to %d, want %d", total, len(songs))
	}
}

func TestTrain_Deterministic(t *testing.T) {
	songs := randomCatalog(120, 42)

	first, err := Train(songs, TrainConfig{K: 6, Seed: 99})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	second, err := Train(songs, TrainConfig{K: 6, Seed: 99})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if first.Iterations != second.Iterations {
		t.Errorf("iterations differ: %d vs %d", first.Iterations, second.Iterations)
	}
	c1, c2 := first.Centroids(), second.Centroids()
	for j := range c1 {
		if c1[j] != c2[j] {
			t.Errorf("centroid %d differs between runs", j)
		}
	}
	for _, s := range songs {
		l1, _ := first.Label(s.ID)
		l2, _ := second.Label(s.ID)
		if l1 != l2 {
			t.Errorf("song %s labelled %d then %d", s.ID, l1, l2)
		}
	}
}

func TestTrain_LabelsAreNearestCentroid(t *testing.T) {
	songs := randomCatalog(300, 3)

	tests := []struct {
		name    string
		k       int
		maxIter int
	}{
		{name: "converged", k: 5},
		{name: "iteration capped", k: 8, maxIter: 2},
		{name: "single cluster", k: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Train(songs, TrainConfig{K: tt.k, MaxIterations: tt.maxIter, Seed: 11})
			if err != nil {
				t.Fatalf("Train() error = %v", err)
			}
			if tt.maxIter > 0 && m.Iterations > tt.maxIter {
				t.Errorf("ran %d iterations, cap was %d", m.Iterations, tt.maxIter)
			}
			for _, s := range m.Songs() {
				want, _ := m.Nearest(s.Features())
				if s.ClusterID == nil || *s.ClusterID != want {
					t.Errorf("song %s assigned %v, nearest centroid is %d", s.ID, s.ClusterID, want)
				}
			}
		})
	}
}

func TestTrain_ConvergedCentroidsAreMemberMeans(t *testing.T) {
	songs := randomCatalog(300, 3)

	m, err := Train(songs, TrainConfig{K: 5, Seed: 11})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if !m.Converged {
		t.Fatalf("expected convergence within %d iterations", DefaultMaxIterations)
	}
	for _, c := range m.Clusters() {
		members := m.Members(c.ID)
		vectors := make([]domain.FeatureVector, len(members))
		for i, s := range members {
			vectors[i] = s.Features()
		}
		if d := c.Centroid.Distance(domain.Mean(vectors)); d > 1e-9 {
			t.Errorf("cluster %d centroid is %g away from its member mean", c.ID, d)
		}
	}

	capped, err := Train(songs, TrainConfig{K: 8, MaxIterations: 2, Seed: 11})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if capped.Converged {
		t.Error("a run stopped by its iteration cap must not report convergence")
	}
}

func TestTrain_InvalidInput(t *testing.T) {
	songs := randomCatalog(4, 1)

	tests := []struct {
		name      string
		songs     []domain.Song
		k         int
		wantEmpty bool
	}{
		{name: "empty catalog", songs: nil, k: 2, wantEmpty: true},
		{name: "k equals catalog size", songs: songs, k: 4, wantEmpty: true},
		{name: "k above catalog size", songs: songs, k: 9, wantEmpty: true},
		{name: "k zero", songs: songs, k: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Train(tt.songs, TrainConfig{K: tt.k})
			if err == nil {
				t.Fatal("expected error")
			}
			var empty *domain.EmptyCatalogError
			if got := errors.As(err, &empty); got != tt.wantEmpty {
				t.Errorf("errors.As(EmptyCatalogError) = %v, want %v (err: %v)", got, tt.wantEmpty, err)
			}
		})
	}
}

func TestNearest_TieGoesToLowestLabel(t *testing.T) {
	centroids := []domain.FeatureVector{uniform(0.2), uniform(0.8), uniform(0.2)}
	v := uniform(0.5)

	label, _ := nearest(v, centroids)
	if label != 0 {
		t.Errorf("nearest() = %d, want 0", label)
	}
}

func TestUpdate_ReseedsEmptyCluster(t *testing.T) {
	vectors := []domain.FeatureVector{uniform(0.1), uniform(0.15), uniform(0.9)}
	labels := []int{0, 0, 0}
	prev := []domain.FeatureVector{uniform(0.3), uniform(0.5)}

	centroids := update(vectors, labels, prev)

	if labels[2] != 1 {
		t.Fatalf("expected farthest song to move to empty cluster, labels = %v", labels)
	}
	if centroids[1] != vectors[2] {
		t.Errorf("reseeded centroid = %v, want %v", centroids[1], vectors[2])
	}
	want := uniform(0.125)
	for f := range want {
		if diff := centroids[0][f] - want[f]; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("donor centroid[%d] = %f, want %f", f, centroids[0][f], want[f])
		}
	}
}

func TestRestore(t *testing.T) {
	songs := randomCatalog(60, 5)
	trained, err := Train(songs, TrainConfig{K: 4, Seed: 1, Version: "v1"})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	persisted := trained.Songs()
	persisted[0].ClusterID = nil

	restored, err := Restore(persisted, trained.Clusters(), "v1")
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.K() != trained.K() {
		t.Fatalf("K() = %d, want %d", restored.K(), trained.K())
	}
	for _, s := range songs {
		want, _ := trained.Label(s.ID)
		got, ok := restored.Label(s.ID)
		if !ok || got != want {
			t.Errorf("song %s restored to %d, want %d", s.ID, got, want)
		}
	}

	if _, err := Restore(persisted, nil, "v1"); !domain.IsUntrained(err) {
		t.Errorf("Restore() without clusters error = %v, want UntrainedModelError", err)
	}
}
