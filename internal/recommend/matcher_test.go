package recommend

import (
	"errors"
	"fmt"
	"testing"

	"github.com/timmy/musicmatch/internal/clustering"
	"github.com/timmy/musicmatch/internal/domain"
)

func uniform(x float64) domain.FeatureVector {
	var v domain.FeatureVector
	for i := range v {
		v[i] = x
	}
	return v
}

func song(id string, v domain.FeatureVector) domain.Song {
	s := domain.Song{ID: id, Title: id, Artist: "tester"}
	s.SetFeatures(v)
	return s
}

// threeGroupModel trains on groups centered at 0.1, 0.5 and 0.9 with four songs each.
func threeGroupModel(t *testing.T) *clustering.Model {
	t.Helper()
	var songs []domain.Song
	for g, c := range []float64{0.1, 0.5, 0.9} {
		for i := 0; i < 4; i++ {
			v := uniform(c).With(domain.FeatureEnergy, c+0.02*float64(i))
			songs = append(songs, song(fmt.Sprintf("g%d-s%d", g, i), v))
		}
	}
	m, err := clustering.Train(songs, clustering.TrainConfig{K: 3, Seed: 5})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return m
}

func TestMatch(t *testing.T) {
	model := threeGroupModel(t)
	query := uniform(0.88)

	tests := []struct {
		name         string
		opts         Options
		wantAdjacent int
		wantSongs    int
	}{
		{name: "defaults", opts: Options{TopNSongs: 2, AdjacentCount: 1}, wantAdjacent: 1, wantSongs: 2},
		{name: "top n above membership", opts: Options{TopNSongs: 50, AdjacentCount: 2}, wantAdjacent: 2, wantSongs: 4},
		{name: "adjacent above cluster count", opts: Options{TopNSongs: 0, AdjacentCount: 10}, wantAdjacent: 2, wantSongs: 4},
		{name: "no adjacent", opts: Options{TopNSongs: 1}, wantAdjacent: 0, wantSongs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Match(query, model, tt.opts)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}

			wantLabel, _ := model.Label("g2-s0")
			if res.MatchedCluster.ID != wantLabel {
				t.Errorf("matched cluster %d, want %d", res.MatchedCluster.ID, wantLabel)
			}
			if res.MatchedCluster.Confidence <= 0.9 {
				t.Errorf("confidence = %f, want > 0.9", res.MatchedCluster.Confidence)
			}

			if len(res.AdjacentClusters) != tt.wantAdjacent {
				t.Errorf("got %d adjacent clusters, want %d", len(res.AdjacentClusters), tt.wantAdjacent)
			}
			prev := res.MatchedCluster.Distance
			for _, adj := range res.AdjacentClusters {
				if adj.ID == res.MatchedCluster.ID {
					t.Error("adjacent clusters include the match")
				}
				if adj.Distance < prev {
					t.Errorf("adjacent cluster %d out of order", adj.ID)
				}
				prev = adj.Distance
			}

			if len(res.Songs) != tt.wantSongs {
				t.Fatalf("got %d songs, want %d", len(res.Songs), tt.wantSongs)
			}
			for i := 1; i < len(res.Songs); i++ {
				if res.Songs[i].Distance < res.Songs[i-1].Distance {
					t.Errorf("song %d closer than song %d", i, i-1)
				}
				if res.Songs[i].SimilarityScore > res.Songs[i-1].SimilarityScore {
					t.Errorf("similarity increases at %d", i)
				}
			}
		})
	}
}

func TestMatch_Untrained(t *testing.T) {
	var empty *clustering.Model
	_, err := Match(uniform(0.5), empty, Options{})
	var untrained *domain.UntrainedModelError
	if !errors.As(err, &untrained) {
		t.Fatalf("expected UntrainedModelError, got %v", err)
	}
}

func TestRankClusters_TieBreaksByLabel(t *testing.T) {
	songs := []domain.Song{
		song("low-a", uniform(0.25)),
		song("low-b", uniform(0.25)),
		song("high-a", uniform(0.75)),
		song("high-b", uniform(0.75)),
		song("high-c", uniform(0.75)),
	}
	model, err := clustering.Train(songs, clustering.TrainConfig{K: 2, Seed: 1})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	ranked := RankClusters(uniform(0.5), model)
	if ranked[0].Distance != ranked[1].Distance {
		t.Fatalf("expected equidistant clusters, got %f and %f", ranked[0].Distance, ranked[1].Distance)
	}
	if ranked[0].ID != 0 || ranked[1].ID != 1 {
		t.Errorf("tie order = [%d %d], want [0 1]", ranked[0].ID, ranked[1].ID)
	}
}

func TestRankSongs_SimilarityBounds(t *testing.T) {
	songs := []domain.Song{
		song("far", uniform(1)),
		song("same", uniform(0)),
		song("near", uniform(0).With(domain.FeatureEnergy, 0.3)),
	}
	ranked := RankSongs(uniform(0), songs, 0)

	wantOrder := []string{"same", "near", "far"}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, ranked[i].ID, id)
		}
	}
	if ranked[0].SimilarityScore != 1 {
		t.Errorf("identical song score = %f, want 1", ranked[0].SimilarityScore)
	}
	if ranked[2].SimilarityScore != 0 {
		t.Errorf("distant song score = %f, want 0", ranked[2].SimilarityScore)
	}
	if got := ranked[1].SimilarityScore; got < 0.69 || got > 0.71 {
		t.Errorf("near song score = %f, want 0.7", got)
	}
}

func TestSampleAndSimilarSongs(t *testing.T) {
	model := threeGroupModel(t)
	label, _ := model.Label("g0-s0")

	samples, err := SampleSongs(model, label, 2)
	if err != nil {
		t.Fatalf("SampleSongs() error = %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	for _, s := range samples {
		if *s.ClusterID != label {
			t.Errorf("sample %s from cluster %d, want %d", s.ID, *s.ClusterID, label)
		}
	}

	if _, err := SampleSongs(model, 99, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SampleSongs(99) error = %v, want ErrNotFound", err)
	}

	similar, err := SimilarSongs(model, "g0-s0", 3)
	if err != nil {
		t.Fatalf("SimilarSongs() error = %v", err)
	}
	for _, s := range similar {
		if s.ID == "g0-s0" {
			t.Error("similar songs include the seed song")
		}
		if s.ID[:2] != "g0" {
			t.Errorf("similar song %s from another group", s.ID)
		}
	}
	if _, err := SimilarSongs(model, "missing", 3); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SimilarSongs(missing) error = %v, want ErrNotFound", err)
	}
}
