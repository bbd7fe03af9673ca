package clustering

import (
	"fmt"
	"testing"

	"github.com/timmy/musicmatch/internal/domain"
)

func groupedCatalog(centers []float64, perGroup int) []domain.Song {
	var songs []domain.Song
	for g, c := range centers {
		for i := 0; i < perGroup; i++ {
			v := uniform(c).With(domain.FeatureEnergy, c+0.01*float64(i))
			songs = append(songs, songWith(fmt.Sprintf("g%d-%d", g, i), v))
		}
	}
	return songs
}

func TestSilhouette_SeparatedGroups(t *testing.T) {
	songs := groupedCatalog([]float64{0.1, 0.9}, 4)
	m, err := Train(songs, TrainConfig{K: 2, Seed: 3})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if s := Silhouette(m); s < 0.9 {
		t.Errorf("Silhouette() = %f, want >= 0.9", s)
	}

	single, err := Train(songs, TrainConfig{K: 1})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if s := Silhouette(single); s != 0 {
		t.Errorf("Silhouette() for k=1 = %f, want 0", s)
	}
}

func TestSelectK(t *testing.T) {
	songs := groupedCatalog([]float64{0.1, 0.5, 0.9}, 5)

	k, score, err := SelectK(songs, 2, 6, TrainConfig{Seed: 21})
	if err != nil {
		t.Fatalf("SelectK() error = %v", err)
	}
	if k != 3 {
		t.Errorf("SelectK() = %d (score %f), want 3", k, score)
	}

	if _, _, err := SelectK(songs, 5, 3, TrainConfig{}); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, _, err := SelectK(songs[:2], 2, 4, TrainConfig{}); err == nil {
		t.Error("expected error when catalog is too small")
	}
}
