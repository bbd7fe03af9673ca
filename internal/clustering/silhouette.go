package clustering

import (
	"fmt"

	"github.com/timmy/musicmatch/internal/domain"
)

// Silhouette returns the mean silhouette coefficient of the model's assignment.
// Songs alone in their cluster score 0. A model with fewer than two clusters scores 0.
func Silhouette(m *Model) float64 {
	if m.K() < 2 || len(m.songs) < 2 {
		return 0
	}

	vectors := make([]domain.FeatureVector, len(m.songs))
	for i, s := range m.songs {
		vectors[i] = s.Features()
	}

	var total float64
	for i, v := range vectors {
		own := *m.songs[i].ClusterID
		if len(m.members[own]) <= 1 {
			continue
		}

		a := meanDistance(v, vectors, m.members[own], i)
		b := -1.0
		for label, idx := range m.members {
			if label == own || len(idx) == 0 {
				continue
			}
			if d := meanDistance(v, vectors, idx, -1); b < 0 || d < b {
				b = d
			}
		}
		if b < 0 {
			continue
		}

		denom := a
		if b > denom {
			denom = b
		}
		if denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(len(vectors))
}

func meanDistance(v domain.FeatureVector, vectors []domain.FeatureVector, idx []int, skip int) float64 {
	var sum float64
	n := 0
	for _, j := range idx {
		if j == skip {
			continue
		}
		sum += v.Distance(vectors[j])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SelectK trains one model per k in [kMin, kMax] and returns the k with the best silhouette.
// Values of k at or above the catalog size are skipped; ties keep the smaller k.
func SelectK(songs []domain.Song, kMin, kMax int, cfg TrainConfig) (int, float64, error) {
	if kMin < 2 {
		kMin = 2
	}
	if kMax < kMin {
		return 0, 0, fmt.Errorf("invalid k range [%d, %d]", kMin, kMax)
	}

	bestK, bestScore := 0, -2.0
	for k := kMin; k <= kMax && k < len(songs); k++ {
		trial := cfg
		trial.K = k
		m, err := Train(songs, trial)
		if err != nil {
			return 0, 0, err
		}
		if score := Silhouette(m); score > bestScore {
			bestK, bestScore = k, score
		}
	}
	if bestK == 0 {
		return 0, 0, &domain.EmptyCatalogError{Songs: len(songs), K: kMin}
	}
	return bestK, bestScore, nil
}
