// Package clustering partitions the song catalog into taste clusters with Lloyd's algorithm.
package clustering

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/timmy/musicmatch/internal/domain"
)

// DefaultMaxIterations bounds Lloyd iterations when TrainConfig leaves it unset.
const DefaultMaxIterations = 300

// TrainConfig holds the parameters of a training run.
type TrainConfig struct {
	K             int
	MaxIterations int
	Seed          uint64
	Version       string // snapshot version recorded on the model and its clusters
}

// Train clusters songs into cfg.K groups.
//
// Centroids are seeded with greedy k-means++ from a PCG source seeded with cfg.Seed, so runs
// over identical input are reproducible. Each iteration assigns every song to its nearest
// centroid (lowest label wins ties) and then recomputes centroids as member means. Training
// stops once an assignment pass changes nothing or MaxIterations passes have run.
//
// A centroid left without members is reseeded at the song farthest from its own centroid.
// That keeps k clusters alive but means total distortion is not guaranteed to fall
// monotonically between iterations.
//
// The final step is always an assignment pass, so every song's label is the argmin-distance
// cluster under the frozen centroids. When the run converges those centroids are exactly the
// member means. When MaxIterations stops it first (Model.Converged is false), the centroids
// come from the previous update and may differ from the means of their final members.
func Train(songs []domain.Song, cfg TrainConfig) (*Model, error) {
	n := len(songs)
	if n == 0 || cfg.K >= n {
		return nil, &domain.EmptyCatalogError{Songs: n, K: cfg.K}
	}
	if cfg.K < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", cfg.K)
	}
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	vectors := make([]domain.FeatureVector, n)
	for i, s := range songs {
		vectors[i] = s.Features()
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	centroids := seedCentroids(vectors, cfg.K, rng)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	var (
		iterations int
		converged  bool
	)
	for {
		iterations++
		changed := assign(vectors, centroids, labels)
		if changed == 0 {
			converged = true
			break
		}
		if iterations >= maxIter {
			break
		}
		centroids = update(vectors, labels, centroids)
	}

	return newModel(songs, vectors, labels, centroids, modelStats{
		version:    cfg.Version,
		iterations: iterations,
		converged:  converged,
		trainedAt:  time.Now().UTC(),
	}), nil
}

// seedCentroids picks k initial centroids with greedy k-means++: each new centroid is the best
// of a few D²-weighted candidates, judged by the resulting total squared distance.
func seedCentroids(vectors []domain.FeatureVector, k int, rng *rand.Rand) []domain.FeatureVector {
	n := len(vectors)
	centroids := make([]domain.FeatureVector, 0, k)

	first := rng.IntN(n)
	centroids = append(centroids, vectors[first])

	closest := make([]float64, n)
	for i, v := range vectors {
		closest[i] = v.SquaredDistance(vectors[first])
	}

	trials := 2 + int(math.Log(float64(k)))
	for len(centroids) < k {
		var total float64
		for _, d := range closest {
			total += d
		}

		best, bestPotential := -1, math.Inf(1)
		for t := 0; t < trials; t++ {
			cand := sampleWeighted(closest, total, rng)
			var potential float64
			for i, v := range vectors {
				potential += math.Min(closest[i], v.SquaredDistance(vectors[cand]))
			}
			if potential < bestPotential {
				best, bestPotential = cand, potential
			}
		}

		centroids = append(centroids, vectors[best])
		for i, v := range vectors {
			closest[i] = math.Min(closest[i], v.SquaredDistance(vectors[best]))
		}
	}
	return centroids
}

func sampleWeighted(weights []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return rng.IntN(len(weights))
	}
	r := rng.Float64() * total
	var acc float64
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if r < acc {
			return i
		}
	}
	return last
}

// assign labels every vector with its nearest centroid and returns how many labels changed.
func assign(vectors, centroids []domain.FeatureVector, labels []int) int {
	changed := 0
	for i, v := range vectors {
		best, _ := nearest(v, centroids)
		if best != labels[i] {
			labels[i] = best
			changed++
		}
	}
	return changed
}

// nearest returns the closest centroid and its squared distance. Ties go to the lowest index.
func nearest(v domain.FeatureVector, centroids []domain.FeatureVector) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for j, c := range centroids {
		if d := v.SquaredDistance(c); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}

// update recomputes centroids as member means. Empty clusters are reseeded at the song
// farthest from its own centroid, taken from a cluster that can spare it; labels is updated
// to reflect the move.
func update(vectors []domain.FeatureVector, labels []int, prev []domain.FeatureVector) []domain.FeatureVector {
	k := len(prev)
	sums := make([]domain.FeatureVector, k)
	counts := make([]int, k)
	for i, v := range vectors {
		l := labels[i]
		counts[l]++
		for f := range v {
			sums[l][f] += v[f]
		}
	}

	centroids := make([]domain.FeatureVector, k)
	for j := range centroids {
		if counts[j] == 0 {
			centroids[j] = prev[j]
			continue
		}
		centroids[j] = meanOf(sums[j], counts[j])
	}

	for j := 0; j < k; j++ {
		if counts[j] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, v := range vectors {
			if counts[labels[i]] <= 1 {
				continue
			}
			if d := v.SquaredDistance(centroids[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			continue
		}

		donor := labels[far]
		for f := range sums[donor] {
			sums[donor][f] -= vectors[far][f]
		}
		counts[donor]--
		centroids[donor] = meanOf(sums[donor], counts[donor])

		labels[far] = j
		counts[j] = 1
		sums[j] = vectors[far]
		centroids[j] = vectors[far]
	}
	return centroids
}

func meanOf(sum domain.FeatureVector, count int) domain.FeatureVector {
	for f := range sum {
		sum[f] /= float64(count)
	}
	return sum
}
