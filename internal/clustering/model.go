package clustering

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/timmy/musicmatch/internal/domain"
)

// Model is an immutable snapshot of a trained clustering.
// Online code receives it explicitly and only reads from it.
type Model struct {
	Version     string
	TrainedAt   time.Time
	Iterations  int
	Converged   bool // false when capped: centroids then lag the final membership by one update
	Inertia     float64
	Silhouette  float64
	CatalogMean domain.FeatureVector

	clusters []domain.Cluster // indexed by label
	songs    []domain.Song    // ClusterID set on every entry
	members  [][]int          // label -> indexes into songs
	byID     map[string]int
}

type modelStats struct {
	version    string
	iterations int
	converged  bool
	trainedAt  time.Time
}

func newModel(songs []domain.Song, vectors []domain.FeatureVector, labels []int, centroids []domain.FeatureVector, stats modelStats) *Model {
	k := len(centroids)
	m := &Model{
		Version:     stats.version,
		TrainedAt:   stats.trainedAt,
		Iterations:  stats.iterations,
		Converged:   stats.converged,
		CatalogMean: domain.Mean(vectors),
		clusters:    make([]domain.Cluster, k),
		songs:       make([]domain.Song, len(songs)),
		members:     make([][]int, k),
		byID:        make(map[string]int, len(songs)),
	}

	for i, s := range songs {
		label := labels[i]
		s.ClusterID = &label
		m.songs[i] = s
		m.members[label] = append(m.members[label], i)
		m.byID[s.ID] = i
		m.Inertia += vectors[i].SquaredDistance(centroids[label])
	}

	for j, c := range centroids {
		desc := Describe(c, m.CatalogMean)
		m.clusters[j] = domain.Cluster{
			ID:          j,
			Centroid:    c,
			SongCount:   len(m.members[j]),
			Description: desc.Label,
			Mood:        desc.Mood,
			Emoji:       desc.Emoji,
			Snapshot:    stats.version,
			CreatedAt:   stats.trainedAt,
		}
	}
	return m
}

// Restore rebuilds a model from persisted songs and clusters.
// Cluster IDs must be the contiguous labels 0..k-1. Songs lacking a valid assignment are
// placed in their nearest cluster.
func Restore(songs []domain.Song, clusters []domain.Cluster, version string) (*Model, error) {
	if len(clusters) == 0 {
		return nil, &domain.UntrainedModelError{Operation: "restore"}
	}

	sorted := make([]domain.Cluster, len(clusters))
	copy(sorted, clusters)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	centroids := make([]domain.FeatureVector, len(sorted))
	for i, c := range sorted {
		if c.ID != i {
			return nil, fmt.Errorf("restore: cluster labels not contiguous, expected %d got %d", i, c.ID)
		}
		centroids[i] = c.Centroid
	}

	vectors := make([]domain.FeatureVector, len(songs))
	labels := make([]int, len(songs))
	for i, s := range songs {
		vectors[i] = s.Features()
		if s.ClusterID != nil && *s.ClusterID >= 0 && *s.ClusterID < len(centroids) {
			labels[i] = *s.ClusterID
		} else {
			labels[i], _ = nearest(vectors[i], centroids)
		}
	}

	trainedAt := time.Now().UTC()
	if !sorted[0].CreatedAt.IsZero() {
		trainedAt = sorted[0].CreatedAt
	}
	m := newModel(songs, vectors, labels, centroids, modelStats{
		version:   version,
		converged: true,
		trainedAt: trainedAt,
	})
	for i := range m.clusters {
		if sorted[i].Description != "" {
			m.clusters[i].Description = sorted[i].Description
			m.clusters[i].Mood = sorted[i].Mood
			m.clusters[i].Emoji = sorted[i].Emoji
		}
	}
	return m, nil
}

// Trained reports whether the model holds at least one cluster.
func (m *Model) Trained() bool {
	return m != nil && len(m.clusters) > 0
}

// K returns the number of clusters.
func (m *Model) K() int {
	if m == nil {
		return 0
	}
	return len(m.clusters)
}

// Clusters returns a copy of the cluster records ordered by label.
func (m *Model) Clusters() []domain.Cluster {
	out := make([]domain.Cluster, len(m.clusters))
	copy(out, m.clusters)
	return out
}

// Cluster returns the cluster with the given label.
func (m *Model) Cluster(label int) (domain.Cluster, bool) {
	if label < 0 || label >= len(m.clusters) {
		return domain.Cluster{}, false
	}
	return m.clusters[label], true
}

// Members returns copies of the songs assigned to label, in catalog order.
func (m *Model) Members(label int) []domain.Song {
	if label < 0 || label >= len(m.members) {
		return nil
	}
	out := make([]domain.Song, len(m.members[label]))
	for i, idx := range m.members[label] {
		out[i] = m.songs[idx]
	}
	return out
}

// Songs returns copies of every song in the snapshot.
func (m *Model) Songs() []domain.Song {
	out := make([]domain.Song, len(m.songs))
	copy(out, m.songs)
	return out
}

// Song looks up a song by ID.
func (m *Model) Song(id string) (domain.Song, bool) {
	idx, ok := m.byID[id]
	if !ok {
		return domain.Song{}, false
	}
	return m.songs[idx], true
}

// Label returns the cluster assigned to the song with the given ID.
func (m *Model) Label(id string) (int, bool) {
	idx, ok := m.byID[id]
	if !ok {
		return 0, false
	}
	return *m.songs[idx].ClusterID, true
}

// Nearest returns the cluster whose centroid is closest to v and the Euclidean distance to it.
// Ties go to the lowest label.
func (m *Model) Nearest(v domain.FeatureVector) (int, float64) {
	label, sq := nearest(v, m.Centroids())
	return label, math.Sqrt(sq)
}

// Centroids returns the centroid vectors ordered by label.
func (m *Model) Centroids() []domain.FeatureVector {
	out := make([]domain.FeatureVector, len(m.clusters))
	for i, c := range m.clusters {
		out[i] = c.Centroid
	}
	return out
}
