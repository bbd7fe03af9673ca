// Package recommend ranks clusters and songs against a taste vector.
package recommend

import (
	"sort"

	"github.com/timmy/musicmatch/internal/clustering"
	"github.com/timmy/musicmatch/internal/domain"
)

// Options controls the size of a MatchResult.
type Options struct {
	TopNSongs     int // songs returned from the matched cluster; 0 returns every member
	AdjacentCount int // next-nearest clusters after the match
}

// Match finds the cluster nearest to query, the adjacentCount clusters after it, and the
// matched cluster's songs ranked by distance to query.
//
// Confidence and similarity scores are 1 - distance clamped to [0,1]. They are a linear
// approximation of closeness, not calibrated probabilities.
func Match(query domain.FeatureVector, model *clustering.Model, opts Options) (*domain.MatchResult, error) {
	if !model.Trained() {
		return nil, &domain.UntrainedModelError{Operation: "match"}
	}

	ranked := RankClusters(query, model)
	result := &domain.MatchResult{
		MatchedCluster:   ranked[0],
		AdjacentClusters: []domain.ClusterMatch{},
	}

	adjacent := opts.AdjacentCount
	if adjacent < 0 {
		adjacent = 0
	}
	if rest := ranked[1:]; adjacent > len(rest) {
		adjacent = len(rest)
	}
	result.AdjacentClusters = append(result.AdjacentClusters, ranked[1:1+adjacent]...)

	result.Songs = RankSongs(query, model.Members(ranked[0].ID), opts.TopNSongs)
	return result, nil
}

// RankClusters orders every cluster by centroid distance to query, ties by lower label.
func RankClusters(query domain.FeatureVector, model *clustering.Model) []domain.ClusterMatch {
	clusters := model.Clusters()
	out := make([]domain.ClusterMatch, len(clusters))
	for i, c := range clusters {
		d := query.Distance(c.Centroid)
		out[i] = domain.ClusterMatch{Cluster: c, Distance: d, Confidence: domain.Similarity(d)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RankSongs scores songs against query and returns them by ascending distance, ties by ID.
// A limit of 0 or more than len(songs) returns every song.
func RankSongs(query domain.FeatureVector, songs []domain.Song, limit int) []domain.ScoredSong {
	scored := make([]domain.ScoredSong, len(songs))
	for i, s := range songs {
		d := query.Distance(s.Features())
		scored[i] = domain.ScoredSong{Song: s, Distance: d, SimilarityScore: domain.Similarity(d)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].ID < scored[j].ID
	})
	if limit > 0 && limit < len(scored) {
		scored = scored[:limit]
	}
	return scored
}

// SampleSongs returns the members of a cluster closest to its centroid.
func SampleSongs(model *clustering.Model, label, limit int) ([]domain.ScoredSong, error) {
	if !model.Trained() {
		return nil, &domain.UntrainedModelError{Operation: "sample songs"}
	}
	c, ok := model.Cluster(label)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return RankSongs(c.Centroid, model.Members(label), limit), nil
}

// SimilarSongs ranks every other song in the snapshot by distance to the song with the given ID.
func SimilarSongs(model *clustering.Model, songID string, limit int) ([]domain.ScoredSong, error) {
	if !model.Trained() {
		return nil, &domain.UntrainedModelError{Operation: "similar songs"}
	}
	target, ok := model.Song(songID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	all := model.Songs()
	others := all[:0]
	for _, s := range all {
		if s.ID != songID {
			others = append(others, s)
		}
	}
	return RankSongs(target.Features(), others, limit), nil
}
