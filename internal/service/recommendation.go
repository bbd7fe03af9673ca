package service

import (
	"context"
	"errors"

	"github.com/timmy/musicmatch/internal/domain"
	"github.com/timmy/musicmatch/internal/logger"
	"github.com/timmy/musicmatch/internal/projection"
	"github.com/timmy/musicmatch/internal/quiz"
	"github.com/timmy/musicmatch/internal/recommend"
	"github.com/timmy/musicmatch/internal/repository"
)

// NeighbourIndex answers nearest-song queries from an external vector index.
type NeighbourIndex interface {
	SearchNearest(ctx context.Context, vector domain.FeatureVector, limit int, filters *repository.SearchFilters) ([]repository.SongHit, error)
}

// SongLookup finds songs that may not be part of the published snapshot.
type SongLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Song, error)
}

// RecommendConfig holds result sizes for the read paths.
type RecommendConfig struct {
	TopNSongs     int
	AdjacentCount int
	SampleSize    int
	SimilarLimit  int
}

// RecommendationService serves quiz results, cluster listings and song lookups from the
// published snapshot.
type RecommendationService struct {
	snapshots *SnapshotHolder
	cache     *recommend.ResultCache
	bank      *quiz.Bank
	index     NeighbourIndex
	songs     SongLookup
	logger    *logger.Logger
	cfg       RecommendConfig
}

// NewRecommendationService creates a RecommendationService. index and songs may be nil.
func NewRecommendationService(
	snapshots *SnapshotHolder,
	cache *recommend.ResultCache,
	bank *quiz.Bank,
	index NeighbourIndex,
	songs SongLookup,
	log *logger.Logger,
	cfg RecommendConfig,
) *RecommendationService {
	return &RecommendationService{
		snapshots: snapshots,
		cache:     cache,
		bank:      bank,
		index:     index,
		songs:     songs,
		logger:    log,
		cfg:       cfg,
	}
}

func (s *RecommendationService) log(ctx context.Context) *logger.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	return s.logger
}

func (s *RecommendationService) current(op string) (*Snapshot, error) {
	snap := s.snapshots.Load()
	if snap == nil || !snap.Model.Trained() {
		return nil, &domain.UntrainedModelError{Operation: op}
	}
	return snap, nil
}

// Questions returns the quiz without option weights.
func (s *RecommendationService) Questions() []domain.QuizQuestion {
	return s.bank.Public()
}

// QuizResult is the response to a submitted quiz.
type QuizResult struct {
	UserProfile      *domain.UserProfile   `json:"user_profile"`
	MatchedCluster   domain.ClusterMatch   `json:"matched_cluster"`
	AdjacentClusters []domain.ClusterMatch `json:"adjacent_clusters"`
	Songs            []domain.ScoredSong   `json:"songs"`
	Snapshot         string                `json:"snapshot"`
}

// SubmitQuiz builds a profile from answers and matches it against the current snapshot.
// The matched and adjacent clusters carry their centroid samples so clients can offer
// alternatives.
func (s *RecommendationService) SubmitQuiz(ctx context.Context, list []domain.QuizAnswer) (*QuizResult, error) {
	answers, err := quiz.Answers(list)
	if err != nil {
		return nil, err
	}
	profile, err := quiz.NewProfile(answers, s.bank)
	if err != nil {
		return nil, err
	}

	snap, err := s.current("match quiz")
	if err != nil {
		return nil, err
	}
	match, err := recommend.Match(profile.FeatureVector, snap.Model, recommend.Options{
		TopNSongs:     s.cfg.TopNSongs,
		AdjacentCount: s.cfg.AdjacentCount,
	})
	if err != nil {
		return nil, err
	}

	samples, err := s.samples(match.MatchedCluster.ID, s.cfg.SampleSize)
	if err != nil {
		return nil, err
	}
	match.MatchedCluster.SampleSongs = samples
	for i := range match.AdjacentClusters {
		samples, err := s.samples(match.AdjacentClusters[i].ID, s.cfg.SampleSize)
		if err != nil {
			return nil, err
		}
		match.AdjacentClusters[i].SampleSongs = samples
	}

	s.log(ctx).WithFields(logger.Fields{
		"profile_id":          profile.ID,
		logger.FieldClusterID: match.MatchedCluster.ID,
		"confidence":          match.MatchedCluster.Confidence,
	}).Info("Matched quiz profile")

	return &QuizResult{
		UserProfile:      profile,
		MatchedCluster:   match.MatchedCluster,
		AdjacentClusters: match.AdjacentClusters,
		Songs:            match.Songs,
		Snapshot:         snap.Version(),
	}, nil
}

// samples returns the first limit entries of the cached centroid ranking for label.
func (s *RecommendationService) samples(label, limit int) ([]domain.ScoredSong, error) {
	ranked, err := s.cache.GetOrCompute(label, nil, func() ([]domain.ScoredSong, error) {
		snap, err := s.current("sample songs")
		if err != nil {
			return nil, err
		}
		return recommend.SampleSongs(snap.Model, label, 0)
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ClusterSummary is a cluster with a few representative songs.
type ClusterSummary struct {
	domain.Cluster
	SampleSongs []domain.ScoredSong `json:"sample_songs"`
}

// ListClusters returns every cluster with its sample songs.
func (s *RecommendationService) ListClusters(ctx context.Context) ([]ClusterSummary, error) {
	snap, err := s.current("list clusters")
	if err != nil {
		return nil, err
	}
	clusters := snap.Model.Clusters()
	out := make([]ClusterSummary, len(clusters))
	for i, c := range clusters {
		samples, err := s.samples(c.ID, s.cfg.SampleSize)
		if err != nil {
			return nil, err
		}
		out[i] = ClusterSummary{Cluster: c, SampleSongs: samples}
	}
	return out, nil
}

// ClusterDetail is a cluster with every member song.
type ClusterDetail struct {
	domain.Cluster
	Songs []domain.Song `json:"songs"`
}

// GetCluster returns one cluster and its members, or domain.ErrNotFound.
func (s *RecommendationService) GetCluster(ctx context.Context, id int) (*ClusterDetail, error) {
	snap, err := s.current("get cluster")
	if err != nil {
		return nil, err
	}
	c, ok := snap.Model.Cluster(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ClusterDetail{Cluster: c, Songs: snap.Model.Members(id)}, nil
}

// ClusterRecommendations ranks the songs of a cluster. With a user vector the ranking is
// personalized and bypasses the cache; otherwise it is the cached centroid ranking.
func (s *RecommendationService) ClusterRecommendations(ctx context.Context, id, limit int, userVector *domain.FeatureVector) ([]domain.ScoredSong, error) {
	snap, err := s.current("cluster recommendations")
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Model.Cluster(id); !ok {
		return nil, domain.ErrNotFound
	}

	if userVector == nil {
		return s.samples(id, limit)
	}
	query := userVector.Clamp01()
	return s.cache.GetOrCompute(id, &query, func() ([]domain.ScoredSong, error) {
		return recommend.RankSongs(query, snap.Model.Members(id), limit), nil
	})
}

// GetSong returns a song from the snapshot, falling back to the catalog store for songs
// ingested after the last training run.
func (s *RecommendationService) GetSong(ctx context.Context, id string) (*domain.Song, error) {
	if snap := s.snapshots.Load(); snap != nil {
		if song, ok := snap.Model.Song(id); ok {
			return &song, nil
		}
	}
	if s.songs == nil {
		return nil, domain.ErrNotFound
	}
	return s.songs.GetByID(ctx, id)
}

// SimilarSongs returns the songs nearest to the given one across all clusters.
// The vector index is used when configured; any index failure falls back to a snapshot scan.
func (s *RecommendationService) SimilarSongs(ctx context.Context, id string, limit int) ([]domain.ScoredSong, error) {
	if limit <= 0 {
		limit = s.cfg.SimilarLimit
	}
	snap, err := s.current("similar songs")
	if err != nil {
		return nil, err
	}
	target, ok := snap.Model.Song(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	if s.index != nil {
		hits, err := s.index.SearchNearest(ctx, target.Features(), limit, &repository.SearchFilters{ExcludeID: id})
		if err == nil {
			if out, ok := resolveHits(snap, hits); ok {
				return out, nil
			}
			s.log(ctx).Warn("Vector index out of sync with snapshot, scanning instead")
		} else {
			s.log(ctx).WithError(err).Warn("Vector search failed, scanning instead")
		}
	}
	return recommend.SimilarSongs(snap.Model, id, limit)
}

// resolveHits maps index hits onto snapshot songs. It fails if any hit is unknown to the
// snapshot, which happens while the index still holds a previous version.
func resolveHits(snap *Snapshot, hits []repository.SongHit) ([]domain.ScoredSong, bool) {
	out := make([]domain.ScoredSong, 0, len(hits))
	for _, h := range hits {
		song, ok := snap.Model.Song(h.SongID)
		if !ok {
			return nil, false
		}
		out = append(out, domain.ScoredSong{
			Song:            song,
			Distance:        h.Distance,
			SimilarityScore: domain.Similarity(h.Distance),
		})
	}
	return out, true
}

// SongPoint is a song placed on the 2-D visualization plane.
type SongPoint struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ClusterID int     `json:"cluster_id"`
}

// CentroidPoint is a cluster centroid on the visualization plane.
type CentroidPoint struct {
	ClusterID int     `json:"cluster_id"`
	Mood      string  `json:"mood"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Visualization is the scatter-plot payload for the cluster map.
type Visualization struct {
	Songs             []SongPoint     `json:"songs"`
	Centroids         []CentroidPoint `json:"centroids"`
	ExplainedVariance [2]float64      `json:"explained_variance"`
	Snapshot          string          `json:"snapshot"`
}

// Visualization projects every song and centroid of the snapshot through one PCA basis.
func (s *RecommendationService) Visualization(ctx context.Context) (*Visualization, error) {
	snap, err := s.current("visualize clusters")
	if err != nil {
		return nil, err
	}
	if snap.Projector == nil {
		return nil, errors.New("snapshot has no projection basis")
	}

	songs := snap.Model.Songs()
	clusters := snap.Model.Clusters()
	songXY, err := snap.Projector.Project(songs)
	if err != nil {
		return nil, err
	}
	centroidXY, err := snap.Projector.ProjectCentroids(clusters)
	if err != nil {
		return nil, err
	}

	v := &Visualization{
		Songs:             make([]SongPoint, len(songs)),
		Centroids:         make([]CentroidPoint, len(clusters)),
		ExplainedVariance: snap.Projector.ExplainedVariance,
		Snapshot:          snap.Version(),
	}
	for i, song := range songs {
		v.Songs[i] = songPoint(song, songXY[song.ID])
	}
	for i, c := range clusters {
		pt := centroidXY[c.ID]
		v.Centroids[i] = CentroidPoint{ClusterID: c.ID, Mood: c.Mood, X: pt.X, Y: pt.Y}
	}
	return v, nil
}

func songPoint(song domain.Song, pt projection.Point) SongPoint {
	label := -1
	if song.ClusterID != nil {
		label = *song.ClusterID
	}
	return SongPoint{
		ID:        song.ID,
		Title:     song.Title,
		Artist:    song.Artist,
		X:         pt.X,
		Y:         pt.Y,
		ClusterID: label,
	}
}

// CacheStats exposes the result cache counters.
func (s *RecommendationService) CacheStats() recommend.CacheStats {
	return s.cache.Stats()
}
