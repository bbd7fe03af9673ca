package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timmy/musicmatch/internal/clustering"
	"github.com/timmy/musicmatch/internal/domain"
	"github.com/timmy/musicmatch/internal/features"
	"github.com/timmy/musicmatch/internal/logger"
	"github.com/timmy/musicmatch/internal/recommend"
	"github.com/timmy/musicmatch/internal/repository"
	"github.com/timmy/musicmatch/internal/source"
	"github.com/timmy/musicmatch/internal/storage"
)

// ErrTrainingInProgress is returned when a training run is requested while another is active.
var ErrTrainingInProgress = errors.New("training already in progress")

// songNamespace scopes the deterministic song IDs derived from source identifiers.
var songNamespace = uuid.MustParse("6f1d3f0a-3c56-4e0e-9b43-2f6a51c7d9e4")

// SongID returns the stable ID of a song from a given source.
func SongID(sourceType, sourceID string) string {
	return uuid.NewSHA1(songNamespace, []byte(sourceType+"\x00"+sourceID)).String()
}

// VectorIndex mirrors song vectors into an external nearest-neighbour index.
type VectorIndex interface {
	UpsertSongs(ctx context.Context, songs []domain.Song, snapshot string) error
	DeleteStale(ctx context.Context, snapshot string) error
}

// SnapshotArchiver persists a published snapshot outside the database.
type SnapshotArchiver interface {
	Save(ctx context.Context, snap *storage.Snapshot) (string, error)
}

// TrainingConfig holds clustering parameters for training runs.
type TrainingConfig struct {
	K             int
	AutoK         bool
	KMin          int
	KMax          int
	MaxIterations int
	Seed          uint64
	BatchSize     int // page size used when ingesting from a source
}

// TrainOptions overrides TrainingConfig for a single run.
type TrainOptions struct {
	K     int   // 0 keeps the configured k
	AutoK *bool // nil keeps the configured setting
}

// TrainingService ingests songs and publishes new cluster snapshots.
// At most one training run executes at a time.
type TrainingService struct {
	db          *gorm.DB
	songRepo    *repository.SongRepository
	clusterRepo *repository.ClusterRepository
	jobRepo     *repository.TrainJobRepository
	index       VectorIndex
	archive     SnapshotArchiver
	snapshots   *SnapshotHolder
	cache       *recommend.ResultCache
	logger      *logger.Logger
	cfg         TrainingConfig

	mu      sync.Mutex
	running atomic.Bool
}

// NewTrainingService creates a TrainingService. index and archive may be nil.
func NewTrainingService(
	db *gorm.DB,
	snapshots *SnapshotHolder,
	cache *recommend.ResultCache,
	index VectorIndex,
	archive SnapshotArchiver,
	log *logger.Logger,
	cfg TrainingConfig,
) *TrainingService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	return &TrainingService{
		db:          db,
		songRepo:    repository.NewSongRepository(db),
		clusterRepo: repository.NewClusterRepository(db),
		jobRepo:     repository.NewTrainJobRepository(db),
		index:       index,
		archive:     archive,
		snapshots:   snapshots,
		cache:       cache,
		logger:      log,
		cfg:         cfg,
	}
}

func (s *TrainingService) log(ctx context.Context) *logger.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	return s.logger
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Fetched   int `json:"fetched"`
	Upserted  int `json:"upserted"`
	Warnings  int `json:"warnings"`
	StartTime time.Time
	EndTime   time.Time
}

// Ingest pulls up to limit songs from src, normalizes their descriptors and upserts them.
// A limit of 0 or less reads the whole source. Out-of-range descriptors are clamped and counted.
func (s *TrainingService) Ingest(ctx context.Context, src source.Source, limit int) (*IngestStats, error) {
	ctx = logger.SetSource(s.log(ctx).WithContext(ctx), src.GetSourceID())
	stats := &IngestStats{StartTime: time.Now()}

	s.log(ctx).WithFields(logger.Fields{
		"display_name": src.GetDisplayName(),
		"limit":        limit,
	}).Info("Starting ingestion")

	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		batchLimit := s.cfg.BatchSize
		if limit > 0 {
			remaining := limit - stats.Fetched
			if remaining <= 0 {
				break
			}
			batchLimit = min(batchLimit, remaining)
		}

		items, next, err := src.FetchBatch(ctx, cursor, batchLimit)
		if err != nil {
			return stats, fmt.Errorf("failed to fetch batch: %w", err)
		}
		if len(items) == 0 {
			break
		}
		stats.Fetched += len(items)

		songs := make([]domain.Song, len(items))
		for i, item := range items {
			songs[i] = s.songFromItem(ctx, src.GetSourceID(), item, stats)
		}
		if err := s.songRepo.Upsert(ctx, songs); err != nil {
			return stats, fmt.Errorf("failed to upsert songs: %w", err)
		}
		stats.Upserted += len(songs)

		if next == "" {
			break
		}
		cursor = next
	}

	stats.EndTime = time.Now()
	logger.With(logger.Fields{
		"fetched":  stats.Fetched,
		"warnings": stats.Warnings,
	}).WithCount(stats.Upserted).WithDuration(stats.EndTime.Sub(stats.StartTime)).
		Info(ctx, "Ingestion completed")
	return stats, nil
}

func (s *TrainingService) songFromItem(ctx context.Context, sourceType string, item source.SongItem, stats *IngestStats) domain.Song {
	song := domain.Song{
		ID:          SongID(sourceType, item.SourceID),
		SourceType:  sourceType,
		SourceID:    item.SourceID,
		Title:       item.Title,
		Artist:      item.Artist,
		Album:       item.Album,
		ImageURL:    item.ImageURL,
		PreviewURL:  item.PreviewURL,
		ExternalURL: item.ExternalURL,
		DurationMs:  item.DurationMs,
	}
	for _, w := range features.ApplyToSong(&song, item.Descriptors) {
		stats.Warnings++
		s.log(ctx).WithField("source_id", item.SourceID).Debug(w.Error())
	}
	return song
}

// Train runs one training pass over the stored catalog and publishes the result.
// It returns ErrTrainingInProgress without waiting if another run holds the guard.
func (s *TrainingService) Train(ctx context.Context, opts TrainOptions) (*domain.TrainJob, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrTrainingInProgress
	}
	defer s.running.Store(false)

	job, err := s.newJob(ctx)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, job, opts)
}

// StartTrain launches a training run in the background and returns its job record.
// The run uses its own context so it outlives the request that started it.
func (s *TrainingService) StartTrain(ctx context.Context, opts TrainOptions) (*domain.TrainJob, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrTrainingInProgress
	}

	job, err := s.newJob(ctx)
	if err != nil {
		s.running.Store(false)
		return nil, err
	}
	queued := *job

	runCtx := s.log(ctx).WithContext(context.Background())
	go func() {
		defer s.running.Store(false)
		_, _ = s.run(runCtx, job, opts)
	}()
	return &queued, nil
}

// Running reports whether a training run is active.
func (s *TrainingService) Running() bool {
	return s.running.Load()
}

func (s *TrainingService) newJob(ctx context.Context) (*domain.TrainJob, error) {
	job := &domain.TrainJob{
		ID:     uuid.NewString(),
		Status: domain.JobStatusPending,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create train job: %w", err)
	}
	return job, nil
}

func (s *TrainingService) run(ctx context.Context, job *domain.TrainJob, opts TrainOptions) (*domain.TrainJob, error) {
	ctx = logger.SetTrainID(s.log(ctx).WithContext(ctx), job.ID)
	start := time.Now()
	started := start.UTC()
	job.Status = domain.JobStatusRunning
	job.StartedAt = &started
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return job, fmt.Errorf("failed to update train job: %w", err)
	}

	snap, err := s.train(ctx, job, opts)
	if err != nil {
		s.fail(ctx, job, err)
		return job, err
	}

	s.publish(ctx, snap, job)

	logger.With(logger.Fields{
		"k":          job.K,
		"iterations": job.Iterations,
		"converged":  job.Converged,
		"silhouette": job.Silhouette,
	}).WithCount(job.SongCount).WithDuration(time.Since(start)).WithStatus(string(job.Status)).
		Info(ctx, "Training completed")
	return job, nil
}

func (s *TrainingService) train(ctx context.Context, job *domain.TrainJob, opts TrainOptions) (*Snapshot, error) {
	songs, err := s.songRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}

	version := newVersion()
	cfg := clustering.TrainConfig{
		K:             s.cfg.K,
		MaxIterations: s.cfg.MaxIterations,
		Seed:          s.cfg.Seed,
		Version:       version,
	}
	if opts.K > 0 {
		cfg.K = opts.K
	}
	autoK := s.cfg.AutoK
	if opts.AutoK != nil {
		autoK = *opts.AutoK
	}

	silhouette := 0.0
	if autoK {
		k, score, err := clustering.SelectK(songs, s.cfg.KMin, s.cfg.KMax, cfg)
		if err != nil {
			return nil, err
		}
		s.log(ctx).WithFields(logger.Fields{"k": k, "silhouette": score}).Info("Selected cluster count")
		cfg.K, silhouette = k, score
	}

	model, err := clustering.Train(songs, cfg)
	if err != nil {
		return nil, err
	}
	if !autoK {
		silhouette = clustering.Silhouette(model)
	}
	model.Silhouette = silhouette

	snap, err := NewSnapshot(model)
	if err != nil {
		return nil, err
	}

	completed := time.Now().UTC()
	job.Status = domain.JobStatusCompleted
	job.K = model.K()
	job.SongCount = len(songs)
	job.Iterations = model.Iterations
	job.Converged = model.Converged
	job.Silhouette = model.Silhouette
	job.Inertia = model.Inertia
	job.Snapshot = version
	job.CompletedAt = &completed

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.songRepo.WithTx(tx).AssignClusters(ctx, model.Songs()); err != nil {
			return fmt.Errorf("failed to assign clusters: %w", err)
		}
		if err := s.clusterRepo.WithTx(tx).ReplaceAll(ctx, model.Clusters()); err != nil {
			return fmt.Errorf("failed to store clusters: %w", err)
		}
		return s.jobRepo.WithTx(tx).Update(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// publish mirrors a committed snapshot to the optional stores and then swaps it in.
// Mirror failures are logged; the database already holds the authoritative copy.
func (s *TrainingService) publish(ctx context.Context, snap *Snapshot, job *domain.TrainJob) {
	ctx = logger.SetSnapshot(ctx, snap.Version())
	songs := snap.Model.Songs()

	if s.index != nil {
		if err := s.index.UpsertSongs(ctx, songs, snap.Version()); err != nil {
			s.log(ctx).WithError(err).Warn("Failed to index songs")
		} else if err := s.index.DeleteStale(ctx, snap.Version()); err != nil {
			s.log(ctx).WithError(err).Warn("Failed to prune stale index points")
		}
	}

	if s.archive != nil {
		url, err := s.archive.Save(ctx, storage.NewSnapshot(snap.Version(), job, snap.Model.Clusters(), songs))
		if err != nil {
			s.log(ctx).WithError(err).Warn("Failed to archive snapshot")
		} else {
			s.log(ctx).WithField("url", url).Info("Archived snapshot")
		}
	}

	// Store before Clear: a reader landing between the two may get one sample list from the
	// previous snapshot, which is accepted. Clearing first would let such a list stay cached.
	s.mu.Lock()
	s.snapshots.Store(snap)
	s.cache.Clear()
	s.mu.Unlock()
}

func (s *TrainingService) fail(ctx context.Context, job *domain.TrainJob, cause error) {
	s.log(ctx).WithError(cause).Error("Training failed")

	job.Status = domain.JobStatusFailed
	job.ErrorLog = cause.Error()
	job.CompletedAt = nil
	if err := s.jobRepo.Update(context.WithoutCancel(ctx), job); err != nil {
		s.log(ctx).WithError(err).Error("Failed to record training failure")
	}
}

// Restore publishes the snapshot stored in the database, if any.
// It returns false when nothing has been trained yet.
func (s *TrainingService) Restore(ctx context.Context) (bool, error) {
	clusters, err := s.clusterRepo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load clusters: %w", err)
	}
	if len(clusters) == 0 {
		return false, nil
	}
	songs, err := s.songRepo.ListAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load songs: %w", err)
	}

	version := clusters[0].Snapshot
	model, err := clustering.Restore(songs, clusters, version)
	if err != nil {
		return false, err
	}
	if job, err := s.jobRepo.LatestCompleted(ctx); err == nil && job.Snapshot == version {
		model.Silhouette = job.Silhouette
		model.Iterations = job.Iterations
	}

	snap, err := NewSnapshot(model)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	s.snapshots.Store(snap)
	s.cache.Clear()
	s.mu.Unlock()

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldSnapshot: version,
		"k":                  model.K(),
		logger.FieldCount:    len(songs),
	}).Info("Restored cluster snapshot")
	return true, nil
}

// TrainStatus describes the latest training run.
type TrainStatus struct {
	Running  bool             `json:"running"`
	Snapshot string           `json:"snapshot,omitempty"`
	Latest   *domain.TrainJob `json:"latest_job,omitempty"`
}

// Status returns the latest job and whether a run is active.
func (s *TrainingService) Status(ctx context.Context) (*TrainStatus, error) {
	status := &TrainStatus{
		Running:  s.Running(),
		Snapshot: s.snapshots.Load().Version(),
	}
	job, err := s.jobRepo.Latest(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		status.Latest = job
	}
	return status, nil
}

// newVersion returns a sortable snapshot version such as 20261018T120501-3f2a9c1b.
func newVersion() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return time.Now().UTC().Format("20060102T150405") + "-" + id[:8]
}
