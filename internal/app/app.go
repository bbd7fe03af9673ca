// Package app wires configuration into the repositories and services shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/timmy/musicmatch/internal/config"
	"github.com/timmy/musicmatch/internal/logger"
	"github.com/timmy/musicmatch/internal/quiz"
	"github.com/timmy/musicmatch/internal/recommend"
	"github.com/timmy/musicmatch/internal/repository"
	"github.com/timmy/musicmatch/internal/service"
	"github.com/timmy/musicmatch/internal/source"
	"github.com/timmy/musicmatch/internal/source/analyzer"
	"github.com/timmy/musicmatch/internal/source/staging"
	"github.com/timmy/musicmatch/internal/storage"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *gorm.DB
	Qdrant *repository.QdrantRepository // nil unless qdrant.enabled

	Snapshots       *service.SnapshotHolder
	Cache           *recommend.ResultCache
	Training        *service.TrainingService
	Recommendations *service.RecommendationService
}

// New opens the database and optional external stores and builds the services.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	bank, err := quiz.LoadBank(cfg.Quiz.BankPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz bank: %w", err)
	}

	db, err := repository.InitDB(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Snapshots: service.NewSnapshotHolder(),
		Cache:     recommend.NewResultCache(),
	}

	var (
		index      service.VectorIndex
		neighbours service.NeighbourIndex
		archive    service.SnapshotArchiver
	)

	if cfg.Qdrant.Enabled {
		q, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			Collection: cfg.Qdrant.Collection,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Qdrant = q
		if err := q.EnsureCollection(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to ensure qdrant collection: %w", err)
		}
		index, neighbours = q, q
		log.WithField("collection", cfg.Qdrant.Collection).Info("Qdrant song index enabled")
	}

	if cfg.Storage.Enabled {
		store, err := storage.NewStorage(&cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to ensure storage bucket: %w", err)
		}
		archive = storage.NewSnapshotArchive(store, cfg.Storage.Prefix)
		log.WithField("bucket", cfg.Storage.Bucket).Info("Snapshot archive enabled")
	}

	a.Training = service.NewTrainingService(db, a.Snapshots, a.Cache, index, archive, log, service.TrainingConfig{
		K:             cfg.Clustering.K,
		AutoK:         cfg.Clustering.AutoK,
		KMin:          cfg.Clustering.KMin,
		KMax:          cfg.Clustering.KMax,
		MaxIterations: cfg.Clustering.MaxIterations,
		Seed:          cfg.Clustering.Seed,
		BatchSize:     cfg.Analyzer.PageSize,
	})
	a.Recommendations = service.NewRecommendationService(a.Snapshots, a.Cache, bank, neighbours,
		repository.NewSongRepository(db), log, service.RecommendConfig{
			TopNSongs:     cfg.Recommend.TopNSongs,
			AdjacentCount: cfg.Recommend.AdjacentCount,
			SampleSize:    cfg.Recommend.SampleSize,
			SimilarLimit:  cfg.Recommend.SimilarLimit,
		})
	return a, nil
}

// Source returns the descriptor source of the given kind. name selects the staging
// directory or the analyzer catalog.
func (a *App) Source(kind, name string) (source.Source, error) {
	switch kind {
	case "staging":
		if name == "" {
			return nil, errors.New("staging source requires a name")
		}
		return staging.NewAdapter(a.Config.Sources.Staging.BasePath, name), nil
	case "analyzer":
		return analyzer.NewClient(&analyzer.Config{
			BaseURL:    a.Config.Analyzer.BaseURL,
			APIKey:     a.Config.Analyzer.APIKey,
			Timeout:    a.Config.Analyzer.Timeout,
			RetryCount: a.Config.Analyzer.RetryCount,
			Catalog:    name,
		}), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", kind)
	}
}

// Close releases external connections.
func (a *App) Close() {
	if a.Qdrant != nil {
		if err := a.Qdrant.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close qdrant connection")
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
