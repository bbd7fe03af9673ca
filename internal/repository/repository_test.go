package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/timmy/musicmatch/internal/config"
	"github.com/timmy/musicmatch/internal/domain"
	"github.com/timmy/musicmatch/internal/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
	}, logger.GetDefault())
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	return db
}

func testSong(id, sourceID string, energy float64) domain.Song {
	s := domain.Song{ID: id, SourceType: "staging", SourceID: sourceID, Title: "t-" + sourceID, Artist: "a"}
	s.SetFeatures(domain.FeatureVector{}.With(domain.FeatureEnergy, energy))
	return s
}

func TestSongRepository_UpsertAndAssign(t *testing.T) {
	ctx := context.Background()
	repo := NewSongRepository(testDB(t))

	songs := []domain.Song{testSong("id-1", "s1", 0.1), testSong("id-2", "s2", 0.9)}
	if err := repo.Upsert(ctx, songs); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	updated := testSong("id-1", "s1", 0.4)
	updated.Title = "renamed"
	if err := repo.Upsert(ctx, []domain.Song{updated}); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}

	got, err := repo.GetByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "renamed" || got.Energy != 0.4 {
		t.Errorf("song not updated: %+v", got)
	}
	if n, _ := repo.Count(ctx); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	zero, one := 0, 1
	songs[0].ClusterID = &zero
	songs[1].ClusterID = &one
	if err := repo.AssignClusters(ctx, songs); err != nil {
		t.Fatalf("AssignClusters() error = %v", err)
	}

	inOne, err := repo.ListByCluster(ctx, 1, 10, 0)
	if err != nil {
		t.Fatalf("ListByCluster() error = %v", err)
	}
	if len(inOne) != 1 || inOne[0].ID != "id-2" {
		t.Errorf("cluster 1 members = %+v", inOne)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestClusterRepository_ReplaceAllInTransaction(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewClusterRepository(db)

	first := []domain.Cluster{
		{ID: 0, Centroid: domain.FeatureVector{}.With(domain.FeatureValence, 0.2), SongCount: 3, Snapshot: "v1"},
		{ID: 1, SongCount: 4, Snapshot: "v1"},
	}
	if err := repo.ReplaceAll(ctx, first); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).ReplaceAll(ctx, []domain.Cluster{{ID: 0, Snapshot: "v2"}}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transaction error = %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].Snapshot != "v1" {
		t.Fatalf("rolled back clusters = %+v", got)
	}
	if got[0].Centroid[domain.FeatureValence] != 0.2 {
		t.Errorf("centroid round trip = %v", got[0].Centroid)
	}

	if _, err := repo.GetByID(ctx, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID(7) error = %v, want ErrNotFound", err)
	}
}

func TestTrainJobRepository_Latest(t *testing.T) {
	ctx := context.Background()
	repo := NewTrainJobRepository(testDB(t))

	if _, err := repo.Latest(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Latest() on empty table error = %v", err)
	}

	done := time.Now().UTC()
	older := &domain.TrainJob{ID: "a", Status: domain.JobStatusCompleted, CompletedAt: &done, CreatedAt: done.Add(-time.Hour)}
	newer := &domain.TrainJob{ID: "b", Status: domain.JobStatusFailed, CreatedAt: done}
	for _, j := range []*domain.TrainJob{older, newer} {
		if err := repo.Create(ctx, j); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	latest, err := repo.Latest(ctx)
	if err != nil || latest.ID != "b" {
		t.Errorf("Latest() = %+v, %v", latest, err)
	}
	completed, err := repo.LatestCompleted(ctx)
	if err != nil || completed.ID != "a" {
		t.Errorf("LatestCompleted() = %+v, %v", completed, err)
	}
}
