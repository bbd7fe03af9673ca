package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/timmy/musicmatch/internal/domain"
)

// SongRepository handles song catalog persistence.
type SongRepository struct {
	db *gorm.DB
}

// NewSongRepository creates a new SongRepository.
func NewSongRepository(db *gorm.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Upsert creates or updates songs keyed by (source_type, source_id).
// Cluster assignments are left untouched; they only change through AssignClusters.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - songs: songs to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *SongRepository) Upsert(ctx context.Context, songs []domain.Song) error {
	if len(songs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_type"}, {Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "artist", "album", "image_url", "preview_url", "external_url", "duration_ms",
			"bpm", "key", "scale",
			"energy", "danceability", "acousticness", "valence", "instrumentalness",
			"loudness", "bpm_normalized", "speechiness", "liveness",
			"updated_at",
		}),
	}).CreateInBatches(songs, 200).Error
}

// GetByID retrieves a song by ID, returning domain.ErrNotFound when absent.
func (r *SongRepository) GetByID(ctx context.Context, id string) (*domain.Song, error) {
	var song domain.Song
	if err := r.db.WithContext(ctx).First(&song, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &song, nil
}

// ListAll returns the whole catalog ordered by ID, so training input order is stable.
func (r *SongRepository) ListAll(ctx context.Context) ([]domain.Song, error) {
	var songs []domain.Song
	if err := r.db.WithContext(ctx).Order("id").Find(&songs).Error; err != nil {
		return nil, err
	}
	return songs, nil
}

// ListByCluster returns songs assigned to a cluster with pagination.
func (r *SongRepository) ListByCluster(ctx context.Context, clusterID, limit, offset int) ([]domain.Song, error) {
	var songs []domain.Song
	if err := r.db.WithContext(ctx).
		Where("cluster_id = ?", clusterID).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&songs).Error; err != nil {
		return nil, err
	}
	return songs, nil
}

// Count returns the number of songs in the catalog.
func (r *SongRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Song{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AssignClusters writes each song's cluster label. It runs on the caller's handle so it
// can join a transaction through WithTx.
func (r *SongRepository) AssignClusters(ctx context.Context, songs []domain.Song) error {
	byCluster := make(map[int][]string)
	for _, s := range songs {
		if s.ClusterID == nil {
			continue
		}
		byCluster[*s.ClusterID] = append(byCluster[*s.ClusterID], s.ID)
	}

	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Song{}).Where("1 = 1").Update("cluster_id", nil).Error; err != nil {
		return err
	}
	for label, ids := range byCluster {
		for start := 0; start < len(ids); start += 500 {
			end := min(start+500, len(ids))
			if err := db.Model(&domain.Song{}).
				Where("id IN ?", ids[start:end]).
				Update("cluster_id", label).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// WithTx returns a repository bound to tx.
func (r *SongRepository) WithTx(tx *gorm.DB) *SongRepository {
	return &SongRepository{db: tx}
}
