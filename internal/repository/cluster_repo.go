package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/timmy/musicmatch/internal/domain"
)

// ClusterRepository persists the clusters of the published snapshot.
type ClusterRepository struct {
	db *gorm.DB
}

// NewClusterRepository creates a new ClusterRepository.
func NewClusterRepository(db *gorm.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

// ReplaceAll deletes every stored cluster and inserts clusters in their place.
func (r *ClusterRepository) ReplaceAll(ctx context.Context, clusters []domain.Cluster) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("1 = 1").Delete(&domain.Cluster{}).Error; err != nil {
		return err
	}
	if len(clusters) == 0 {
		return nil
	}
	return db.Create(&clusters).Error
}

// List returns stored clusters ordered by label.
func (r *ClusterRepository) List(ctx context.Context) ([]domain.Cluster, error) {
	var clusters []domain.Cluster
	if err := r.db.WithContext(ctx).Order("id").Find(&clusters).Error; err != nil {
		return nil, err
	}
	return clusters, nil
}

// GetByID returns one cluster, or domain.ErrNotFound.
func (r *ClusterRepository) GetByID(ctx context.Context, id int) (*domain.Cluster, error) {
	var c domain.Cluster
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// WithTx returns a repository bound to tx.
func (r *ClusterRepository) WithTx(tx *gorm.DB) *ClusterRepository {
	return &ClusterRepository{db: tx}
}
