package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/timmy/musicmatch/internal/domain"
)

// TrainJobRepository records training runs.
type TrainJobRepository struct {
	db *gorm.DB
}

// NewTrainJobRepository creates a new TrainJobRepository.
func NewTrainJobRepository(db *gorm.DB) *TrainJobRepository {
	return &TrainJobRepository{db: db}
}

// Create inserts a new job record.
func (r *TrainJobRepository) Create(ctx context.Context, job *domain.TrainJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Update saves every field of job.
func (r *TrainJobRepository) Update(ctx context.Context, job *domain.TrainJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// Latest returns the most recently created job, or domain.ErrNotFound.
func (r *TrainJobRepository) Latest(ctx context.Context) (*domain.TrainJob, error) {
	var job domain.TrainJob
	if err := r.db.WithContext(ctx).Order("created_at DESC").First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// LatestCompleted returns the most recent successful job, or domain.ErrNotFound.
func (r *TrainJobRepository) LatestCompleted(ctx context.Context) (*domain.TrainJob, error) {
	var job domain.TrainJob
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.JobStatusCompleted).
		Order("completed_at DESC").
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// WithTx returns a repository bound to tx.
func (r *TrainJobRepository) WithTx(tx *gorm.DB) *TrainJobRepository {
	return &TrainJobRepository{db: tx}
}
