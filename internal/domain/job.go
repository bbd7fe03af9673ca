package domain

import "time"

// JobStatus represents the status of a training job.
// Values include JobStatusPending, JobStatusRunning, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// TrainJob records one clustering run and its outcome.
type TrainJob struct {
	ID          string     `gorm:"type:text;primaryKey" json:"id"`
	Status      JobStatus  `gorm:"type:text;default:pending;index:idx_train_jobs_status" json:"status"`
	K           int        `json:"k"`
	SongCount   int        `json:"song_count"`
	Iterations  int        `json:"iterations"`
	Converged   bool       `json:"converged"`
	Silhouette  float64    `json:"silhouette"`
	Inertia     float64    `json:"inertia"`
	Snapshot    string     `gorm:"type:text" json:"snapshot,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ErrorLog    string     `json:"error_log,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for TrainJob.
func (TrainJob) TableName() string {
	return "train_jobs"
}
