package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/timmy/musicmatch/internal/domain"
)

// ErrObjectNotFound is returned when a requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// SongAssignment is the archived form of a song: its features and cluster label.
type SongAssignment struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Artist    string               `json:"artist"`
	ClusterID int                  `json:"cluster_id"`
	Features  domain.FeatureVector `json:"features"`
}

// Snapshot is a self-contained record of one published cluster model.
type Snapshot struct {
	Version    string           `json:"version"`
	CreatedAt  time.Time        `json:"created_at"`
	Job        *domain.TrainJob `json:"job,omitempty"`
	Clusters   []domain.Cluster `json:"clusters"`
	Songs      []SongAssignment `json:"songs"`
	Silhouette float64          `json:"silhouette"`
	Inertia    float64          `json:"inertia"`
}

// ObjectStorage is the subset of object-store operations the archive needs.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	GetURL(key string) string
}

// SnapshotArchive stores snapshots as JSON objects under a key prefix.
type SnapshotArchive struct {
	store  ObjectStorage
	prefix string
}

// NewSnapshotArchive creates an archive writing to <prefix>/<version>.json.
func NewSnapshotArchive(store ObjectStorage, prefix string) *SnapshotArchive {
	return &SnapshotArchive{store: store, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key for a snapshot version.
func (a *SnapshotArchive) Key(version string) string {
	return path.Join(a.prefix, version+".json")
}

// Save uploads snap and returns its URL.
func (a *SnapshotArchive) Save(ctx context.Context, snap *Snapshot) (string, error) {
	if snap.Version == "" {
		return "", errors.New("snapshot version is required")
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := a.Key(snap.Version)
	if err := a.store.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return "", err
	}
	return a.store.GetURL(key), nil
}

// Load downloads and decodes the snapshot with the given version.
func (a *SnapshotArchive) Load(ctx context.Context, version string) (*Snapshot, error) {
	rc, err := a.store.Download(ctx, a.Key(version))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var snap Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", version, err)
	}
	return &snap, nil
}

// NewSnapshot assembles the archive record for songs that already carry cluster labels.
// Songs without a label are left out.
func NewSnapshot(version string, job *domain.TrainJob, clusters []domain.Cluster, songs []domain.Song) *Snapshot {
	snap := &Snapshot{
		Version:   version,
		CreatedAt: time.Now().UTC(),
		Job:       job,
		Clusters:  clusters,
		Songs:     make([]SongAssignment, 0, len(songs)),
	}
	if job != nil {
		snap.Silhouette = job.Silhouette
		snap.Inertia = job.Inertia
	}
	for _, s := range songs {
		if s.ClusterID == nil {
			continue
		}
		snap.Songs = append(snap.Songs, SongAssignment{
			ID:        s.ID,
			Title:     s.Title,
			Artist:    s.Artist,
			ClusterID: *s.ClusterID,
			Features:  s.Features(),
		})
	}
	return snap
}
