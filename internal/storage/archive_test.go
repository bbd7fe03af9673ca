package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/timmy/musicmatch/internal/domain"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Upload(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return fmt.Errorf("size %d, read %d", size, len(b))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	m.types[key] = contentType
	return nil
}

func (m *memStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStore) GetURL(key string) string { return "mem://" + key }

func TestSnapshotArchive_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	archive := NewSnapshotArchive(store, "/snapshots/")

	label := 1
	labelled := domain.Song{ID: "s1", Title: "One", ClusterID: &label}
	labelled.SetFeatures(domain.FeatureVector{}.With(domain.FeatureLoudness, 0.6))
	unlabelled := domain.Song{ID: "s2", Title: "Two"}

	job := &domain.TrainJob{ID: "job", Silhouette: 0.42, Inertia: 3.5}
	clusters := []domain.Cluster{{ID: 0, Mood: "Chill"}, {ID: 1, Mood: "Party"}}
	snap := NewSnapshot("v7", job, clusters, []domain.Song{labelled, unlabelled})

	url, err := archive.Save(ctx, snap)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if url != "mem://snapshots/v7.json" {
		t.Errorf("url = %q", url)
	}
	if store.types["snapshots/v7.json"] != "application/json" {
		t.Errorf("content type = %q", store.types["snapshots/v7.json"])
	}

	got, err := archive.Load(ctx, "v7")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Songs) != 1 || got.Songs[0].ClusterID != 1 || got.Songs[0].Features[domain.FeatureLoudness] != 0.6 {
		t.Errorf("songs = %+v", got.Songs)
	}
	if len(got.Clusters) != 2 || got.Silhouette != 0.42 || got.Job.ID != "job" {
		t.Errorf("snapshot = %+v", got)
	}

	if _, err := archive.Load(ctx, "missing"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Load(missing) error = %v", err)
	}
	if _, err := archive.Save(ctx, &Snapshot{}); err == nil {
		t.Error("expected error for empty version")
	}
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		endpoint string
		ssl      bool
		want     string
	}{
		{"localhost:9000", false, "http://localhost:9000"},
		{"https://acct.r2.cloudflarestorage.com/bucket", true, "https://acct.r2.cloudflarestorage.com"},
		{"http://minio:9000/", true, "https://minio:9000"},
	}
	for _, tt := range tests {
		if got := endpointURL(tt.endpoint, tt.ssl); got != tt.want {
			t.Errorf("endpointURL(%q, %v) = %q, want %q", tt.endpoint, tt.ssl, got, tt.want)
		}
	}
	if detectStorageType("https://acct.r2.cloudflarestorage.com") != StorageTypeR2 {
		t.Error("r2 endpoint not detected")
	}
	if detectStorageType("s3.us-west-2.amazonaws.com") != StorageTypeS3 {
		t.Error("s3 endpoint not detected")
	}
}
