package service

import (
	"fmt"
	"sync/atomic"

	"github.com/timmy/musicmatch/internal/clustering"
	"github.com/timmy/musicmatch/internal/projection"
)

// Snapshot is an immutable published model together with its projection basis.
// Readers hold a *Snapshot for the whole request and never see a half-swapped state.
type Snapshot struct {
	Model     *clustering.Model
	Projector *projection.Projector
}

// Version returns the model's snapshot version.
func (s *Snapshot) Version() string {
	if s == nil || s.Model == nil {
		return ""
	}
	return s.Model.Version
}

// NewSnapshot fits the projection basis for model and bundles the two.
func NewSnapshot(model *clustering.Model) (*Snapshot, error) {
	p, err := projection.FitModel(model)
	if err != nil {
		return nil, fmt.Errorf("failed to fit projection: %w", err)
	}
	return &Snapshot{Model: model, Projector: p}, nil
}

// SnapshotHolder publishes the current snapshot. Loads are lock-free.
type SnapshotHolder struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotHolder creates an empty holder.
func NewSnapshotHolder() *SnapshotHolder {
	return &SnapshotHolder{}
}

// Load returns the published snapshot, or nil before the first successful training.
func (h *SnapshotHolder) Load() *Snapshot {
	return h.current.Load()
}

// Store publishes s, replacing the previous snapshot.
func (h *SnapshotHolder) Store(s *Snapshot) {
	h.current.Store(s)
}
