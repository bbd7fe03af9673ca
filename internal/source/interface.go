package source

import (
	"context"

	"github.com/timmy/musicmatch/internal/domain"
)

// SongItem is one song with its raw analysis, as delivered by a source.
type SongItem struct {
	SourceID    string // Unique ID within the source
	Title       string
	Artist      string
	Album       string
	ImageURL    string
	PreviewURL  string
	ExternalURL string
	DurationMs  int
	Descriptors domain.RawDescriptors
}

// Source yields song descriptors in pages.
type Source interface {
	// GetSourceID returns the stable identifier stored as the song's source_type.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	GetDisplayName() string

	// FetchBatch fetches up to limit items starting at cursor ("" for the first page).
	// nextCursor is empty once the source is exhausted.
	FetchBatch(ctx context.Context, cursor string, limit int) (items []SongItem, nextCursor string, err error)
}
