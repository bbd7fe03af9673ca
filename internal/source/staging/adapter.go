package staging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/timmy/musicmatch/internal/domain"
	"github.com/timmy/musicmatch/internal/source"
)

// ManifestFileName is the JSONL manifest file name in staging sources.
const ManifestFileName = "manifest.jsonl"

// ManifestItem is one line of manifest.jsonl: song metadata plus its analyzer output.
type ManifestItem struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Artist      string                `json:"artist"`
	Album       string                `json:"album"`
	ImageURL    string                `json:"image_url"`
	PreviewURL  string                `json:"preview_url"`
	ExternalURL string                `json:"external_url"`
	DurationMs  int                   `json:"duration_ms"`
	Features    domain.RawDescriptors `json:"features"`
}

// Adapter implements source.Source over a staging directory of analyzed songs.
type Adapter struct {
	basePath string
	sourceID string
	items    []source.SongItem
	skipped  int
	loaded   bool
}

// NewAdapter creates a staging adapter reading <basePath>/<sourceID>/manifest.jsonl.
func NewAdapter(basePath, sourceID string) *Adapter {
	return &Adapter{
		basePath: basePath,
		sourceID: sourceID,
	}
}

// GetSourceID returns the source identifier with a "staging:" prefix.
func (a *Adapter) GetSourceID() string {
	return "staging:" + a.sourceID
}

// GetDisplayName returns a display name for the staging source.
func (a *Adapter) GetDisplayName() string {
	return fmt.Sprintf("Staging (%s)", a.sourceID)
}

// FetchBatch returns items in source ID order; the cursor is an index into that order.
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.SongItem, string, error) {
	if err := a.ensureLoaded(); err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	start := 0
	if cursor != "" {
		var err error
		start, err = strconv.Atoi(cursor)
		if err != nil || start < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q", cursor)
		}
	}
	if start >= len(a.items) {
		return []source.SongItem{}, "", nil
	}
	if limit <= 0 {
		limit = len(a.items)
	}

	end := min(start+limit, len(a.items))
	next := ""
	if end < len(a.items) {
		next = strconv.Itoa(end)
	}
	return a.items[start:end], next, nil
}

// GetTotalCount returns the number of usable items in the manifest.
func (a *Adapter) GetTotalCount() (int, error) {
	if err := a.ensureLoaded(); err != nil {
		return 0, err
	}
	return len(a.items), nil
}

// Skipped returns how many manifest lines were dropped as malformed or incomplete.
func (a *Adapter) Skipped() int {
	return a.skipped
}

func (a *Adapter) ensureLoaded() error {
	if a.loaded {
		return nil
	}
	if err := a.loadItems(); err != nil {
		return fmt.Errorf("failed to load staging items: %w", err)
	}
	a.loaded = true
	return nil
}

func (a *Adapter) loadItems() error {
	manifestPath := filepath.Join(a.basePath, a.sourceID, ManifestFileName)

	file, err := os.Open(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("manifest file not found: %s", manifestPath)
		}
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	a.items = []source.SongItem{}
	a.skipped = 0
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item ManifestItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			a.skipped++
			continue
		}
		if item.ID == "" || item.Title == "" || seen[item.ID] {
			a.skipped++
			continue
		}
		seen[item.ID] = true

		artist := item.Artist
		if artist == "" {
			artist = "Unknown Artist"
		}
		a.items = append(a.items, source.SongItem{
			SourceID:    item.ID,
			Title:       item.Title,
			Artist:      artist,
			Album:       item.Album,
			ImageURL:    item.ImageURL,
			PreviewURL:  item.PreviewURL,
			ExternalURL: item.ExternalURL,
			DurationMs:  item.DurationMs,
			Descriptors: item.Features,
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading manifest: %w", err)
	}

	sort.Slice(a.items, func(i, j int) bool {
		return a.items[i].SourceID < a.items[j].SourceID
	})
	return nil
}

// ListStagingSources lists subdirectories of basePath that contain a manifest.
func ListStagingSources(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var sources []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(basePath, entry.Name(), ManifestFileName)); err == nil {
			sources = append(sources, entry.Name())
		}
	}
	return sources, nil
}
