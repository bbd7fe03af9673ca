package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/timmy/musicmatch/internal/config"
	"github.com/timmy/musicmatch/internal/logger"
)

func TestNew_LocalOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Database:   config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "app.db"), AutoMigrate: true},
		Sources:    config.SourcesConfig{Staging: config.StagingConfig{BasePath: dir}},
		Clustering: config.ClusteringConfig{K: 3},
	}

	a, err := New(context.Background(), cfg, logger.GetDefault())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if a.Qdrant != nil {
		t.Error("qdrant must stay disabled")
	}
	if len(a.Recommendations.Questions()) == 0 {
		t.Error("default quiz bank not loaded")
	}

	tests := []struct {
		kind, name string
		wantID     string
		wantErr    bool
	}{
		{"staging", "demo", "staging:demo", false},
		{"staging", "", "", true},
		{"analyzer", "indie", "analyzer:indie", false},
		{"ftp", "x", "", true},
	}
	for _, tt := range tests {
		src, err := a.Source(tt.kind, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("Source(%q, %q) error = %v", tt.kind, tt.name, err)
			continue
		}
		if err == nil && src.GetSourceID() != tt.wantID {
			t.Errorf("Source(%q, %q) id = %q, want %q", tt.kind, tt.name, src.GetSourceID(), tt.wantID)
		}
	}
}
