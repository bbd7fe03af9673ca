package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
clustering:
  k: 6
  seed: 7
recommend:
  top_n_songs: 15
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Clustering.K != 6 || cfg.Clustering.Seed != 7 {
		t.Errorf("Clustering = %+v", cfg.Clustering)
	}
	if cfg.Clustering.MaxIterations != 300 {
		t.Errorf("Clustering.MaxIterations = %d, want default 300", cfg.Clustering.MaxIterations)
	}
	if cfg.Recommend.TopNSongs != 15 || cfg.Recommend.AdjacentCount != 2 {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Analyzer.Timeout != 30*time.Second {
		t.Errorf("Analyzer.Timeout = %v, want 30s", cfg.Analyzer.Timeout)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "qdrant:\n  enabled: true\n")
	t.Setenv("QDRANT_HOST", "qdrant.internal")
	t.Setenv("ANALYZER_API_KEY", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Qdrant.Host != "qdrant.internal" || !cfg.Qdrant.Enabled {
		t.Errorf("Qdrant = %+v", cfg.Qdrant)
	}
	if cfg.Analyzer.APIKey != "secret" {
		t.Errorf("Analyzer.APIKey = %q", cfg.Analyzer.APIKey)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad driver", content: "database:\n  driver: oracle\n"},
		{name: "zero k", content: "clustering:\n  k: 0\n"},
		{name: "inverted k range", content: "clustering:\n  auto_k: true\n  k_min: 9\n  k_max: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "sqlite path",
			cfg:  DatabaseConfig{Driver: "sqlite", Path: "./data/test.db"},
			want: "./data/test.db",
		},
		{
			name: "postgres url wins",
			cfg:  DatabaseConfig{Driver: "postgres", URL: "postgres://u:p@db:5432/x", Host: "ignored"},
			want: "postgres://u:p@db:5432/x",
		},
		{
			name: "postgres parts",
			cfg: DatabaseConfig{
				Driver: "postgres", Host: "db", Port: 5432,
				User: "app", Password: "p@ss", DBName: "music", SSLMode: "require",
			},
			want: "postgres://app:p%40ss@db:5432/music?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}
