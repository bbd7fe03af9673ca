package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Qdrant     QdrantConfig     `mapstructure:"qdrant"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer"`
	Sources    SourcesConfig    `mapstructure:"sources"`
	Clustering ClusteringConfig `mapstructure:"clustering"`
	Recommend  RecommendConfig  `mapstructure:"recommend"`
	Quiz       QuizConfig       `mapstructure:"quiz"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// DatabaseConfig selects the GORM driver and its connection settings.
// Driver is "sqlite" (Path) or "postgres" (URL, or Host/Port/User/Password/DBName/SSLMode).
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver != "postgres" {
		return c.Path
	}
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.DBName,
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

type QdrantConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
}

// StorageConfig configures the S3-compatible bucket that keeps snapshot archives.
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	Prefix    string `mapstructure:"prefix"`
}

// AnalyzerConfig points at the remote audio descriptor service.
type AnalyzerConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	PageSize   int           `mapstructure:"page_size"`
}

type SourcesConfig struct {
	Staging StagingConfig `mapstructure:"staging"`
}

type StagingConfig struct {
	BasePath string `mapstructure:"base_path"`
}

type ClusteringConfig struct {
	K             int    `mapstructure:"k"`
	AutoK         bool   `mapstructure:"auto_k"`
	KMin          int    `mapstructure:"k_min"`
	KMax          int    `mapstructure:"k_max"`
	MaxIterations int    `mapstructure:"max_iterations"`
	Seed          uint64 `mapstructure:"seed"`
}

type RecommendConfig struct {
	TopNSongs     int `mapstructure:"top_n_songs"`
	AdjacentCount int `mapstructure:"adjacent_count"`
	SampleSize    int `mapstructure:"sample_size"`
	SimilarLimit  int `mapstructure:"similar_limit"`
}

type QuizConfig struct {
	BankPath string `mapstructure:"bank_path"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and deployment-specific endpoints
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("database.password", "DATABASE_PASSWORD")
	_ = v.BindEnv("qdrant.host", "QDRANT_HOST")
	_ = v.BindEnv("qdrant.port", "QDRANT_PORT")
	_ = v.BindEnv("qdrant.api_key", "QDRANT_API_KEY")
	_ = v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	_ = v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	_ = v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	_ = v.BindEnv("analyzer.base_url", "ANALYZER_BASE_URL")
	_ = v.BindEnv("analyzer.api_key", "ANALYZER_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/musicmatch.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "musicmatch")
	v.SetDefault("database.dbname", "musicmatch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("qdrant.enabled", false)
	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.collection", "songs")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "musicmatch")
	v.SetDefault("storage.prefix", "snapshots")

	v.SetDefault("analyzer.base_url", "http://localhost:8000")
	v.SetDefault("analyzer.timeout", "30s")
	v.SetDefault("analyzer.retry_count", 3)
	v.SetDefault("analyzer.page_size", 100)

	v.SetDefault("sources.staging.base_path", "./data/staging")

	v.SetDefault("clustering.k", 8)
	v.SetDefault("clustering.auto_k", false)
	v.SetDefault("clustering.k_min", 4)
	v.SetDefault("clustering.k_max", 12)
	v.SetDefault("clustering.max_iterations", 300)
	v.SetDefault("clustering.seed", 42)

	v.SetDefault("recommend.top_n_songs", 20)
	v.SetDefault("recommend.adjacent_count", 2)
	v.SetDefault("recommend.sample_size", 5)
	v.SetDefault("recommend.similar_limit", 10)

	v.SetDefault("quiz.bank_path", "")
}

// Validate rejects settings the training and matching code cannot work with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Clustering.K < 1 {
		return fmt.Errorf("clustering.k must be positive, got %d", c.Clustering.K)
	}
	if c.Clustering.AutoK && c.Clustering.KMax < c.Clustering.KMin {
		return fmt.Errorf("clustering.k_max (%d) below k_min (%d)", c.Clustering.KMax, c.Clustering.KMin)
	}
	if c.Recommend.TopNSongs < 0 || c.Recommend.AdjacentCount < 0 || c.Recommend.SampleSize < 0 {
		return fmt.Errorf("recommend limits must not be negative")
	}
	return nil
}
