package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lookloom/media_vault/pkg/storage"
)

// Config captures service level configuration loaded from config.yaml.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Storage storage.Config `yaml:"storage"`
	Trash   TrashConfig    `yaml:"trash"`
	Upload  UploadConfig   `yaml:"upload"`
	CORS    CORSConfig     `yaml:"cors"`
	Redis   RedisConfig    `yaml:"redis"`
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// TrashConfig defines the soft-delete retention window.
type TrashConfig struct {
	// RetentionHours is how long a trashed object stays restorable. The S3
	// backend additionally installs a bucket lifecycle rule expiring the
	// trash prefix after the same window rounded up to whole days.
	RetentionHours int `yaml:"retention_hours"`

	// ListLimit caps the single-page trash listing returned to clients.
	ListLimit int `yaml:"list_limit"`

	// PurgePageSize bounds one list-and-batch-delete round trip during a
	// bulk purge.
	PurgePageSize int `yaml:"purge_page_size"`
}

// UploadConfig defines file upload constraints.
type UploadConfig struct {
	MaxSize      int64    `yaml:"max_size"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// CORSConfig defines CORS middleware settings.
type CORSConfig struct {
	AllowOrigin      string `yaml:"allow_origin"`
	AllowMethods     string `yaml:"allow_methods"`
	AllowHeaders     string `yaml:"allow_headers"`
	AllowCredentials bool   `yaml:"allow_credentials"`
}

// RedisConfig defines Redis connection settings for per-key locking.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Load reads a YAML configuration file from the provided path.
// It searches in the current working directory first, then next to the binary executable.
func Load(name string) (*Config, error) {
	cfg := defaultConfig()

	configPath := findConfigFile(name)
	if configPath == "" {
		log.Printf("Warning: config file %q not found, using defaults", name)
		return cfg, nil
	}

	log.Printf("Loading config from: %s", configPath)
	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	var parsed Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&parsed)
	return &parsed, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Storage: storage.DefaultConfig(),
		Trash: TrashConfig{
			RetentionHours: 24,
			ListLimit:      100,
			PurgePageSize:  1000,
		},
		Upload: UploadConfig{
			MaxSize: 500 * 1024 * 1024, // 500MB, showcase videos included
			AllowedTypes: []string{
				"image/jpeg",
				"image/png",
				"image/webp",
				"image/heic",
				"video/mp4",
				"video/webm",
			},
		},
		CORS: CORSConfig{
			AllowOrigin:      "*",
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "*",
			AllowCredentials: false,
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.Local.BasePath == "" {
		cfg.Storage.Local.BasePath = "data/objects"
	}
	if cfg.Trash.RetentionHours <= 0 {
		cfg.Trash.RetentionHours = 24
	}
	if cfg.Trash.ListLimit <= 0 {
		cfg.Trash.ListLimit = 100
	}
	if cfg.Trash.PurgePageSize <= 0 || cfg.Trash.PurgePageSize > storage.MaxListPageSize {
		cfg.Trash.PurgePageSize = storage.MaxListPageSize
	}
	if cfg.Upload.MaxSize <= 0 {
		cfg.Upload.MaxSize = 500 * 1024 * 1024
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = defaultConfig().Upload.AllowedTypes
	}
}

// findConfigFile searches for a config file in the current directory first,
// then next to the binary executable. Returns the full path or empty string.
func findConfigFile(name string) string {
	// 1. Current working directory
	if _, err := os.Stat(name); err == nil {
		abs, _ := filepath.Abs(name)
		return abs
	}

	// 2. Next to the binary executable
	exe, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exe)
		candidate := filepath.Join(exeDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
