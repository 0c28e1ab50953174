package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

type Config struct {
	Dir         string
	StateDir    string
	DBPath      string
	KVDir       string
	LogPath     string
	Store       string
	LogLevel    string
	CatalogPath string
}

// fileConfig mirrors .trackboard/config.yaml. Every field is optional.
type fileConfig struct {
	Store    string `yaml:"store"`
	LogLevel string `yaml:"log_level"`
	Catalog  string `yaml:"catalog"`
}

// Overrides carries flag values; empty fields keep the file or default value.
type Overrides struct {
	Store    string
	LogLevel string
}

func New(dir string, overrides Overrides) (Config, error) {
	if dir == "" {
		return Config{}, fmt.Errorf("data directory is required")
	}
	stateDir := filepath.Join(dir, ".trackboard")
	cfg := Config{
		Dir:         dir,
		StateDir:    stateDir,
		DBPath:      filepath.Join(stateDir, "trackboard.db"),
		KVDir:       filepath.Join(stateDir, "kv"),
		LogPath:     filepath.Join(stateDir, "trackboard.log"),
		Store:       StoreSQLite,
		LogLevel:    "warn",
		CatalogPath: filepath.Join(stateDir, "tracks.yaml"),
	}

	fc, err := readFile(filepath.Join(stateDir, "config.yaml"))
	if err != nil {
		return Config{}, err
	}
	if fc.Store != "" {
		cfg.Store = fc.Store
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.Catalog != "" {
		cfg.CatalogPath = fc.Catalog
		if !filepath.IsAbs(cfg.CatalogPath) {
			cfg.CatalogPath = filepath.Join(dir, cfg.CatalogPath)
		}
	}
	if overrides.Store != "" {
		cfg.Store = overrides.Store
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case StoreSQLite, StoreFile:
	default:
		return Config{}, fmt.Errorf("unsupported store %q (want %s|%s)", cfg.Store, StoreSQLite, StoreFile)
	}
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return fc, nil
}
