package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvDataDir overrides the default data directory.
	EnvDataDir      = "DIDATHING_DATA_DIR"
	defaultLogLevel = "warn"
)

type Config struct {
	DataDir   string
	DBPath    string
	PrefsPath string
	LogLevel  string
}

// fileConfig is the optional config.yaml stored in the data directory.
type fileConfig struct {
	LogLevel string `yaml:"log_level"`
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:   dataDir,
		DBPath:    filepath.Join(dataDir, "didathing.db"),
		PrefsPath: filepath.Join(dataDir, "preferences.yaml"),
		LogLevel:  defaultLogLevel,
	}, nil
}

// Load builds a Config for dataDir (or the default directory when empty) and
// applies config.yaml when present. A non-empty logLevel wins over the file.
func Load(dataDir, logLevel string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return Config{}, err
		}
		dataDir = dir
	}
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	payload, err := os.ReadFile(filepath.Join(dataDir, "config.yaml"))
	switch {
	case err == nil:
		file := fileConfig{}
		if err := yaml.Unmarshal(payload, &file); err != nil {
			return Config{}, fmt.Errorf("decode config.yaml: %w", err)
		}
		if file.LogLevel != "" {
			cfg.LogLevel = file.LogLevel
		}
	case !os.IsNotExist(err):
		return Config{}, fmt.Errorf("read config.yaml: %w", err)
	}
	if strings.TrimSpace(logLevel) != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func DefaultDataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "didathing"), nil
}
