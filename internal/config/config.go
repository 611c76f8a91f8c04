package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Database selects the persistence backend.
type Database struct {
	Driver string `toml:"driver"`
	// Path is a file path for sqlite or a connection string for postgres.
	Path string `toml:"path"`
}

// Logging contains configuration for diagnostic output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Practice holds session defaults.
type Practice struct {
	User          string `toml:"user"`
	Count         int    `toml:"count"`
	Filter        string `toml:"filter"`
	LessonMinSize int    `toml:"lesson_min_size"`
}

// Reminder configures the periodic due report.
type Reminder struct {
	IntervalMinutes int `toml:"interval_minutes"`
	StartHour       int `toml:"start_hour"`
	EndHour         int `toml:"end_hour"`
}

// Config encapsulates all configuration values for lingo.
type Config struct {
	Database Database `toml:"database"`
	Logging  Logging  `toml:"log"`
	Practice Practice `toml:"practice"`
	Reminder Reminder `toml:"reminder"`
}

// DefaultConfigPath returns the default configuration file location,
// honouring XDG_CONFIG_HOME.
func DefaultConfigPath() (string, error) {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, "lingo", "config.toml"), nil
	}
	return ExpandPath("~/.config/lingo/config.toml")
}

// Load reads the configuration file at path (or the default location when
// path is empty), applies .env and environment overrides, and validates the
// result. A missing file is not an error; exists reports whether one was read.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	c := Default()

	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&c); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}
	c.applyEnv()

	if err := c.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := c.Validate(); err != nil {
		return nil, "", false, err
	}
	return &c, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		def, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = def
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// loadDotEnv reads .env from the working directory if present. Variables
// already set in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// applyEnv overlays LINGO_* environment variables.
func (c *Config) applyEnv() {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set("LINGO_DB", &c.Database.Path)
	set("LINGO_DB_DRIVER", &c.Database.Driver)
	set("LINGO_USER", &c.Practice.User)
	set("LINGO_LOG_LEVEL", &c.Logging.Level)
	set("LINGO_LOG_FORMAT", &c.Logging.Format)
}

// ExpandPath expands a leading ~ and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
