package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory configuration.
type Paths struct {
	TimelineFile string   `toml:"timeline_file"`
	PhotoRoots   []string `toml:"photo_roots"`
	LogDir       string   `toml:"log_dir"`
	DatabasePath string   `toml:"database_path"`
}

// Interpolation contains tolerances for the geolocation inference engine.
type Interpolation struct {
	// ToleranceMinutes bounds the direct timeline match; bracketing records
	// are searched within twice this window on each side.
	ToleranceMinutes float64 `toml:"tolerance_minutes"`
	// MaxFallbackHours caps the widest escalation window of the closest-record
	// fallback search.
	MaxFallbackHours float64 `toml:"max_fallback_hours"`
	// AllowUnboundedFallback permits a closest-record search with no time
	// bound. Off by default: assigning a location across an extreme time gap
	// is usually wrong.
	AllowUnboundedFallback bool    `toml:"allow_unbounded_fallback"`
	SecondaryRadiusMeters  float64 `toml:"secondary_radius_meters"`
	SecondaryTimeWindowHrs float64 `toml:"secondary_time_window_hours"`
}

// Augmentation contains duplicate-detection thresholds for the timeline merge.
type Augmentation struct {
	ExactTimeToleranceMinutes     float64 `toml:"exact_time_tolerance_minutes"`
	ExactDistanceMeters           float64 `toml:"exact_distance_meters"`
	ProximityTimeToleranceMinutes float64 `toml:"proximity_time_tolerance_minutes"`
	ProximityDistanceMeters       float64 `toml:"proximity_distance_meters"`
	CreateBackup                  bool    `toml:"create_backup"`
}

// Batch contains worker-pool sizing for the per-image processing loop.
type Batch struct {
	Size    int `toml:"size"`
	Workers int `toml:"workers"`
	PauseMs int `toml:"pause_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for geotag.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Interpolation Interpolation `toml:"interpolation"`
	Augmentation  Augmentation  `toml:"augmentation"`
	Batch         Batch         `toml:"batch"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/geotag/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path and the third reports whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("geotag.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories geotag writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if strings.TrimSpace(c.Paths.DatabasePath) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.DatabasePath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading tilde against the home directory and returns
// the cleaned absolute path.
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
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
