package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateInterpolation(); err != nil {
		return err
	}
	if err := c.validateAugmentation(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.TimelineFile) == "" {
		return errors.New("paths.timeline_file must be set")
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		return errors.New("paths.database_path must be set")
	}
	return nil
}

func (c *Config) validateInterpolation() error {
	if c.Interpolation.ToleranceMinutes <= 0 {
		return errors.New("interpolation.tolerance_minutes must be positive")
	}
	if c.Interpolation.MaxFallbackHours <= 0 {
		return errors.New("interpolation.max_fallback_hours must be positive")
	}
	if c.Interpolation.MaxFallbackHours*60 < c.Interpolation.ToleranceMinutes {
		return errors.New("interpolation.max_fallback_hours must cover interpolation.tolerance_minutes")
	}
	if c.Interpolation.SecondaryRadiusMeters <= 0 {
		return errors.New("interpolation.secondary_radius_meters must be positive")
	}
	if c.Interpolation.SecondaryTimeWindowHrs <= 0 {
		return errors.New("interpolation.secondary_time_window_hours must be positive")
	}
	return nil
}

func (c *Config) validateAugmentation() error {
	if err := ensurePositive(map[string]float64{
		"augmentation.exact_time_tolerance_minutes":     c.Augmentation.ExactTimeToleranceMinutes,
		"augmentation.exact_distance_meters":            c.Augmentation.ExactDistanceMeters,
		"augmentation.proximity_time_tolerance_minutes": c.Augmentation.ProximityTimeToleranceMinutes,
		"augmentation.proximity_distance_meters":        c.Augmentation.ProximityDistanceMeters,
	}); err != nil {
		return err
	}
	if c.Augmentation.ProximityTimeToleranceMinutes < c.Augmentation.ExactTimeToleranceMinutes {
		return errors.New("augmentation.proximity_time_tolerance_minutes must be at least the exact tolerance")
	}
	if c.Augmentation.ProximityDistanceMeters < c.Augmentation.ExactDistanceMeters {
		return errors.New("augmentation.proximity_distance_meters must be at least the exact distance")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositive(values map[string]float64) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
