// Package config loads, normalizes, and validates geotag configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates every tolerance the inference
// engine depends on. The Config type centralizes the knobs the CLI and engine
// need: timeline location, interpolation tolerances, augmentation duplicate
// thresholds, batch sizing, and log routing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
