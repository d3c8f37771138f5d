// Package config loads, normalizes, and validates highlighter configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HIGHLIGHTER_FFPROBE. The Config type centralizes every knob the clip core
// and the CLI need: where the catalog and scrubbing strips live, which media
// tools to execute, and how long a probe may run.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
