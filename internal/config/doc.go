// Package config loads, normalizes, and validates Magnify configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MAGNIFY_ENGINE. The Config type centralizes every knob the CLI and run
// controller need, so downstream code receives sanitized paths and clear
// validation errors.
package config
