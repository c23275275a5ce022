// Package logging builds the slog loggers used across Magnify.
//
// Two handler formats are supported: a compact console format where the
// component attribute prefixes the message, and plain JSON for machine
// consumption. Helpers attach standardized field keys and derive run/directory
// attributes from context so every component logs consistently.
package logging
