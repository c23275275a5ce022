// Package preflight verifies the host is ready for a run: the engine binary
// resolves, the output and log directories are writable, and the configured
// models directory holds usable models.
package preflight
