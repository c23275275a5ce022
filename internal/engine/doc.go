// Package engine wraps the external super-resolution binary.
//
// The engine is treated as an opaque executable: this package builds its
// argument contract, runs it once per image under a hard timeout, and
// classifies the outcome (missing binary, timeout, non-zero exit, missing or
// empty output). Retry policy belongs to the scheduler, not here.
package engine
