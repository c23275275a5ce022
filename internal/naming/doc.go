// Package naming computes deterministic output locations for processed images
// and per-directory PDFs, and guarantees injective output paths via explicit
// collision resolution.
package naming
