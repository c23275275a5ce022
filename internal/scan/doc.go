// Package scan enumerates image files for batch processing.
//
// Listings are non-recursive by default, filtered to a fixed set of image
// extensions, and returned in a stable order so downstream PDF page order is
// deterministic regardless of worker completion order.
package scan
