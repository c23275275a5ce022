// Package services defines shared utilities consumed across components:
// sentinel error markers with wrapping helpers, and context annotation for
// run-scoped logging fields.
package services
