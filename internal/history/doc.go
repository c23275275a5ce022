// Package history persists finished runs to a SQLite database under the
// log directory so past runs can be listed and inspected from the CLI.
package history
