// Package assemble collects the successful outputs of each directory group
// and turns them into one PDF per directory, page order matching discovery
// order. Directories are independent: one failed assembly never blocks or
// fails another.
package assemble
