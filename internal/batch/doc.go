// Package batch plans and executes upscaling runs. It turns a set of input
// directories into a fixed item inventory, drives a bounded worker pool over
// it with fair cross-directory dispatch, and exposes a small state machine
// (idle, running, stopping, stopped, completed) with live progress
// snapshots. Stopping is cooperative: engine processes already launched are
// never killed.
package batch
