// Package scan walks directory trees locating Git repository roots and
// records them in the registry cache.
//
// It exposes Scanner for the bounded-concurrency directory walk, Service for
// the scan-merge-save workflow, and CommandBuilder for wiring the scan Cobra
// command.
package scan
