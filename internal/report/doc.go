// Package report aggregates per-repository git state into an ordered report.
// It exposes the report Builder, the Entry and Report shapes consumed by
// renderers, and the status command builder.
package report
