// Package registry persists the machine-wide record of discovered repository
// roots as a line-delimited cache file.
//
// It exposes RepositorySet for set semantics over canonical paths, Store for
// loading, merging, and atomically saving the cache, and command builders for
// the list and info Cobra commands.
package registry
