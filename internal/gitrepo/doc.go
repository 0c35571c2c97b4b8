// Package gitrepo contains helpers for interrogating Git repositories.
//
// It exposes Backend as the read-only query capability over a repository path,
// CommandLineBackend as its git-executable implementation, and Repository as
// the per-repository handle that report building consumes. All queries are
// side-effect-free on the repository.
package gitrepo
