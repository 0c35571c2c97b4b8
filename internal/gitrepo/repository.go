package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

const (
	backendNotConfiguredMessageConstant = "repository backend not configured"
	stashLineTemplateConstant           = "stash@{%d}: %s"
	secondsPerHourConstant              = 3600
)

// UnknownCommitAgeHours marks repositories whose last commit time cannot be resolved.
const UnknownCommitAgeHours int64 = math.MaxInt64

// ErrBackendNotConfigured indicates a repository handle was constructed without a backend.
var ErrBackendNotConfigured = errors.New(backendNotConfiguredMessageConstant)

// Repository is a read-only handle over a single registered repository path.
type Repository struct {
	repositoryPath string
	backend        Backend
	clock          Clock
}

// NewRepository constructs a repository handle. A nil clock defaults to the system clock.
func NewRepository(repositoryPath string, backend Backend, clock Clock) (*Repository, error) {
	if backend == nil {
		return nil, ErrBackendNotConfigured
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Repository{repositoryPath: repositoryPath, backend: backend, clock: clock}, nil
}

// Path returns the repository root path the handle addresses.
func (repository *Repository) Path() string {
	return repository.repositoryPath
}

// Open verifies the handle addresses an accessible git work tree.
func (repository *Repository) Open(executionContext context.Context) error {
	return repository.backend.CheckWorkTree(executionContext, repository.repositoryPath)
}

// LastCommitAgeHours reports whole hours elapsed since the tip commit.
// Repositories without a resolvable commit yield UnknownCommitAgeHours.
func (repository *Repository) LastCommitAgeHours(executionContext context.Context) int64 {
	commitTimestamp, commitFound, lookupError := repository.backend.HeadCommitTimestamp(executionContext, repository.repositoryPath)
	if lookupError != nil || !commitFound {
		return UnknownCommitAgeHours
	}

	elapsedSeconds := repository.clock.Now().Unix() - commitTimestamp.Unix()
	return elapsedSeconds / secondsPerHourConstant
}

// ShortStatus summarizes the working tree as a two-character code taken from
// the first reported entry. A working tree without reportable entries yields
// CleanStatusCode.
func (repository *Repository) ShortStatus(executionContext context.Context) (string, error) {
	statusOptions := StatusOptions{Show: StatusShowWorktreeOnly, IncludeUntracked: true}
	statusEntries, statusError := repository.backend.Statuses(executionContext, repository.repositoryPath, statusOptions)
	if statusError != nil {
		return "", statusError
	}
	if len(statusEntries) == 0 {
		return CleanStatusCode, nil
	}
	return statusEntries[0].Code(), nil
}

// FullStatus lists index and working tree changes as "<code> <path>" lines.
func (repository *Repository) FullStatus(executionContext context.Context) ([]string, error) {
	statusOptions := StatusOptions{Show: StatusShowIndexAndWorktree, IncludeUntracked: true}
	statusEntries, statusError := repository.backend.Statuses(executionContext, repository.repositoryPath, statusOptions)
	if statusError != nil {
		return nil, statusError
	}

	statusLines := make([]string, 0, len(statusEntries))
	for _, statusEntry := range statusEntries {
		statusLines = append(statusLines, statusEntry.String())
	}
	return statusLines, nil
}

// StashList lists stash entries as "stash@{<index>}: <message>" lines.
func (repository *Repository) StashList(executionContext context.Context) ([]string, error) {
	stashEntries, stashError := repository.backend.StashEntries(executionContext, repository.repositoryPath)
	if stashError != nil {
		return nil, stashError
	}

	stashLines := make([]string, 0, len(stashEntries))
	for _, stashEntry := range stashEntries {
		stashLines = append(stashLines, fmt.Sprintf(stashLineTemplateConstant, stashEntry.Index, stashEntry.Message))
	}
	return stashLines, nil
}
