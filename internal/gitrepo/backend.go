package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gitscope/internal/execshell"
)

const (
	revParseSubcommandConstant           = "rev-parse"
	insideWorkTreeFlagConstant           = "--is-inside-work-tree"
	insideWorkTreeExpectedOutputConstant = "true"
	statusSubcommandConstant             = "status"
	porcelainFormatFlagConstant          = "--porcelain=v2"
	nulTerminationFlagConstant           = "-z"
	untrackedFilesFlagTemplateConstant   = "--untracked-files=%s"
	untrackedFilesNormalValueConstant    = "normal"
	untrackedFilesNoValueConstant        = "no"
	ignoredFlagTemplateConstant          = "--ignored=%s"
	ignoredTraditionalValueConstant      = "traditional"
	ignoredNoValueConstant               = "no"
	logSubcommandConstant                = "log"
	logSingleCommitFlagConstant          = "-1"
	logCommitTimestampFormatConstant     = "--format=%ct"
	stashSubcommandConstant              = "stash"
	stashListSubcommandConstant          = "list"
	stashSubjectFormatConstant           = "--format=%gs"

	executorNotConfiguredMessageConstant = "git executor not configured"
	notInsideWorkTreeMessageConstant     = "path is not inside a git work tree"
	accessErrorTemplateConstant          = "%s failed for %s: %v"
	decimalBaseConstant                  = 10
	timestampBitSizeConstant             = 64
)

// OperationName identifies a repository query for error reporting.
type OperationName string

// Repository query operations.
const (
	OperationWorkTreeCheck OperationName = "work tree check"
	OperationStatusQuery   OperationName = "status query"
	OperationCommitLookup  OperationName = "commit lookup"
	OperationStashQuery    OperationName = "stash query"
)

var (
	// ErrExecutorNotConfigured indicates the backend was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrNotInsideWorkTree indicates the queried path does not belong to a git work tree.
	ErrNotInsideWorkTree = errors.New(notInsideWorkTreeMessageConstant)
)

// RepositoryAccessError reports a failed query against a repository.
type RepositoryAccessError struct {
	Operation      OperationName
	RepositoryPath string
	Cause          error
}

// Error describes the failed query.
func (accessError RepositoryAccessError) Error() string {
	return fmt.Sprintf(accessErrorTemplateConstant, accessError.Operation, accessError.RepositoryPath, accessError.Cause)
}

// Unwrap exposes the underlying cause.
func (accessError RepositoryAccessError) Unwrap() error {
	return accessError.Cause
}

// Backend exposes the read-only git queries required by repository handles.
type Backend interface {
	CheckWorkTree(executionContext context.Context, repositoryPath string) error
	Statuses(executionContext context.Context, repositoryPath string, options StatusOptions) ([]StatusEntry, error)
	HeadCommitTimestamp(executionContext context.Context, repositoryPath string) (time.Time, bool, error)
	StashEntries(executionContext context.Context, repositoryPath string) ([]StashEntry, error)
}

// CommandLineBackend implements Backend by shelling out to the git executable.
type CommandLineBackend struct {
	executor GitExecutor
}

// NewCommandLineBackend constructs a git-executable backend.
func NewCommandLineBackend(executor GitExecutor) (*CommandLineBackend, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &CommandLineBackend{executor: executor}, nil
}

// ResolveBackend returns the provided backend or constructs a shell-backed default.
func ResolveBackend(existing Backend, logger *zap.Logger, eventObservers ...execshell.CommandEventObserver) (Backend, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, eventObservers...)
	if creationError != nil {
		return nil, creationError
	}
	return NewCommandLineBackend(shellExecutor)
}

// CheckWorkTree verifies the path addresses a git work tree.
func (backend *CommandLineBackend) CheckWorkTree(executionContext context.Context, repositoryPath string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, insideWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := backend.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryAccessError{Operation: OperationWorkTreeCheck, RepositoryPath: repositoryPath, Cause: executionError}
	}
	if strings.TrimSpace(executionResult.StandardOutput) != insideWorkTreeExpectedOutputConstant {
		return RepositoryAccessError{Operation: OperationWorkTreeCheck, RepositoryPath: repositoryPath, Cause: ErrNotInsideWorkTree}
	}
	return nil
}

// Statuses queries working tree and index state according to the options.
func (backend *CommandLineBackend) Statuses(executionContext context.Context, repositoryPath string, options StatusOptions) ([]StatusEntry, error) {
	untrackedValue := untrackedFilesNormalValueConstant
	if !options.IncludeUntracked {
		untrackedValue = untrackedFilesNoValueConstant
	}
	ignoredValue := ignoredNoValueConstant
	if options.IncludeIgnored {
		ignoredValue = ignoredTraditionalValueConstant
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			statusSubcommandConstant,
			porcelainFormatFlagConstant,
			nulTerminationFlagConstant,
			fmt.Sprintf(untrackedFilesFlagTemplateConstant, untrackedValue),
			fmt.Sprintf(ignoredFlagTemplateConstant, ignoredValue),
		},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := backend.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil, RepositoryAccessError{Operation: OperationStatusQuery, RepositoryPath: repositoryPath, Cause: executionError}
	}

	entries := parsePorcelainStatusOutput(executionResult.StandardOutput)
	if options.Show == StatusShowWorktreeOnly {
		entries = filterWorktreeOnlyEntries(entries)
	}
	return entries, nil
}

// HeadCommitTimestamp resolves the commit time of HEAD. The boolean reports
// whether a commit exists; repositories without commits resolve without error.
func (backend *CommandLineBackend) HeadCommitTimestamp(executionContext context.Context, repositoryPath string) (time.Time, bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{logSubcommandConstant, logSingleCommitFlagConstant, logCommitTimestampFormatConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := backend.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, RepositoryAccessError{Operation: OperationCommitLookup, RepositoryPath: repositoryPath, Cause: executionError}
	}

	trimmedOutput := strings.TrimSpace(executionResult.StandardOutput)
	if len(trimmedOutput) == 0 {
		return time.Time{}, false, nil
	}

	commitSeconds, parseError := strconv.ParseInt(trimmedOutput, decimalBaseConstant, timestampBitSizeConstant)
	if parseError != nil {
		return time.Time{}, false, nil
	}
	return time.Unix(commitSeconds, 0), true, nil
}

// StashEntries lists the stashes recorded in the repository.
func (backend *CommandLineBackend) StashEntries(executionContext context.Context, repositoryPath string) ([]StashEntry, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{stashSubcommandConstant, stashListSubcommandConstant, stashSubjectFormatConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := backend.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil, RepositoryAccessError{Operation: OperationStashQuery, RepositoryPath: repositoryPath, Cause: executionError}
	}

	outputLines := strings.Split(executionResult.StandardOutput, "\n")
	stashEntries := make([]StashEntry, 0, len(outputLines))
	for _, outputLine := range outputLines {
		trimmedLine := strings.TrimRight(outputLine, "\r")
		if len(trimmedLine) == 0 {
			continue
		}
		stashEntries = append(stashEntries, StashEntry{Index: len(stashEntries), Message: trimmedLine})
	}
	return stashEntries, nil
}
