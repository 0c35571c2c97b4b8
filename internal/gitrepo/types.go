package gitrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/temirov/gitscope/internal/execshell"
)

const statusEntryTemplateConstant = "%s %s"

// StatusShowMode selects which repository areas a status query examines.
type StatusShowMode string

// Supported status show modes.
const (
	// StatusShowIndexAndWorktree reports staged and unstaged changes.
	StatusShowIndexAndWorktree StatusShowMode = StatusShowMode("index-and-worktree")
	// StatusShowWorktreeOnly reports unstaged changes exclusively.
	StatusShowWorktreeOnly StatusShowMode = StatusShowMode("worktree-only")
)

// StatusOptions configures a working tree status query.
type StatusOptions struct {
	Show             StatusShowMode
	IncludeUntracked bool
	IncludeIgnored   bool
}

// StatusFlags carries the independent index-side and worktree-side states the
// backend reports for a single file, plus the ignored and conflicted overrides.
type StatusFlags struct {
	IndexNew            bool
	IndexModified       bool
	IndexDeleted        bool
	IndexRenamed        bool
	IndexTypeChanged    bool
	WorktreeNew         bool
	WorktreeModified    bool
	WorktreeDeleted     bool
	WorktreeRenamed     bool
	WorktreeTypeChanged bool
	Ignored             bool
	Conflicted          bool
}

// HasIndexState reports whether any index-side flag is set.
func (flags StatusFlags) HasIndexState() bool {
	return flags.IndexNew || flags.IndexModified || flags.IndexDeleted || flags.IndexRenamed || flags.IndexTypeChanged
}

// HasWorktreeState reports whether any worktree-side flag is set.
func (flags StatusFlags) HasWorktreeState() bool {
	return flags.WorktreeNew || flags.WorktreeModified || flags.WorktreeDeleted || flags.WorktreeRenamed || flags.WorktreeTypeChanged
}

// HasAnyState reports whether the flags carry any reportable state at all.
func (flags StatusFlags) HasAnyState() bool {
	return flags.HasIndexState() || flags.HasWorktreeState() || flags.Ignored || flags.Conflicted
}

// StatusEntry pairs a file path relative to the repository root with its state flags.
type StatusEntry struct {
	Path  string
	Flags StatusFlags
}

// Code returns the two-character status code for the entry.
func (entry StatusEntry) Code() string {
	return ShortStatusCode(entry.Flags)
}

// String renders the entry as "<code> <path>".
func (entry StatusEntry) String() string {
	return fmt.Sprintf(statusEntryTemplateConstant, entry.Code(), entry.Path)
}

// StashEntry identifies one stash stack element.
type StashEntry struct {
	Index   int
	Message string
}

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// GitExecutor exposes the subset of shell execution used by repository queries.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}
