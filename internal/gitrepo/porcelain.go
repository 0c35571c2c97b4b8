package gitrepo

import "strings"

const (
	porcelainRecordSeparatorConstant      = "\x00"
	porcelainFieldSeparatorConstant       = " "
	porcelainOrdinaryRecordTypeConstant   = "1"
	porcelainRenameRecordTypeConstant     = "2"
	porcelainUnmergedRecordTypeConstant   = "u"
	porcelainUntrackedRecordTypeConstant  = "?"
	porcelainIgnoredRecordTypeConstant    = "!"
	porcelainHeaderRecordTypeConstant     = "#"
	porcelainOrdinaryRecordFieldCount     = 9
	porcelainRenameRecordFieldCount       = 10
	porcelainUnmergedRecordFieldCount     = 11
	porcelainOrdinaryRecordPathFieldIndex = 8
	porcelainRenameRecordPathFieldIndex   = 9
	porcelainUnmergedRecordPathFieldIndex = 10
	porcelainChangeCodeFieldIndex         = 1
	porcelainChangeCodeLength             = 2
)

// parsePorcelainStatusOutput converts `git status --porcelain=v2 -z` output
// into status entries. Rename records are followed by a separate
// NUL-terminated token holding the original path, which is consumed alongside
// the record itself.
func parsePorcelainStatusOutput(standardOutput string) []StatusEntry {
	tokens := strings.Split(standardOutput, porcelainRecordSeparatorConstant)

	entries := make([]StatusEntry, 0, len(tokens))
	for tokenIndex := 0; tokenIndex < len(tokens); tokenIndex++ {
		record := tokens[tokenIndex]
		if len(record) == 0 {
			continue
		}

		recordType, remainder, separatorFound := strings.Cut(record, porcelainFieldSeparatorConstant)
		if !separatorFound {
			continue
		}

		switch recordType {
		case porcelainOrdinaryRecordTypeConstant:
			fields := strings.SplitN(record, porcelainFieldSeparatorConstant, porcelainOrdinaryRecordFieldCount)
			if len(fields) < porcelainOrdinaryRecordFieldCount {
				continue
			}
			entries = append(entries, StatusEntry{
				Path:  fields[porcelainOrdinaryRecordPathFieldIndex],
				Flags: statusFlagsFromChangeCodes(fields[porcelainChangeCodeFieldIndex]),
			})
		case porcelainRenameRecordTypeConstant:
			fields := strings.SplitN(record, porcelainFieldSeparatorConstant, porcelainRenameRecordFieldCount)
			if len(fields) < porcelainRenameRecordFieldCount {
				continue
			}
			entries = append(entries, StatusEntry{
				Path:  fields[porcelainRenameRecordPathFieldIndex],
				Flags: statusFlagsFromChangeCodes(fields[porcelainChangeCodeFieldIndex]),
			})
			tokenIndex++
		case porcelainUnmergedRecordTypeConstant:
			fields := strings.SplitN(record, porcelainFieldSeparatorConstant, porcelainUnmergedRecordFieldCount)
			if len(fields) < porcelainUnmergedRecordFieldCount {
				continue
			}
			entries = append(entries, StatusEntry{
				Path:  fields[porcelainUnmergedRecordPathFieldIndex],
				Flags: StatusFlags{Conflicted: true},
			})
		case porcelainUntrackedRecordTypeConstant:
			entries = append(entries, StatusEntry{
				Path:  remainder,
				Flags: StatusFlags{WorktreeNew: true},
			})
		case porcelainIgnoredRecordTypeConstant:
			entries = append(entries, StatusEntry{
				Path:  remainder,
				Flags: StatusFlags{Ignored: true},
			})
		case porcelainHeaderRecordTypeConstant:
			continue
		}
	}

	return entries
}

// statusFlagsFromChangeCodes maps a porcelain v2 change-code pair to status
// flags. The first character describes the index side, the second the
// worktree side; copies are folded into the renamed flags.
func statusFlagsFromChangeCodes(changeCodes string) StatusFlags {
	if len(changeCodes) != porcelainChangeCodeLength {
		return StatusFlags{}
	}

	flags := StatusFlags{}

	switch changeCodes[0] {
	case 'A':
		flags.IndexNew = true
	case 'M':
		flags.IndexModified = true
	case 'D':
		flags.IndexDeleted = true
	case 'R', 'C':
		flags.IndexRenamed = true
	case 'T':
		flags.IndexTypeChanged = true
	}

	switch changeCodes[1] {
	case 'A':
		flags.WorktreeNew = true
	case 'M':
		flags.WorktreeModified = true
	case 'D':
		flags.WorktreeDeleted = true
	case 'R', 'C':
		flags.WorktreeRenamed = true
	case 'T':
		flags.WorktreeTypeChanged = true
	}

	return flags
}

// filterWorktreeOnlyEntries reduces entries to those with worktree-side
// state, clearing index-side flags so the remaining entries describe the
// working directory exclusively.
func filterWorktreeOnlyEntries(entries []StatusEntry) []StatusEntry {
	filtered := make([]StatusEntry, 0, len(entries))
	for _, entry := range entries {
		worktreeFlags := entry.Flags
		worktreeFlags.IndexNew = false
		worktreeFlags.IndexModified = false
		worktreeFlags.IndexDeleted = false
		worktreeFlags.IndexRenamed = false
		worktreeFlags.IndexTypeChanged = false

		if !worktreeFlags.HasAnyState() {
			continue
		}

		filtered = append(filtered, StatusEntry{Path: entry.Path, Flags: worktreeFlags})
	}
	return filtered
}
