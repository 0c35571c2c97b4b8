package gitrepo

const (
	indexNewCharacterConstant    = 'A'
	modifiedCharacterConstant    = 'M'
	deletedCharacterConstant     = 'D'
	renamedCharacterConstant     = 'R'
	typeChangedCharacterConstant = 'T'
	untrackedCharacterConstant   = '?'
	ignoredCharacterConstant     = '!'
	conflictedCharacterConstant  = 'C'
	cleanCharacterConstant       = ' '
)

// CleanStatusCode is the two-character code of an entry without reportable state.
const CleanStatusCode = "  "

// ShortStatusCode maps status flags to the two-character code: one character
// for the index state followed by one for the worktree state. An untracked
// file reads "??", an ignored file "!!", and a conflicted file "CC"; the
// conflicted override is applied last and wins over ignored.
func ShortStatusCode(flags StatusFlags) string {
	indexCharacter := byte(cleanCharacterConstant)
	switch {
	case flags.IndexNew:
		indexCharacter = indexNewCharacterConstant
	case flags.IndexModified:
		indexCharacter = modifiedCharacterConstant
	case flags.IndexDeleted:
		indexCharacter = deletedCharacterConstant
	case flags.IndexRenamed:
		indexCharacter = renamedCharacterConstant
	case flags.IndexTypeChanged:
		indexCharacter = typeChangedCharacterConstant
	}

	worktreeCharacter := byte(cleanCharacterConstant)
	switch {
	case flags.WorktreeNew:
		worktreeCharacter = untrackedCharacterConstant
		if indexCharacter == cleanCharacterConstant {
			indexCharacter = untrackedCharacterConstant
		}
	case flags.WorktreeModified:
		worktreeCharacter = modifiedCharacterConstant
	case flags.WorktreeDeleted:
		worktreeCharacter = deletedCharacterConstant
	case flags.WorktreeRenamed:
		worktreeCharacter = renamedCharacterConstant
	case flags.WorktreeTypeChanged:
		worktreeCharacter = typeChangedCharacterConstant
	}

	if flags.Ignored {
		indexCharacter = ignoredCharacterConstant
		worktreeCharacter = ignoredCharacterConstant
	}
	if flags.Conflicted {
		indexCharacter = conflictedCharacterConstant
		worktreeCharacter = conflictedCharacterConstant
	}

	return string([]byte{indexCharacter, worktreeCharacter})
}
