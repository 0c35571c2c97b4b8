package registry

import "sort"

// RepositorySet accumulates canonical repository root paths with set semantics.
type RepositorySet struct {
	memberPaths map[string]struct{}
}

// NewRepositorySet constructs a set seeded with the provided paths.
func NewRepositorySet(repositoryPaths ...string) *RepositorySet {
	repositorySet := &RepositorySet{memberPaths: make(map[string]struct{}, len(repositoryPaths))}
	for _, repositoryPath := range repositoryPaths {
		repositorySet.Add(repositoryPath)
	}
	return repositorySet
}

// Add inserts the repository path into the set.
func (repositorySet *RepositorySet) Add(repositoryPath string) {
	if repositorySet.memberPaths == nil {
		repositorySet.memberPaths = make(map[string]struct{})
	}
	repositorySet.memberPaths[repositoryPath] = struct{}{}
}

// Contains reports whether the repository path is a member.
func (repositorySet *RepositorySet) Contains(repositoryPath string) bool {
	if repositorySet == nil {
		return false
	}
	_, exists := repositorySet.memberPaths[repositoryPath]
	return exists
}

// Size reports the number of member paths.
func (repositorySet *RepositorySet) Size() int {
	if repositorySet == nil {
		return 0
	}
	return len(repositorySet.memberPaths)
}

// SortedPaths returns the member paths in lexicographic order.
func (repositorySet *RepositorySet) SortedPaths() []string {
	if repositorySet == nil {
		return nil
	}

	sortedPaths := make([]string, 0, len(repositorySet.memberPaths))
	for memberPath := range repositorySet.memberPaths {
		sortedPaths = append(sortedPaths, memberPath)
	}
	sort.Strings(sortedPaths)
	return sortedPaths
}

// Union returns a new set holding the members of both sets.
func (repositorySet *RepositorySet) Union(other *RepositorySet) *RepositorySet {
	merged := NewRepositorySet()
	if repositorySet != nil {
		for memberPath := range repositorySet.memberPaths {
			merged.Add(memberPath)
		}
	}
	if other != nil {
		for memberPath := range other.memberPaths {
			merged.Add(memberPath)
		}
	}
	return merged
}
