package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const orderingParseErrorTemplateConstant = "unsupported ordering %q (valid values: %s)"

// Ordering selects the column a report is sorted by.
type Ordering string

const (
	// OrderingPath sorts entries by repository path.
	OrderingPath Ordering = "path"
	// OrderingAge sorts entries by hours since the last commit, oldest last.
	OrderingAge Ordering = "age"
	// OrderingStatus sorts entries by their two-character status code.
	OrderingStatus Ordering = "status"
)

// OrderingValues lists every supported ordering in presentation order.
func OrderingValues() []string {
	return []string{string(OrderingPath), string(OrderingAge), string(OrderingStatus)}
}

// ParseOrdering validates a candidate ordering name.
func ParseOrdering(candidate string) (Ordering, error) {
	normalizedCandidate := strings.ToLower(strings.TrimSpace(candidate))
	switch Ordering(normalizedCandidate) {
	case OrderingPath, OrderingAge, OrderingStatus:
		return Ordering(normalizedCandidate), nil
	}
	return "", fmt.Errorf(orderingParseErrorTemplateConstant, candidate, strings.Join(OrderingValues(), ", "))
}

// Entry captures the reportable state of a single repository. Inaccessible
// repositories stay in the report with the failure reason instead of status
// data.
type Entry struct {
	Path               string   `json:"path"`
	LastCommitAgeHours int64    `json:"lastCommitAgeHours"`
	ShortStatusCode    string   `json:"shortStatus"`
	Inaccessible       bool     `json:"inaccessible"`
	InaccessibleReason string   `json:"error,omitempty"`
	StatusLines        []string `json:"statusEntries,omitempty"`
	StashLines         []string `json:"stashes,omitempty"`
}

// Report is an ordered snapshot of every registered repository.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Entries     []Entry   `json:"repositories"`
}

// sortColumn compares two entries for one sortable column. The set of columns
// is closed: rendering and sorting stay in step because both enumerate the
// same three implementations.
type sortColumn interface {
	less(first Entry, second Entry) bool
}

type pathColumn struct{}

func (pathColumn) less(first Entry, second Entry) bool {
	return first.Path < second.Path
}

type ageColumn struct{}

func (ageColumn) less(first Entry, second Entry) bool {
	if first.LastCommitAgeHours == second.LastCommitAgeHours {
		return first.Path < second.Path
	}
	return first.LastCommitAgeHours < second.LastCommitAgeHours
}

type statusColumn struct{}

func (statusColumn) less(first Entry, second Entry) bool {
	if first.ShortStatusCode == second.ShortStatusCode {
		return first.Path < second.Path
	}
	return first.ShortStatusCode < second.ShortStatusCode
}

func sortColumnForOrdering(ordering Ordering) sortColumn {
	switch ordering {
	case OrderingAge:
		return ageColumn{}
	case OrderingStatus:
		return statusColumn{}
	default:
		return pathColumn{}
	}
}

func sortEntries(entries []Entry, ordering Ordering) {
	column := sortColumnForOrdering(ordering)
	sort.SliceStable(entries, func(firstIndex int, secondIndex int) bool {
		return column.less(entries[firstIndex], entries[secondIndex])
	})
}
