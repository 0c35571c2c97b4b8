package scan

import "fmt"

const warningTemplateConstant = "%s: %s"

// Warning describes a path the scanner skipped and the reason it was skipped.
type Warning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// String formats the warning for presentation.
func (warning Warning) String() string {
	return fmt.Sprintf(warningTemplateConstant, warning.Path, warning.Reason)
}

// Options carries the resolved inputs for a scan run.
type Options struct {
	Roots    []string
	Excludes []string
}

// Outcome summarizes a completed scan for presentation.
type Outcome struct {
	Roots           []string  `json:"roots"`
	DiscoveredCount int       `json:"discoveredCount"`
	TotalCount      int       `json:"repositoryCount"`
	NewCount        int       `json:"newRepositories"`
	Warnings        []Warning `json:"warnings,omitempty"`
}
