package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/gitscope/internal/gitrepo"
	"github.com/temirov/gitscope/internal/registry"
	"github.com/temirov/gitscope/internal/report"
	"github.com/temirov/gitscope/internal/scan"
)

const (
	reportRowTemplateConstant          = "%s  %s  %s\n"
	inaccessibleMarkerConstant         = "--"
	inaccessibleRowTemplateConstant    = "%s  %s  inaccessible: %s\n"
	detailLineTemplateConstant         = "      %s\n"
	unknownAgeDisplayConstant          = "unknown"
	ageDisplayTemplateConstant         = "%dh"
	emptyReportMessageConstant         = "no repositories registered; run scan first"
	cacheFileLabelConstant             = "cache file"
	repositoryCountLabelConstant       = "repositories"
	configuredRootsLabelConstant       = "roots"
	labelValueTemplateConstant         = "%s: "
	scannedRootsTemplateConstant       = "roots: %s\n"
	discoveredSummaryTemplateConstant  = "discovered: %d (%d new)\n"
	trackedSummaryTemplateConstant     = "tracked: %d\n"
	scanWarningTemplateConstant        = "⚠ %s: %s\n"
	rootListSeparatorConstant          = ", "
)

var (
	repositoryPathColor   = color.New(color.Bold)
	cleanStatusColor      = color.New(color.FgGreen)
	dirtyStatusColor      = color.New(color.FgYellow)
	inaccessibleRowColor  = color.New(color.FgRed)
	detailLineColor       = color.New(color.FgHiBlack)
	informationLabelColor = color.New(color.FgWhite, color.Bold)
	scanWarningColor      = color.New(color.FgYellow)
	emptyStateColor       = color.New(color.FgHiBlack)
)

// TextRenderer writes colored human-readable output. fatih/color disables the
// escape sequences automatically when the destination is not a terminal.
type TextRenderer struct{}

// RenderReport writes one row per repository in report order, with indented
// detail lines when the report carries them.
func (renderer *TextRenderer) RenderReport(writer io.Writer, repositoryReport report.Report) error {
	if len(repositoryReport.Entries) == 0 {
		_, writeError := emptyStateColor.Fprintln(writer, emptyReportMessageConstant)
		return writeError
	}

	for _, entry := range repositoryReport.Entries {
		if renderError := renderer.renderReportEntry(writer, entry); renderError != nil {
			return renderError
		}
	}
	return nil
}

func (renderer *TextRenderer) renderReportEntry(writer io.Writer, entry report.Entry) error {
	if entry.Inaccessible {
		_, writeError := fmt.Fprintf(writer, inaccessibleRowTemplateConstant,
			inaccessibleRowColor.Sprint(inaccessibleMarkerConstant),
			repositoryPathColor.Sprint(entry.Path),
			inaccessibleRowColor.Sprint(entry.InaccessibleReason),
		)
		return writeError
	}

	statusColor := dirtyStatusColor
	if entry.ShortStatusCode == gitrepo.CleanStatusCode {
		statusColor = cleanStatusColor
	}

	_, writeError := fmt.Fprintf(writer, reportRowTemplateConstant,
		statusColor.Sprint(entry.ShortStatusCode),
		repositoryPathColor.Sprint(entry.Path),
		formatAgeDisplay(entry.LastCommitAgeHours),
	)
	if writeError != nil {
		return writeError
	}

	for _, statusLine := range entry.StatusLines {
		if _, detailError := fmt.Fprintf(writer, detailLineTemplateConstant, detailLineColor.Sprint(statusLine)); detailError != nil {
			return detailError
		}
	}
	for _, stashLine := range entry.StashLines {
		if _, detailError := fmt.Fprintf(writer, detailLineTemplateConstant, detailLineColor.Sprint(stashLine)); detailError != nil {
			return detailError
		}
	}
	return nil
}

// RenderRepositoryList writes one repository path per line without decoration,
// keeping the output pipe-friendly.
func (renderer *TextRenderer) RenderRepositoryList(writer io.Writer, repositoryPaths []string) error {
	for _, repositoryPath := range repositoryPaths {
		if _, writeError := fmt.Fprintln(writer, repositoryPath); writeError != nil {
			return writeError
		}
	}
	return nil
}

// RenderRegistryInformation writes labeled registry details.
func (renderer *TextRenderer) RenderRegistryInformation(writer io.Writer, information registry.Information) error {
	if writeError := renderLabeledValue(writer, cacheFileLabelConstant, information.CacheFilePath); writeError != nil {
		return writeError
	}
	if writeError := renderLabeledValue(writer, repositoryCountLabelConstant, fmt.Sprintf("%d", information.RepositoryCount)); writeError != nil {
		return writeError
	}
	if len(information.ConfiguredRoots) > 0 {
		return renderLabeledValue(writer, configuredRootsLabelConstant, strings.Join(information.ConfiguredRoots, rootListSeparatorConstant))
	}
	return nil
}

// RenderScanSummary writes the scan counters followed by any warnings.
func (renderer *TextRenderer) RenderScanSummary(writer io.Writer, outcome scan.Outcome) error {
	if _, writeError := fmt.Fprintf(writer, scannedRootsTemplateConstant, strings.Join(outcome.Roots, rootListSeparatorConstant)); writeError != nil {
		return writeError
	}
	if _, writeError := fmt.Fprintf(writer, discoveredSummaryTemplateConstant, outcome.DiscoveredCount, outcome.NewCount); writeError != nil {
		return writeError
	}
	if _, writeError := fmt.Fprintf(writer, trackedSummaryTemplateConstant, outcome.TotalCount); writeError != nil {
		return writeError
	}
	for _, warning := range outcome.Warnings {
		if _, writeError := scanWarningColor.Fprintf(writer, scanWarningTemplateConstant, warning.Path, warning.Reason); writeError != nil {
			return writeError
		}
	}
	return nil
}

func renderLabeledValue(writer io.Writer, label string, value string) error {
	if _, labelError := informationLabelColor.Fprintf(writer, labelValueTemplateConstant, label); labelError != nil {
		return labelError
	}
	_, valueError := fmt.Fprintln(writer, value)
	return valueError
}

func formatAgeDisplay(lastCommitAgeHours int64) string {
	if lastCommitAgeHours == gitrepo.UnknownCommitAgeHours {
		return unknownAgeDisplayConstant
	}
	return fmt.Sprintf(ageDisplayTemplateConstant, lastCommitAgeHours)
}
