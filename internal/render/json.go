package render

import (
	"encoding/json"
	"io"

	"github.com/temirov/gitscope/internal/registry"
	"github.com/temirov/gitscope/internal/report"
	"github.com/temirov/gitscope/internal/scan"
)

const jsonIndentConstant = "  "

// JSONRenderer writes machine-readable JSON documents, one per invocation.
type JSONRenderer struct{}

// RenderReport encodes the full report including inaccessible entries.
func (renderer *JSONRenderer) RenderReport(writer io.Writer, repositoryReport report.Report) error {
	if repositoryReport.Entries == nil {
		repositoryReport.Entries = []report.Entry{}
	}
	return writeJSONDocument(writer, repositoryReport)
}

// RenderRepositoryList encodes the repository paths as a JSON array.
func (renderer *JSONRenderer) RenderRepositoryList(writer io.Writer, repositoryPaths []string) error {
	if repositoryPaths == nil {
		repositoryPaths = []string{}
	}
	return writeJSONDocument(writer, repositoryPaths)
}

// RenderRegistryInformation encodes the registry metadata document.
func (renderer *JSONRenderer) RenderRegistryInformation(writer io.Writer, information registry.Information) error {
	return writeJSONDocument(writer, information)
}

// RenderScanSummary encodes the scan outcome document.
func (renderer *JSONRenderer) RenderScanSummary(writer io.Writer, outcome scan.Outcome) error {
	return writeJSONDocument(writer, outcome)
}

func writeJSONDocument(writer io.Writer, document any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", jsonIndentConstant)
	return encoder.Encode(document)
}
