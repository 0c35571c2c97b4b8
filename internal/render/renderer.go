package render

import (
	"fmt"
	"io"

	"github.com/temirov/gitscope/internal/registry"
	"github.com/temirov/gitscope/internal/report"
	"github.com/temirov/gitscope/internal/scan"
)

const unsupportedFormatTemplateConstant = "unsupported output format %q"

// Format selects the output encoding.
type Format string

const (
	// FormatText renders colored human-readable output.
	FormatText Format = "text"
	// FormatJSON renders machine-readable JSON documents.
	FormatJSON Format = "json"
)

// Renderer produces every output document gitscope commands emit.
type Renderer interface {
	RenderReport(writer io.Writer, repositoryReport report.Report) error
	RenderRepositoryList(writer io.Writer, repositoryPaths []string) error
	RenderRegistryInformation(writer io.Writer, information registry.Information) error
	RenderScanSummary(writer io.Writer, outcome scan.Outcome) error
}

// NewRenderer returns the renderer for the requested format.
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatText:
		return &TextRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	}
	return nil, fmt.Errorf(unsupportedFormatTemplateConstant, string(format))
}
