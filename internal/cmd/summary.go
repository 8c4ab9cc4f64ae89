package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/luispater/slideExporter/internal/exporter"
	"github.com/luispater/slideExporter/internal/pptx"
)

var (
	succColor  = color.New(color.FgGreen)
	faintColor = color.New(color.Faint)
)

func printExportSummary(w io.Writer, result *exporter.Result, dir string) {
	_, _ = succColor.Fprintf(w, "✓ Exported %d slides", result.Total)
	_, _ = fmt.Fprintf(w, " from %s to %s\n", result.URL, dir)
	if result.Manifest != "" {
		_, _ = faintColor.Fprintf(w, "  manifest: %s\n", result.Manifest)
	}
}

func printPptxSummary(w io.Writer, summary *pptx.Summary) {
	_, _ = succColor.Fprintf(w, "✓ Created %s", summary.Output)
	_, _ = fmt.Fprintf(w, " with %d slides\n", summary.Slides)
	if summary.Notes > 0 {
		_, _ = faintColor.Fprintf(w, "  speaker notes on %d slides\n", summary.Notes)
	}
}
