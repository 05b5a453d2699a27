// Package cli wires validated settings into a pipeline run and renders the
// final report.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/tunelock/tunedump/internal/cli/config"
	"github.com/tunelock/tunedump/internal/cli/progress"
	"github.com/tunelock/tunedump/pkg/pipeline"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Run executes one conversion run and writes the report to out. The run
// error is returned even when the report rendered fine, so the process exits
// non-zero on any failed conversion.
func Run(out io.Writer, s config.Settings, logger *slog.Logger) error {
	s.Pipeline.Sink = selectSink(&s, logger)

	coord, err := pipeline.NewCoordinator(s.Pipeline)
	if err != nil {
		return err
	}

	report, runErr := coord.Run()
	if err := renderReport(out, s.ReportFormat, report); err != nil {
		logger.Error("Rendering report failed", slog.String("error", err.Error()))
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// selectSink picks the progress renderer: a live bar on stderr when it is a
// terminal and the user did not opt out, otherwise nothing.
func selectSink(s *config.Settings, logger *slog.Logger) pipeline.Sink {
	if s.NoProgress || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return progress.NewBarSink(os.Stderr, logger)
}

func renderReport(w io.Writer, format string, r pipeline.Report) error {
	switch format {
	case config.ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case config.ReportYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		renderText(w, r)
		return nil
	}
}

func renderText(w io.Writer, r pipeline.Report) {
	for _, f := range r.Files {
		fmt.Fprintf(w, "%s %s %s %s\n",
			okStyle.Render("✔"), f.Input, dimStyle.Render("->"), f.Output)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "%s %s: %s\n", failStyle.Render("✘"), e.Path, e.Error)
	}
	summary := fmt.Sprintf("%d converted, %d failed, %d bytes decoded in %.2fs (%d workers)",
		r.Summary.Converted, r.Summary.Failed, r.Summary.ProcessedBytes,
		r.Summary.DurationSeconds, r.Summary.Workers)
	if r.Summary.Failed > 0 {
		fmt.Fprintln(w, failStyle.Render(summary))
		return
	}
	fmt.Fprintln(w, okStyle.Render(summary))
}
