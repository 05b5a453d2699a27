package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/tunelock/tunedump/pkg/codec"
)

// Worker-count bounds. Validation rejects anything outside them before a
// single task is spawned.
const (
	MinWorkers     = 1
	MaxWorkers     = 8
	DefaultWorkers = 1
)

// GlobFunc expands one pattern into the paths matching it. The pipeline
// treats pattern syntax as opaque; it only consumes the resulting paths.
type GlobFunc func(pattern string) ([]string, error)

// Options holds all configuration for one conversion run. Each run owns its
// Options copy; nothing here is process-global, so independent runs (tests
// included) do not interfere.
type Options struct {
	// Patterns are the glob patterns to expand, in order. Required, non-empty.
	Patterns []string
	// OutputDir, when set, receives every converted file; otherwise each
	// output lands next to its input.
	OutputDir string
	// Verbose enables per-file progress reporting.
	Verbose bool
	// Workers is the conversion goroutine count, in [MinWorkers, MaxWorkers].
	Workers int

	// Injected collaborators; every one has a default.
	Logger   slog.Handler   // logging backend, defaults to discard
	Decoders codec.Registry // format decoders, defaults to codec.DefaultRegistry()
	Glob     GlobFunc       // pattern expansion, defaults to doublestar
	Sink     Sink           // progress rendering, defaults to NoOpSink
}

// validate applies the two preconditions gating pipeline start.
func (o *Options) validate() error {
	if o.Workers < MinWorkers || o.Workers > MaxWorkers {
		return fmt.Errorf("%w: %w: got %d", ErrConfigValidation, ErrWorkerRange, o.Workers)
	}
	if len(o.Patterns) == 0 {
		return fmt.Errorf("%w: %w", ErrConfigValidation, ErrNoPattern)
	}
	return nil
}
