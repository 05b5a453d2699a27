// Package pipeline implements the discovery-dispatch-convert pipeline: a
// single discovery producer enumerates input files into an unbounded work
// queue while a pool of workers concurrently decodes them, with a shared
// progress tracker and fail-isolated error handling — a failing task stops
// itself and nothing else.
package pipeline

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tunelock/tunedump/pkg/codec"
)

// Coordinator owns one run: the validated configuration, the shared
// progress tracker, and the lifecycle of the producer and worker tasks.
type Coordinator struct {
	opts    Options
	logger  *slog.Logger
	tracker *Tracker
}

// NewCoordinator validates opts and prepares a run. A validation error
// means nothing was spawned and no file was touched. Missing collaborators
// are filled with their defaults.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.NewTextHandler(io.Discard, nil)
	}
	if opts.Decoders == nil {
		opts.Decoders = codec.DefaultRegistry()
	}
	if opts.Glob == nil {
		opts.Glob = func(pattern string) ([]string, error) {
			return doublestar.FilepathGlob(pattern)
		}
	}
	return &Coordinator{
		opts:    opts,
		logger:  slog.New(opts.Logger).With(slog.String("component", "coordinator")),
		tracker: NewTracker(opts.Verbose, opts.Sink),
	}, nil
}

// Tracker exposes the run's shared progress counters.
func (c *Coordinator) Tracker() *Tracker { return c.tracker }

// Run executes the pipeline and blocks until every task has terminated.
//
// Tasks are joined in spawn order — producer first, then workers by index —
// and the first error found in that order is returned. That is not
// necessarily the first error chronologically: tasks run concurrently and a
// failing worker neither stops its siblings nor is reported ahead of an
// earlier-spawned task's failure. On an all-success join the tracker is
// finished. The compiled Report is returned either way.
func (c *Coordinator) Run() (Report, error) {
	start := time.Now()
	c.logger.Info("Starting conversion run",
		slog.Int("workers", c.opts.Workers),
		slog.Int("patterns", len(c.opts.Patterns)))

	queue := newWorkQueue()
	defer queue.shutdown()
	results := &reportAggregator{}

	// One outcome slot per task, indexed in spawn order.
	outcomes := make([]error, 1+c.opts.Workers)
	var wg sync.WaitGroup

	prod := &producer{
		patterns: c.opts.Patterns,
		glob:     c.opts.Glob,
		queue:    queue,
		tracker:  c.tracker,
		logger:   slog.New(c.opts.Logger).With(slog.String("component", "producer")),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		outcomes[0] = prod.run()
	}()

	for i := 0; i < c.opts.Workers; i++ {
		w := &worker{
			id:        i,
			queue:     queue,
			tracker:   c.tracker,
			decoders:  c.opts.Decoders,
			outputDir: c.opts.OutputDir,
			results:   results,
			logger: slog.New(c.opts.Logger).With(
				slog.String("component", "worker"),
				slog.Int("workerID", i)),
		}
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			outcomes[slot] = w.run()
		}(i + 1)
	}

	wg.Wait()

	var firstErr error
	for _, err := range outcomes {
		if err != nil {
			firstErr = err
			break
		}
	}
	if firstErr == nil {
		c.tracker.Finish()
	}

	report := results.report(&c.opts, c.tracker, start)
	if firstErr != nil {
		c.logger.Error("Conversion run failed",
			slog.Int("converted", report.Summary.Converted),
			slog.Int("failed", report.Summary.Failed),
			slog.String("error", firstErr.Error()))
	} else {
		c.logger.Info("Conversion run finished",
			slog.Int("converted", report.Summary.Converted),
			slog.Int64("processedBytes", report.Summary.ProcessedBytes),
			slog.Duration("duration", time.Since(start)))
	}
	return report, firstErr
}
