package pipeline

import (
	"sync"
	"time"
)

// FileResult records one successful conversion.
type FileResult struct {
	Input    string        `json:"input" yaml:"input"`
	Output   string        `json:"output" yaml:"output"`
	Bytes    int64         `json:"bytes" yaml:"bytes"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// FileError records one conversion failure.
type FileError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Summary holds the aggregate view of a run.
type Summary struct {
	Converted       int     `json:"converted" yaml:"converted"`
	Failed          int     `json:"failed" yaml:"failed"`
	ExpectedBytes   int64   `json:"expectedBytes" yaml:"expectedBytes"`
	ProcessedBytes  int64   `json:"processedBytes" yaml:"processedBytes"`
	Workers         int     `json:"workers" yaml:"workers"`
	DurationSeconds float64 `json:"durationSeconds" yaml:"durationSeconds"`
}

// Report is the final account of a run: summary plus per-file outcomes.
// Conversions that were still queued when a worker failed appear in neither
// list; the fail-isolated policy leaves them undone, not failed.
type Report struct {
	Summary Summary      `json:"summary" yaml:"summary"`
	Files   []FileResult `json:"files" yaml:"files"`
	Errors  []FileError  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// reportAggregator collects per-file outcomes from concurrent workers.
type reportAggregator struct {
	mu        sync.Mutex
	converted []FileResult
	failures  []FileError
}

func (a *reportAggregator) addConverted(r FileResult) {
	a.mu.Lock()
	a.converted = append(a.converted, r)
	a.mu.Unlock()
}

func (a *reportAggregator) addFailure(path string, err error) {
	a.mu.Lock()
	a.failures = append(a.failures, FileError{Path: path, Error: err.Error()})
	a.mu.Unlock()
}

// report compiles the final Report. Called after every task has joined, so
// the copies it takes are of settled state.
func (a *reportAggregator) report(opts *Options, tracker *Tracker, start time.Time) Report {
	a.mu.Lock()
	files := make([]FileResult, len(a.converted))
	copy(files, a.converted)
	errs := make([]FileError, len(a.failures))
	copy(errs, a.failures)
	a.mu.Unlock()

	return Report{
		Summary: Summary{
			Converted:       len(files),
			Failed:          len(errs),
			ExpectedBytes:   tracker.Total(),
			ProcessedBytes:  tracker.Processed(),
			Workers:         opts.Workers,
			DurationSeconds: time.Since(start).Seconds(),
		},
		Files:  files,
		Errors: errs,
	}
}
