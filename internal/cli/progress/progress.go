// Package progress renders pipeline progress as a terminal byte-count bar.
package progress

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/tunelock/tunedump/pkg/pipeline"
)

// BarSink implements pipeline.Sink on a single progress bar whose maximum
// grows as discovery reports file sizes. The producer and every worker call
// into it concurrently, so all bar access is serialized here.
type BarSink struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	logger *slog.Logger
	total  int64
}

var _ pipeline.Sink = (*BarSink)(nil)

// NewBarSink builds a sink rendering to w. Per-file events are logged
// through logger rather than drawn, so they survive bar redraws.
func NewBarSink(w io.Writer, logger *slog.Logger) *BarSink {
	bar := progressbar.NewOptions64(0,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &BarSink{bar: bar, logger: logger}
}

func (s *BarSink) ExtendTotal(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total += n
	s.bar.ChangeMax64(s.total)
}

func (s *BarSink) Advance(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.bar.Add64(n)
}

func (s *BarSink) ItemStarted(label string, size int64) {
	s.logger.Info("Converting", slog.String("file", label), slog.Int64("size", size))
}

func (s *BarSink) ItemAdvanced(string, int64) {}

func (s *BarSink) ItemFinished(label string) {
	s.logger.Info("Done", slog.String("file", label))
}

func (s *BarSink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.bar.Finish()
}
