package pipeline

import (
	"fmt"
	"log/slog"
	"os"
)

// producer is the single discovery task: it expands the configured patterns
// into files, builds their descriptors and feeds the work queue.
type producer struct {
	patterns []string
	glob     GlobFunc
	queue    *workQueue
	tracker  *Tracker
	logger   *slog.Logger
}

// run expands each pattern in configuration order. Non-regular paths are
// skipped silently; every surviving path gets a descriptor, grows the
// tracker's expected total by its size, and is enqueued. The first
// expansion or descriptor failure aborts the whole producer — later
// patterns and paths are not attempted. The queue's send side is closed on
// exit regardless of outcome, since that close is the only shutdown signal
// workers observe. A clean run that discovered nothing fails with ErrNoFile.
func (p *producer) run() error {
	defer p.queue.closeSend()

	discovered := 0
	for _, pattern := range p.patterns {
		paths, err := p.glob(pattern)
		if err != nil {
			return fmt.Errorf("%w: expanding pattern %q: %v", ErrPathResolve, pattern, err)
		}
		p.logger.Debug("Pattern expanded", slog.String("pattern", pattern), slog.Int("matches", len(paths)))

		for _, path := range paths {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				p.logger.Debug("Skipping non-regular path", slog.String("path", path))
				continue
			}
			desc, err := NewFileDescriptor(path)
			if err != nil {
				return err
			}
			p.tracker.ExtendTotal(desc.Size())
			p.queue.send(desc)
			discovered++
			p.logger.Debug("Discovered input",
				slog.String("path", path),
				slog.String("format", string(desc.Format())),
				slog.Int64("size", desc.Size()))
		}
	}

	if discovered == 0 {
		return ErrNoFile
	}
	p.logger.Debug("Discovery completed", slog.Int("files", discovered))
	return nil
}
