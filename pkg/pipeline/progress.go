package pipeline

import "sync/atomic"

// Sink receives rendering callbacks from a Tracker. The tracker's own
// counters stay authoritative; a sink only displays. Implementations must
// be safe for concurrent use, since the producer and every worker report
// through the same tracker.
type Sink interface {
	// ExtendTotal reports that n more expected bytes were discovered.
	ExtendTotal(n int64)
	// Advance reports that n more bytes were decoded.
	Advance(n int64)
	// ItemStarted reports that a per-file counter was created (verbose runs only).
	ItemStarted(label string, size int64)
	// ItemAdvanced reports per-file decode progress (verbose runs only).
	ItemAdvanced(label string, n int64)
	// ItemFinished reports per-file completion (verbose runs only).
	ItemFinished(label string)
	// Finish is called exactly once, after every task has been joined
	// without error, to finalize any rendering state.
	Finish()
}

// NoOpSink is the default Sink; it discards every callback.
type NoOpSink struct{}

func (NoOpSink) ExtendTotal(int64)          {}
func (NoOpSink) Advance(int64)              {}
func (NoOpSink) ItemStarted(string, int64)  {}
func (NoOpSink) ItemAdvanced(string, int64) {}
func (NoOpSink) ItemFinished(string)        {}
func (NoOpSink) Finish()                    {}

// Tracker aggregates run progress: a monotone expected-byte total grown
// only by discovery, and a monotone processed-byte total grown only by
// workers. Increments are atomic, so no update is lost under concurrency;
// no globally consistent snapshot is promised before Finish.
type Tracker struct {
	total     atomic.Int64
	processed atomic.Int64
	verbose   bool
	sink      Sink
}

// NewTracker builds a tracker reporting to sink. A nil sink means no
// rendering; verbose enables per-item counters.
func NewTracker(verbose bool, sink Sink) *Tracker {
	if sink == nil {
		sink = NoOpSink{}
	}
	return &Tracker{verbose: verbose, sink: sink}
}

// ExtendTotal grows the expected total by the size of a discovered file.
func (t *Tracker) ExtendTotal(n int64) {
	t.total.Add(n)
	t.sink.ExtendTotal(n)
}

// Advance grows the processed total by a decoded chunk's length.
func (t *Tracker) Advance(n int64) {
	t.processed.Add(n)
	t.sink.Advance(n)
}

// Total returns the expected-byte total discovered so far.
func (t *Tracker) Total() int64 { return t.total.Load() }

// Processed returns the decoded-byte total so far.
func (t *Tracker) Processed() int64 { return t.processed.Load() }

// Finish finalizes the sink's rendering state. The coordinator calls it
// once, after all tasks have joined successfully.
func (t *Tracker) Finish() {
	t.sink.Finish()
}

// StartItem creates a per-file counter owned by the calling worker. It
// returns nil unless verbosity is enabled; Item methods are nil-safe so
// workers report unconditionally.
func (t *Tracker) StartItem(label string, size int64) *Item {
	if !t.verbose {
		return nil
	}
	t.sink.ItemStarted(label, size)
	return &Item{tracker: t, label: label, size: size}
}

// Item is a per-file progress counter. It is owned exclusively by the
// worker converting that file and needs no locking of its own.
type Item struct {
	tracker *Tracker
	label   string
	size    int64
	done    int64
}

// Advance grows the item's counter by a decoded chunk's length.
func (it *Item) Advance(n int64) {
	if it == nil {
		return
	}
	it.done += n
	it.tracker.sink.ItemAdvanced(it.label, n)
}

// Finish marks the item complete.
func (it *Item) Finish() {
	if it == nil {
		return
	}
	it.tracker.sink.ItemFinished(it.label)
}

// Done returns the bytes recorded against this item.
func (it *Item) Done() int64 {
	if it == nil {
		return 0
	}
	return it.done
}
