package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tunelock/tunedump/pkg/codec"
)

// readChunkSize is the fixed chunk length workers read decoded bytes in;
// progress counters advance by exactly these chunk lengths.
const readChunkSize = 1024

// worker is one conversion task. A pool of them drains the shared queue;
// each descriptor is handled start-to-finish by a single worker.
type worker struct {
	id        int
	queue     *workQueue
	tracker   *Tracker
	decoders  codec.Registry
	outputDir string
	results   *reportAggregator
	logger    *slog.Logger
}

// run consumes descriptors until the queue's receive side closes, which is
// the worker's only termination signal. The first conversion failure ends
// this worker with that error as its outcome — no retry, no re-enqueue, and
// no signal to siblings, which keep draining the queue on their own.
func (w *worker) run() error {
	for desc := range w.queue.receive() {
		start := time.Now()
		outPath, decoded, err := w.convert(desc)
		if err != nil {
			w.logger.Error("Conversion failed",
				slog.String("input", desc.Path()),
				slog.String("error", err.Error()))
			w.results.addFailure(desc.Path(), err)
			return err
		}
		w.results.addConverted(FileResult{
			Input:    desc.Path(),
			Output:   outPath,
			Bytes:    decoded,
			Duration: time.Since(start),
		})
		w.logger.Info("Converted",
			slog.String("input", desc.Name()),
			slog.String("output", outPath),
			slog.Int64("decodedBytes", decoded))
	}
	w.logger.Debug("Worker shutting down (queue closed)")
	return nil
}

// convert runs the full decode-sniff-write sequence for one input and
// returns the output path and decoded byte count.
func (w *worker) convert(desc Descriptor) (string, int64, error) {
	src, err := os.Open(desc.Path())
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrPathResolve, desc.Path(), err)
	}
	defer src.Close()

	decoder, err := w.decoders.Open(desc.Format(), src)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrBadFormat, desc.Path(), err)
	}

	item := w.tracker.StartItem(desc.Name(), desc.Size())
	payload, err := w.drain(decoder, item)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrDecode, desc.Path(), err)
	}

	ext, err := codec.ExtensionFor(payload)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrBadFormat, desc.Path(), err)
	}

	outPath, err := w.outputPath(desc.Path(), ext)
	if err != nil {
		return "", 0, err
	}
	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrWriteFailed, outPath, err)
	}

	item.Finish()
	return outPath, int64(len(payload)), nil
}

// drain reads the decoded stream to EOF in fixed-size chunks, advancing the
// shared and per-item counters by each chunk's length.
func (w *worker) drain(r io.Reader, item *Item) ([]byte, error) {
	var payload bytes.Buffer
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			payload.Write(buf[:n])
			w.tracker.Advance(int64(n))
			item.Advance(int64(n))
		}
		if err == io.EOF {
			return payload.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// outputPath joins the input's stem with the sniffed extension, in the
// configured override directory or the input's own parent.
func (w *worker) outputPath(input, ext string) (string, error) {
	dir := w.outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "", fmt.Errorf("%w: %s: cannot derive output name", ErrPathResolve, input)
	}
	return filepath.Join(dir, stem+"."+ext), nil
}
