package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tunelock/tunedump/pkg/codec"
)

// Descriptor is the pipeline's read-only record of one discovered input
// file: identity and classification, never content. Implementations are
// immutable after construction. The file-backed variant below is the only
// one today; the interface leaves room for other descriptor sources without
// touching the pipeline.
type Descriptor interface {
	// Name returns the file's base name, including its extension.
	Name() string
	// Path returns the path the file was discovered under.
	Path() string
	// Format returns the container format detected from the leading bytes.
	Format() codec.Format
	// Size returns the file's size in bytes at probe time.
	Size() int64
}

type fileDescriptor struct {
	name   string
	path   string
	format codec.Format
	size   int64
}

func (d *fileDescriptor) Name() string         { return d.name }
func (d *fileDescriptor) Path() string         { return d.path }
func (d *fileDescriptor) Format() codec.Format { return d.format }
func (d *fileDescriptor) Size() int64          { return d.size }

// NewFileDescriptor probes the file at path and builds its Descriptor: the
// leading bytes are sniffed for the container format and the metadata is
// read for the size. The probe handle is discarded; conversion reopens the
// file independently. Every failure wraps ErrPathResolve.
func NewFileDescriptor(path string) (Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPathResolve, path, err)
	}
	defer f.Close()

	prefix := make([]byte, codec.SniffLen)
	n, err := io.ReadFull(f, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: sniffing header: %v", ErrPathResolve, path, err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading metadata: %v", ErrPathResolve, path, err)
	}

	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: %s: cannot derive file name", ErrPathResolve, path)
	}

	return &fileDescriptor{
		name:   name,
		path:   path,
		format: codec.DetectFormat(prefix[:n]),
		size:   info.Size(),
	}, nil
}
