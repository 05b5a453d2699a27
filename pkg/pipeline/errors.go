package pipeline

import "errors"

// Error variables for the categories of failure a run can hit. Callers
// check against these with errors.Is; every returned error wraps exactly
// one of them.
var (
	// ErrConfigValidation indicates the Options failed the pre-run checks.
	// No goroutine has been spawned and no file touched when it is returned.
	ErrConfigValidation = errors.New("invalid run configuration")

	// ErrWorkerRange indicates a worker count outside [MinWorkers, MaxWorkers].
	ErrWorkerRange = errors.New("worker count must be between 1 and 8")

	// ErrNoPattern indicates an empty pattern list.
	ErrNoPattern = errors.New("at least one file pattern is required")

	// ErrNoFile indicates discovery completed cleanly but matched nothing.
	ErrNoFile = errors.New("no file can be converted")

	// ErrPathResolve covers discovery-side path failures: pattern expansion,
	// unopenable files, unreadable metadata, underivable names.
	ErrPathResolve = errors.New("cannot resolve path")

	// ErrBadFormat indicates an unrecognized input container or a decoded
	// payload whose leading bytes match no known audio signature.
	ErrBadFormat = errors.New("invalid file format")

	// ErrDecode indicates the decoder failed mid-stream.
	ErrDecode = errors.New("decoding failed")

	// ErrWriteFailed indicates the decoded payload could not be written out.
	ErrWriteFailed = errors.New("failed to write output file")
)
