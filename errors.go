package localmr

import "github.com/pkg/errors"

// Sentinel errors returned by Controller.Run.
var (
	// ErrEmptyInput is returned by Run when the input iterator yielded no
	// records at all; no map or reduce partitions are run in that case.
	ErrEmptyInput = errors.New("localmr: empty input, nothing to run")
)
