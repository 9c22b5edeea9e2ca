package localmr

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// SinkGenerator is the factory used at the end of the map and reduce phases
// to create output writers. It must be safe to share across worker
// goroutines: CloneSink returns an independent copy per spec's "cloneable,
// sendable" contract (see spec.md section 6).
//
// Concrete sinks (beyond the filesystem implementation below) are out of
// scope for the core engine; a caller is free to supply any type
// implementing this interface.
type SinkGenerator interface {
	// NewOutput returns a writable sink for name.
	NewOutput(name string) (io.WriteCloser, error)
	CloneSink() SinkGenerator
}

// FileSinkGenerator is a SinkGenerator that opens plain files on disk,
// truncating and creating as needed. It is the engine's reference
// implementation, grounded on the reference's file-backed sinks
// (formats/lines.rs's new_from_file / new_to_files idiom).
type FileSinkGenerator struct{}

// NewOutput implements SinkGenerator.
func (FileSinkGenerator) NewOutput(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, errors.Wrapf(err, "localmr: opening output %q", name)
	}
	return f, nil
}

// CloneSink implements SinkGenerator. FileSinkGenerator is stateless.
func (g FileSinkGenerator) CloneSink() SinkGenerator { return g }

// mapOutputName computes the intermediate file name for map chunk `mapper`
// and reduce shard `shard`, optionally namespaced by a run token. The
// pattern is fixed to <location><mapper>.<shard> (spec.md section 9, open
// question 4): the reference implementation disagrees with itself across
// variants, so this engine picks one pattern and uses it consistently for
// both writing and reading.
func mapOutputName(location, runToken string, mapper, shard int) string {
	if runToken == "" {
		return fmt.Sprintf("%s%d.%d", location, mapper, shard)
	}
	return fmt.Sprintf("%s%s-%d.%d", location, runToken, mapper, shard)
}

// reduceOutputName computes the final shard file name.
func reduceOutputName(prefix string, shard int) string {
	return fmt.Sprintf("%s%d", prefix, shard)
}
