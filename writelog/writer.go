// Package writelog implements a length-prefixed byte-string stream: the
// on-disk format used for localmr's intermediate shuffle files. Each entry
// is a 4-byte big-endian length followed by that many payload bytes.
package writelog

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Writer appends length-prefixed entries to an underlying io.Writer and
// tracks running totals of bytes and records written.
//
// Write does not buffer; wrap dest in a *bufio.Writer for batched I/O.
type Writer struct {
	dest io.Writer

	bytesWritten   uint64
	recordsWritten uint32
}

// NewWriter returns a Writer appending entries to dest.
func NewWriter(dest io.Writer) *Writer {
	return &Writer{dest: dest}
}

// Write appends one entry containing buf and returns len(buf), nil on
// success.
//
// The length prefix and payload are written as a single underlying Write
// call so a short write can't desync the length prefix from its payload
// (two separate writes would let the prefix succeed and the payload fail,
// corrupting every entry read after it).
func (w *Writer) Write(buf []byte) (int, error) {
	entry := make([]byte, 4+len(buf))
	binary.BigEndian.PutUint32(entry[:4], uint32(len(buf)))
	copy(entry[4:], buf)

	if _, err := w.dest.Write(entry); err != nil {
		return 0, errors.Wrap(err, "writelog: writing entry")
	}

	w.bytesWritten += uint64(len(entry))
	w.recordsWritten++

	return len(buf), nil
}

// Stats returns (total bytes written including length prefixes, records written).
func (w *Writer) Stats() (uint64, uint32) {
	return w.bytesWritten, w.recordsWritten
}
