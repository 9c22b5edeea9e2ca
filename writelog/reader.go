package writelog

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Reader reads entries previously written by a Writer.
type Reader struct {
	src io.Reader

	recordsRead uint32
	bytesRead   uint64
}

// NewReader returns a Reader reading entries from src.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// NewDirReader opens every file in dir whose name ends with suffix and
// chains their streams into one logical Reader, in directory listing order.
func NewDirReader(dir, suffix string) (*Reader, func() error, error) {
	entries, err := readDirSuffixed(dir, suffix)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "writelog: listing %s", dir)
	}

	var readers []io.Reader
	var closers []io.Closer
	for _, path := range entries {
		f, err := openFile(path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "writelog: opening %s", path)
		}
		readers = append(readers, f)
		closers = append(closers, f)
	}

	closeAll := func() error {
		var firstErr error
		for _, c := range closers {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	return NewReader(io.MultiReader(readers...)), closeAll, nil
}

// readFull reads exactly len(buf) bytes, or returns an error. A clean EOF
// with len(buf) == 0 is legal and returns nil.
func (r *Reader) readFull(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	off := 0
	for off < len(buf) {
		n, err := r.src.Read(buf[off:])
		if n > 0 {
			off += n
		}
		if err != nil {
			if err == io.EOF {
				if off < len(buf) {
					return errors.New("writelog: could not read enough data")
				}
				break
			}
			return err
		}
	}

	r.bytesRead += uint64(off)
	return nil
}

// ReadEntry returns the next entry's payload as a fresh byte slice, or an
// error (including io.EOF at a clean entry boundary).
func (r *Reader) ReadEntry() ([]byte, error) {
	var lenPrefix [4]byte
	if err := r.readFullLength(lenPrefix[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(lenPrefix[:])
	buf := make([]byte, length)
	if err := r.readFull(buf); err != nil {
		return nil, err
	}

	r.recordsRead++
	return buf, nil
}

// readFullLength is like readFull but reports a clean io.EOF (rather than
// the mid-entry "could not read enough data" error) when the stream ends
// exactly on an entry boundary, i.e. before any byte of this entry's length
// prefix has been read.
func (r *Reader) readFullLength(buf []byte) error {
	off := 0
	for off < len(buf) {
		n, err := r.src.Read(buf[off:])
		if n > 0 {
			off += n
		}
		if err != nil {
			if err == io.EOF {
				if off == 0 {
					return io.EOF
				}
				return errors.New("writelog: could not read enough data")
			}
			return err
		}
	}
	r.bytesRead += uint64(off)
	return nil
}

// Stats returns (records read, bytes read) including length prefixes.
func (r *Reader) Stats() (uint32, uint64) {
	return r.recordsRead, r.bytesRead
}

// Next is the Reader's iterator surface: it returns the next entry, or (nil, false) once any read error (EOF or
// corruption) is encountered. It does not distinguish the two; a record
// reader that hits a torn trailing entry simply treats it as the end of
// this stream.
func (r *Reader) Next() ([]byte, bool) {
	entry, err := r.ReadEntry()
	if err != nil {
		return nil, false
	}
	return entry, true
}
