// Package bstream provides a random-access, little-endian byte stream used
// by the CND/NDY codecs. It wraps a resizable in-memory buffer (for writers)
// or an arbitrary io.ReaderAt (for readers) behind a single cursor-based API,
// the way the teacher packages reach for encoding/binary + io.ReaderAt
// directly at each call site (bsp.go, md3.go) — here that pattern is
// generalized into one reusable type since the CND codec needs it dozens of
// times over.
package bstream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Error is a stream-level failure: a short read/write, a seek past the end,
// or any other I/O problem encountered while moving the cursor.
type Error struct {
	Op       string
	Offset   int64
	Wanted   int
	Got      int
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bstream: %s at offset %d: %v", e.Op, e.Offset, e.Err)
	}
	return fmt.Sprintf("bstream: %s at offset %d: wanted %d bytes, got %d", e.Op, e.Offset, e.Wanted, e.Got)
}

func (e *Error) Unwrap() error { return e.Err }

// Reader is a seekable, cursor-based little-endian reader over an
// io.ReaderAt. It never mutates the underlying data.
type Reader struct {
	r      io.ReaderAt
	cursor int64
	size   int64
}

// NewReader wraps r, whose total addressable size is size bytes.
func NewReader(r io.ReaderAt, size int64) *Reader {
	return &Reader{r: r, size: size}
}

// Tell returns the current cursor position.
func (s *Reader) Tell() int64 { return s.cursor }

// Size returns the total size of the underlying stream.
func (s *Reader) Size() int64 { return s.size }

// Seek moves the cursor to an absolute offset from the start of the stream.
func (s *Reader) Seek(offset int64) error {
	if offset < 0 || offset > s.size {
		return &Error{Op: "seek", Offset: offset, Err: fmt.Errorf("out of range [0, %d]", s.size)}
	}
	s.cursor = offset
	return nil
}

// Advance moves the cursor forward by n bytes.
func (s *Reader) Advance(n int64) error { return s.Seek(s.cursor + n) }

// Read fills buf from the current cursor and advances it, failing the whole
// operation on a short read (reaching EOF mid-read is fatal, per the format's
// failure semantics — there is no such thing as a partial section).
func (s *Reader) Read(buf []byte) error {
	n, err := s.r.ReadAt(buf, s.cursor)
	if n != len(buf) {
		return &Error{Op: "read", Offset: s.cursor, Wanted: len(buf), Got: n, Err: err}
	}
	s.cursor += int64(n)
	return nil
}

// ReadBytes reads and returns a freshly-allocated slice of n bytes.
func (s *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := s.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Peek reads n bytes without moving the cursor.
func (s *Reader) Peek(n int) ([]byte, error) {
	saved := s.cursor
	buf, err := s.ReadBytes(n)
	s.cursor = saved
	return buf, err
}

func (s *Reader) ReadU8() (uint8, error) {
	b, err := s.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *Reader) ReadI8() (int8, error) {
	v, err := s.ReadU8()
	return int8(v), err
}

func (s *Reader) ReadU16() (uint16, error) {
	b, err := s.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *Reader) ReadI16() (int16, error) {
	v, err := s.ReadU16()
	return int16(v), err
}

func (s *Reader) ReadU32() (uint32, error) {
	b, err := s.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *Reader) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

func (s *Reader) ReadF32() (float32, error) {
	v, err := s.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// CopyRange copies bytes [from, to) of this stream into w, restoring this
// stream's cursor afterward. Used by the in-place patcher to stream-copy the
// untouched parts of a container around the patched section.
func (s *Reader) CopyRange(w io.Writer, from, to int64) error {
	saved := s.cursor
	defer func() { s.cursor = saved }()

	if from < 0 || to > s.size || from > to {
		return &Error{Op: "copyRange", Offset: from, Err: fmt.Errorf("invalid range [%d, %d) of %d", from, to, s.size)}
	}

	s.cursor = from
	const chunk = 64 * 1024
	remaining := to - from
	buf := make([]byte, chunk)
	for remaining > 0 {
		n := int64(chunk)
		if remaining < n {
			n = remaining
		}
		if err := s.Read(buf[:n]); err != nil {
			return err
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return &Error{Op: "copyRange", Offset: s.cursor, Err: err}
		}
		remaining -= n
	}
	return nil
}

// Writer is an append-only, in-memory little-endian byte builder. CND/NDY
// writers build a section (or a whole container) into one of these, then
// hand the resulting bytes to the caller or the in-place patcher.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Tell returns the number of bytes written so far.
func (w *Writer) Tell() int64 { return int64(len(w.buf)) }

// Bytes returns the accumulated buffer. The caller must not mutate it.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Write(b []byte) { w.buf = append(w.buf, b...) }

func (w *Writer) WriteU8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) WriteI8(v int8) { w.WriteU8(uint8(v)) }

func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func (w *Writer) WriteI16(v int16) { w.WriteU16(uint16(v)) }

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }

func (w *Writer) WriteF32(v float32) { w.WriteU32(math.Float32bits(v)) }

// PutU32At overwrites the 4 bytes at offset with v, used to patch the
// fileSize and num*/size* header fields after the rest of the output has
// been assembled.
func (w *Writer) PutU32At(offset int64, v uint32) error {
	if offset < 0 || offset+4 > int64(len(w.buf)) {
		return &Error{Op: "putU32At", Offset: offset, Err: fmt.Errorf("out of range")}
	}
	binary.LittleEndian.PutUint32(w.buf[offset:offset+4], v)
	return nil
}
