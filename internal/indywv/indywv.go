// Package indywv decodes the game's proprietary compressed 16-bit PCM audio
// format. It is grounded on original_source/libraries/libim/content/audio/impl/indywv.h,
// translated from the inheritance-free mode/tag dispatch already present
// there into a small explicit state machine, matching the teacher's own
// preference for flat functions over the source's class hierarchy (see
// DESIGN.md).
package indywv

import (
	"encoding/binary"
	"fmt"

	"github.com/ernie/cndtool/internal/bstream"
)

// HeaderSize is the size of the IndyWV file header in bytes.
const HeaderSize = 26

const wvsmTag = "WVSM"

// Header describes the sample format carried by an IndyWV payload.
type Header struct {
	Tag           [6]byte // "INDYWV"
	SampleRate    uint32
	SampleBitSize uint32
	NumChannels   uint32
	DataSize      uint32
	Reserved      uint32
}

// Error reports an unsupported mode or a truncated frame.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("indywv: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// ReadHeader parses the 26-byte IndyWV header from r.
func ReadHeader(r *bstream.Reader) (Header, error) {
	var h Header
	tag, err := r.ReadBytes(6)
	if err != nil {
		return h, &Error{Op: "readHeader", Err: err}
	}
	copy(h.Tag[:], tag)
	if h.SampleRate, err = r.ReadU32(); err != nil {
		return h, &Error{Op: "readHeader", Err: err}
	}
	if h.SampleBitSize, err = r.ReadU32(); err != nil {
		return h, &Error{Op: "readHeader", Err: err}
	}
	if h.NumChannels, err = r.ReadU32(); err != nil {
		return h, &Error{Op: "readHeader", Err: err}
	}
	if h.DataSize, err = r.ReadU32(); err != nil {
		return h, &Error{Op: "readHeader", Err: err}
	}
	if h.Reserved, err = r.ReadU32(); err != nil {
		return h, &Error{Op: "readHeader", Err: err}
	}
	return h, nil
}

// Inflate decodes a compressed IndyWV stream body (the bytes following the
// header) into 16-bit little-endian PCM samples. Only the mode-2/WVSM
// 16-bit frame codec is supported; every other mode combination is a decode
// error, matching the source's own behavior.
func Inflate(r *bstream.Reader) ([]int16, error) {
	uncompressedSize, err := r.ReadU32()
	if err != nil {
		return nil, &Error{Op: "inflate", Err: err}
	}

	u1signed, err := r.ReadI8()
	if err != nil {
		return nil, &Error{Op: "inflate", Err: err}
	}
	u2, err := r.ReadU16()
	if err != nil {
		return nil, &Error{Op: "inflate", Err: err}
	}

	var mode int
	var u1 uint8
	if u1signed < 0 {
		u1 = uint8(^u1signed)
		mode = 2
	} else {
		u1 = uint8(u1signed)
		mode = 1
	}
	_ = u1

	if mode != 2 {
		return nil, &Error{Op: "inflate", Err: fmt.Errorf("unsupported mode 1 stream")}
	}

	u3, err := r.ReadU8()
	if err != nil {
		return nil, &Error{Op: "inflate", Err: err}
	}
	u4raw, err := r.ReadU16()
	if err != nil {
		return nil, &Error{Op: "inflate", Err: err}
	}
	u4 := binary.BigEndian.Uint16([]byte{byte(u4raw), byte(u4raw >> 8)})

	if !(u2 == 0x1111 && u3 == 0x64 && u4 == 0x2222) {
		return nil, &Error{Op: "inflate", Err: fmt.Errorf("unsupported mode 2 parameters u2=%#x u3=%#x u4=%#x", u2, u3, u4)}
	}

	tag, err := r.ReadBytes(4)
	if err != nil {
		return nil, &Error{Op: "inflate", Err: err}
	}
	if string(tag) != wvsmTag {
		return nil, &Error{Op: "inflate", Err: fmt.Errorf("missing WVSM tag, got %q", tag)}
	}

	samples := make([]int16, 0, uncompressedSize/2)
	const frameSize = 4096
	remaining := int64(uncompressedSize)
	for remaining > 0 {
		frame := int64(frameSize)
		if remaining < frame {
			frame = remaining
		}
		frameSamples, err := inflateFrame16(r, int(frame))
		if err != nil {
			return nil, err
		}
		samples = append(samples, frameSamples...)
		remaining -= frame
	}
	return samples, nil
}

// inflateFrame16 decodes one nominal 4096-byte (or shorter, for the final
// frame) chunk of the compressed stream into frameSize/2 16-bit samples.
func inflateFrame16(r *bstream.Reader, frameSize int) ([]int16, error) {
	if _, err := r.ReadU16(); err != nil { // leading value, ignored
		return nil, &Error{Op: "inflateFrame", Err: err}
	}
	se, err := r.ReadU8()
	if err != nil {
		return nil, &Error{Op: "inflateFrame", Err: err}
	}
	selo := se & 0x0f
	sehi := se >> 4

	n := frameSize / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		var expander uint8
		if i%2 == 0 {
			expander = sehi
		} else {
			expander = selo
		}

		b, err := r.ReadU8()
		if err != nil {
			return nil, &Error{Op: "inflateFrame", Err: fmt.Errorf("truncated frame at sample %d: %w", i, err)}
		}

		if b == 0x80 {
			raw, err := r.ReadU16()
			if err != nil {
				return nil, &Error{Op: "inflateFrame", Err: fmt.Errorf("truncated raw sample: %w", err)}
			}
			samples[i] = int16(bits16Swap(raw))
		} else {
			samples[i] = int16(int8(b)) << expander
		}
	}
	return samples, nil
}

func bits16Swap(v uint16) uint16 {
	return v<<8 | v>>8
}

// EncodePassthrough writes a fresh IndyWV header followed by data verbatim.
// The format never re-compresses on write: if a Sound already holds IndyWV
// bytes, writing it back out reuses them as-is.
func EncodePassthrough(w *bstream.Writer, h Header, data []byte) {
	w.Write(h.Tag[:])
	w.WriteU32(h.SampleRate)
	w.WriteU32(h.SampleBitSize)
	w.WriteU32(h.NumChannels)
	w.WriteU32(uint32(len(data)))
	w.WriteU32(h.Reserved)
	w.Write(data)
}
