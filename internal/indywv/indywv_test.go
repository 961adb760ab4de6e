package indywv

import (
	"bytes"
	"testing"

	"github.com/ernie/cndtool/internal/bstream"
)

func TestReadHeader(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf[0:6], "INDYWV")
	buf[6], buf[7], buf[8], buf[9] = 0x44, 0xac, 0, 0 // sampleRate = 44100
	buf[10] = 16                                      // sampleBitSize
	buf[14] = 1                                       // numChannels

	r := bstream.NewReader(bytes.NewReader(buf), int64(len(buf)))
	h, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if string(h.Tag[:]) != "INDYWV" {
		t.Fatalf("Tag = %q", h.Tag)
	}
	if h.SampleRate != 0xac44 {
		t.Fatalf("SampleRate = %d, want %d", h.SampleRate, 0xac44)
	}
}

func TestInflateMode2Frame(t *testing.T) {
	var body []byte
	putU32 := func(v uint32) {
		body = append(body, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	putU16 := func(v uint16) {
		body = append(body, byte(v), byte(v>>8))
	}

	putU32(2) // uncompressedSize: one 2-byte frame, one sample
	body = append(body, 0xFF)        // u1 signed = -1 => mode 2, u1 = 0
	putU16(0x1111)                   // u2
	body = append(body, 0x64)        // u3
	body = append(body, 0x22, 0x22)  // u4 bytes (byte-swap-invariant since equal)
	body = append(body, []byte("WVSM")...)

	// frame: leading u16 (ignored), expander byte, one 8-bit coded sample byte
	putU16(0)
	body = append(body, 0x00) // se: selo=0, sehi=0
	body = append(body, 5)    // sample byte, not the 0x80 raw-sample sentinel

	r := bstream.NewReader(bytes.NewReader(body), int64(len(body)))
	samples, err := Inflate(r)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if len(samples) != 1 || samples[0] != 5 {
		t.Fatalf("samples = %v, want [5]", samples)
	}
}

func TestInflateMode1Rejected(t *testing.T) {
	var body []byte
	putU32 := func(v uint32) {
		body = append(body, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	putU16 := func(v uint16) {
		body = append(body, byte(v), byte(v>>8))
	}
	putU32(0)
	body = append(body, 0x01) // u1 signed = 1 (>= 0) => mode 1, unsupported
	putU16(0)

	r := bstream.NewReader(bytes.NewReader(body), int64(len(body)))
	if _, err := Inflate(r); err == nil {
		t.Fatal("expected mode-1 stream to be rejected")
	}
}

func TestEncodePassthroughRoundTrip(t *testing.T) {
	h := Header{SampleRate: 22050, SampleBitSize: 16, NumChannels: 1}
	copy(h.Tag[:], "INDYWV")
	data := []byte{1, 2, 3, 4}

	w := bstream.NewWriter()
	EncodePassthrough(w, h, data)

	r := bstream.NewReader(bytes.NewReader(w.Bytes()), w.Tell())
	got, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got.SampleRate != h.SampleRate || got.DataSize != uint32(len(data)) {
		t.Fatalf("round-tripped header mismatch: %+v", got)
	}
	gotData, err := r.ReadBytes(len(data))
	if err != nil || !bytes.Equal(gotData, data) {
		t.Fatalf("round-tripped data = %v, err %v", gotData, err)
	}
}
