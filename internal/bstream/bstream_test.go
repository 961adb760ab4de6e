package bstream

import (
	"bytes"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32(42)
	w.WriteI32(-7)
	w.WriteF32(3.5)
	w.Write([]byte("hi"))

	r := NewReader(bytes.NewReader(w.Bytes()), w.Tell())

	u, err := r.ReadU32()
	if err != nil || u != 42 {
		t.Fatalf("ReadU32 = %d, %v", u, err)
	}
	i, err := r.ReadI32()
	if err != nil || i != -7 {
		t.Fatalf("ReadI32 = %d, %v", i, err)
	}
	f, err := r.ReadF32()
	if err != nil || f != 3.5 {
		t.Fatalf("ReadF32 = %v, %v", f, err)
	}
	b, err := r.ReadBytes(2)
	if err != nil || string(b) != "hi" {
		t.Fatalf("ReadBytes = %q, %v", b, err)
	}
}

func TestSeekTellAdvance(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	r := NewReader(bytes.NewReader(data), int64(len(data)))

	if r.Tell() != 0 {
		t.Fatalf("initial Tell = %d", r.Tell())
	}
	if err := r.Advance(2); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if r.Tell() != 2 {
		t.Fatalf("Tell after Advance = %d", r.Tell())
	}
	v, err := r.ReadU8()
	if err != nil || v != 3 {
		t.Fatalf("ReadU8 = %d, %v", v, err)
	}
	if err := r.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if r.Tell() != 0 {
		t.Fatalf("Tell after Seek = %d", r.Tell())
	}
}

func TestShortReadFails(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}), 2)
	if _, err := r.ReadU32(); err == nil {
		t.Fatal("expected short-read error")
	}
}

func TestPeekDoesNotMoveCursor(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	r := NewReader(bytes.NewReader(data), int64(len(data)))
	if _, err := r.Peek(2); err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if r.Tell() != 0 {
		t.Fatalf("Tell after Peek = %d, want 0", r.Tell())
	}
}

func TestCopyRangeRestoresCursor(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	r := NewReader(bytes.NewReader(data), int64(len(data)))
	if err := r.Advance(3); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	var out bytes.Buffer
	if err := r.CopyRange(&out, 0, 4); err != nil {
		t.Fatalf("CopyRange: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data[:4]) {
		t.Fatalf("copied %v, want %v", out.Bytes(), data[:4])
	}
	if r.Tell() != 3 {
		t.Fatalf("Tell after CopyRange = %d, want 3", r.Tell())
	}
}

func TestPutU32At(t *testing.T) {
	w := NewWriter()
	w.WriteU32(0)
	w.WriteU32(0xdeadbeef)
	if err := w.PutU32At(0, 123); err != nil {
		t.Fatalf("PutU32At: %v", err)
	}

	r := NewReader(bytes.NewReader(w.Bytes()), w.Tell())
	v, _ := r.ReadU32()
	if v != 123 {
		t.Fatalf("patched value = %d, want 123", v)
	}
}
