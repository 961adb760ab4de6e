package soundcache

import "testing"

func TestAppendBytesAndGet(t *testing.T) {
	c := New()
	off, err := c.AppendBytes([]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("AppendBytes: %v", err)
	}
	if off != 0 {
		t.Fatalf("offset = %d, want 0", off)
	}
	got, err := c.GetBytes(off, 3)
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if string(got) != "\x01\x02\x03" {
		t.Fatalf("got %v", got)
	}
}

func TestAppendStringRoundTrip(t *testing.T) {
	c := New()
	off, err := c.AppendString("sound/door.wav")
	if err != nil {
		t.Fatalf("AppendString: %v", err)
	}
	s, err := c.GetString(off)
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if s != "sound/door.wav" {
		t.Fatalf("GetString = %q", s)
	}
}

func TestAppendAlignsTo4Bytes(t *testing.T) {
	c := New()
	if _, err := c.AppendBytes([]byte{1, 2, 3}); err != nil {
		t.Fatalf("AppendBytes: %v", err)
	}
	off, err := c.AppendBytes([]byte{9})
	if err != nil {
		t.Fatalf("AppendBytes: %v", err)
	}
	if off%alignment != 0 {
		t.Fatalf("second append offset %d not 4-byte aligned", off)
	}
}

func TestGetBytesOutOfRange(t *testing.T) {
	c := New()
	if _, err := c.AppendBytes([]byte{1, 2}); err != nil {
		t.Fatalf("AppendBytes: %v", err)
	}
	if _, err := c.GetBytes(0, 10); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestReleaseThenAccessFails(t *testing.T) {
	c := New()
	off, _ := c.AppendBytes([]byte{1})
	c.Release()
	if _, err := c.GetBytes(off, 1); err == nil {
		t.Fatal("expected error reading from a released cache")
	}
}
