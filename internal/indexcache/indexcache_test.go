package indexcache

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	fp, data, err := FingerprintReader(strings.NewReader("sounds: 3, materials: 5"))
	if err != nil {
		t.Fatalf("FingerprintReader: %v", err)
	}

	if err := c.Put(fp, data, 1000); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if string(got) != string(data) {
		t.Fatalf("Get() = %q, want %q", got, data)
	}
}

func TestGetMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, ok, err := c.Get("does-not-exist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected a cache miss")
	}
}

func TestPutOverwritesExistingFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	fp, err := Fingerprint([]byte("same key"))
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}

	if err := c.Put(fp, []byte("first"), 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(fp, []byte("second"), 2); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(fp)
	if err != nil || !ok {
		t.Fatalf("Get: %v, ok=%v", err, ok)
	}
	if string(got) != "second" {
		t.Fatalf("Get() = %q, want %q", got, "second")
	}
}
