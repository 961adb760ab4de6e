package cnd

import (
	"bytes"
	"testing"

	"github.com/ernie/cndtool/internal/bstream"
)

// emptyContainer builds the smallest well-formed container: a valid header
// and every section empty. Good enough to exercise the write/parse order
// (P1) without needing fixtures for every section codec.
func emptyContainer() *Container {
	return &Container{
		Header:        &Header{},
		Georesource:   &Georesource{},
		Templates:     map[string]*Thing{},
		TemplateOrder: []string{},
	}
}

func readerFor(data []byte) *bstream.Reader {
	return bstream.NewReader(bytes.NewReader(data), int64(len(data)))
}

func TestContainerRoundTrip(t *testing.T) {
	c := emptyContainer()

	data, err := WriteContainer(c)
	if err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}
	if len(data) < HeaderSize {
		t.Fatalf("written container shorter than the header: %d bytes", len(data))
	}

	got, err := ParseContainer(readerFor(data))
	if err != nil {
		t.Fatalf("ParseContainer: %v", err)
	}

	if got.Header.FileSize != uint32(len(data)) {
		t.Fatalf("FileSize = %d, want %d", got.Header.FileSize, len(data))
	}
	if len(got.Sounds) != 0 || len(got.Materials) != 0 || len(got.Sectors) != 0 {
		t.Fatalf("expected all sections empty, got %+v", got)
	}
	if len(got.Things) != 0 || len(got.TemplateOrder) != 0 {
		t.Fatalf("expected no things/templates, got %+v", got)
	}
}

func TestContainerRoundTripPreservesCounts(t *testing.T) {
	c := emptyContainer()
	c.AIClasses = []string{"trooper", "droid"}
	c.Models = []string{"model01.3do"}

	data, err := WriteContainer(c)
	if err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}

	got, err := ParseContainer(readerFor(data))
	if err != nil {
		t.Fatalf("ParseContainer: %v", err)
	}
	if !equalStrings(got.AIClasses, c.AIClasses) {
		t.Fatalf("AIClasses = %v, want %v", got.AIClasses, c.AIClasses)
	}
	if !equalStrings(got.Models, c.Models) {
		t.Fatalf("Models = %v, want %v", got.Models, c.Models)
	}
	if got.Header.AIClasses.Num != uint32(len(c.AIClasses)) {
		t.Fatalf("header AIClasses.Num = %d, want %d", got.Header.AIClasses.Num, len(c.AIClasses))
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
