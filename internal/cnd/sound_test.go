package cnd

import (
	"bytes"
	"testing"

	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/soundcache"
)

func TestSoundSectionRoundTrip(t *testing.T) {
	cache := soundcache.New()
	pathOff, err := cache.AppendString("sound/amb/door.wav")
	if err != nil {
		t.Fatalf("AppendString path: %v", err)
	}
	nameOff, err := cache.AppendString("door_open")
	if err != nil {
		t.Fatalf("AppendString name: %v", err)
	}
	payload := []byte{1, 2, 3, 4, 5, 6}
	payloadOff, err := cache.AppendBytes(payload)
	if err != nil {
		t.Fatalf("AppendBytes payload: %v", err)
	}

	s := &Sound{
		Handle:        1,
		SampleRate:    22050,
		BitsPerSample: 16,
		NumChannels:   1,
		PathOffset:    uint32(pathOff),
		NameOffset:    uint32(nameOff),
		PayloadOffset: uint32(payloadOff),
		PayloadSize:   uint32(len(payload)),
	}

	w := bstream.NewWriter()
	WriteSectionSounds(w, []*Sound{s}, cache)

	gotSounds, gotCache, err := ParseSectionSounds(readerFor(w.Bytes()))
	if err != nil {
		t.Fatalf("ParseSectionSounds: %v", err)
	}
	if len(gotSounds) != 1 {
		t.Fatalf("len(sounds) = %d, want 1", len(gotSounds))
	}
	_ = gotCache

	got := gotSounds[0]
	name, err := got.Name()
	if err != nil || name != "door_open" {
		t.Fatalf("Name() = %q, %v", name, err)
	}
	path, err := got.Path()
	if err != nil || path != "sound/amb/door.wav" {
		t.Fatalf("Path() = %q, %v", path, err)
	}
	gotPayload, err := got.Payload()
	if err != nil || !bytes.Equal(gotPayload, payload) {
		t.Fatalf("Payload() = %v, %v", gotPayload, err)
	}
}

func TestSoundValidateRejectsOutOfOrderOffsets(t *testing.T) {
	cache := soundcache.New()
	nameOff, err := cache.AppendString("x")
	if err != nil {
		t.Fatalf("AppendString: %v", err)
	}

	s := &Sound{
		Handle:     1,
		PathOffset: uint32(nameOff) + 1000, // path after name, and out of range
		NameOffset: uint32(nameOff),
	}

	w := bstream.NewWriter()
	WriteSectionSounds(w, []*Sound{s}, cache)

	if _, _, err := ParseSectionSounds(readerFor(w.Bytes())); err == nil {
		t.Fatal("expected Validate to reject out-of-order path/name offsets")
	}
}

func TestSoundValidateRejectsPayloadOutOfRange(t *testing.T) {
	cache := soundcache.New()
	nameOff, err := cache.AppendString("x")
	if err != nil {
		t.Fatalf("AppendString: %v", err)
	}

	s := &Sound{
		Handle:        1,
		PathOffset:    uint32(nameOff),
		NameOffset:    uint32(nameOff),
		PayloadOffset: uint32(cache.Size()),
		PayloadSize:   1 << 20, // far beyond the arena
	}

	w := bstream.NewWriter()
	WriteSectionSounds(w, []*Sound{s}, cache)

	if _, _, err := ParseSectionSounds(readerFor(w.Bytes())); err == nil {
		t.Fatal("expected Validate to reject an out-of-range payload")
	}
}
