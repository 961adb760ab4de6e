package cnd

import "testing"

// fixtureContainer returns a parsed container with a mix of populated and
// empty sections, built via WriteContainer/ParseContainer so the header
// counts genuinely match the encoded bytes.
func fixtureContainer(t *testing.T) ([]byte, *Header) {
	t.Helper()
	c := emptyContainer()
	c.AIClasses = []string{"trooper"}
	c.Models = []string{"model01.3do", "model02.3do"}
	c.SoundClasses = []string{"footsteps"}

	data, err := WriteContainer(c)
	if err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}
	got, err := ParseContainer(readerFor(data))
	if err != nil {
		t.Fatalf("ParseContainer: %v", err)
	}
	return data, got.Header
}

func TestOffsetSoundsIsHeaderSize(t *testing.T) {
	data, header := fixtureContainer(t)
	r := readerFor(data)

	off, err := OffsetSounds(r, header)
	if err != nil {
		t.Fatalf("OffsetSounds: %v", err)
	}
	if off != HeaderSize {
		t.Fatalf("OffsetSounds = %d, want %d", off, HeaderSize)
	}
}

func TestOffsetsAreMonotonicallyIncreasing(t *testing.T) {
	data, header := fixtureContainer(t)
	r := readerFor(data)

	fns := []struct {
		name string
		fn   func() (int64, error)
	}{
		{"Sounds", func() (int64, error) { return OffsetSounds(r, header) }},
		{"Materials", func() (int64, error) { return OffsetMaterials(r, header) }},
		{"Georesource", func() (int64, error) { return OffsetGeoresource(r, header) }},
		{"Sectors", func() (int64, error) { return OffsetSectors(r, header) }},
		{"AIClasses", func() (int64, error) { return OffsetAIClasses(r, header) }},
		{"Models", func() (int64, error) { return OffsetModels(r, header) }},
		{"Sprites", func() (int64, error) { return OffsetSprites(r, header) }},
		{"Keyframes", func() (int64, error) { return OffsetKeyframes(r, header) }},
		{"AnimClasses", func() (int64, error) { return OffsetAnimClasses(r, header) }},
		{"SoundClasses", func() (int64, error) { return OffsetSoundClasses(r, header) }},
		{"CogScripts", func() (int64, error) { return OffsetCogScripts(r, header) }},
		{"Cogs", func() (int64, error) { return OffsetCogs(r, header) }},
		{"Templates", func() (int64, error) { return OffsetTemplates(r, header) }},
		{"Things", func() (int64, error) { return OffsetThings(r, header) }},
		{"PVS", func() (int64, error) { return OffsetPVS(r, header) }},
	}

	var prev int64 = -1
	for _, f := range fns {
		off, err := f.fn()
		if err != nil {
			t.Fatalf("Offset%s: %v", f.name, err)
		}
		if off < prev {
			t.Fatalf("Offset%s = %d, not >= previous section's offset %d", f.name, off, prev)
		}
		prev = off
	}
	if prev >= int64(len(data)) {
		t.Fatalf("OffsetPVS = %d, want < file length %d", prev, len(data))
	}
}

func TestOffsetPreservesCursor(t *testing.T) {
	data, header := fixtureContainer(t)
	r := readerFor(data)

	if err := r.Advance(17); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if _, err := OffsetThings(r, header); err != nil {
		t.Fatalf("OffsetThings: %v", err)
	}
	if r.Tell() != 17 {
		t.Fatalf("cursor after OffsetThings = %d, want 17 (P3 violated)", r.Tell())
	}

	if _, err := OffsetPVS(r, header); err != nil {
		t.Fatalf("OffsetPVS: %v", err)
	}
	if r.Tell() != 17 {
		t.Fatalf("cursor after OffsetPVS = %d, want 17 (P3 violated)", r.Tell())
	}
}
