package ndy

import (
	"bytes"
	"strings"
	"testing"
)

func TestWorldRoundTrip(t *testing.T) {
	doc := &Document{}
	doc.Sections = append(doc.Sections, NewCopyrightSection())
	want := &World{
		Gravity:     -980.0,
		HorizonDist: Vector3{X: 1, Y: 2, Z: 3},
		FogColor:    Vector3{X: 0.5, Y: 0.5, Z: 0.5},
		FogStart:    10,
		FogEnd:      1000,
		FogEnabled:  true,
	}
	WriteWorld(doc, want)

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reparsed, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := ParseWorld(reparsed)
	if err != nil {
		t.Fatalf("ParseWorld: %v", err)
	}

	if got.Gravity != want.Gravity || got.FogStart != want.FogStart || got.FogEnd != want.FogEnd {
		t.Fatalf("scalar fields = %+v, want %+v", got, want)
	}
	if got.HorizonDist != want.HorizonDist || got.FogColor != want.FogColor {
		t.Fatalf("vector fields = %+v, want %+v", got, want)
	}
	if got.FogEnabled != want.FogEnabled {
		t.Fatalf("FogEnabled = %v, want %v", got.FogEnabled, want.FogEnabled)
	}
}

func TestNameListRoundTrip(t *testing.T) {
	doc := &Document{}
	names := []string{"trooper", "droid", "wampa"}
	WriteNameList(doc, "AICLASSES", names)

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reparsed, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := ParseNameList(reparsed, "AICLASSES")
	if len(got) != len(names) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(names))
	}
	for i, n := range names {
		if got[i] != n {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], n)
		}
	}
}

func TestParseStripsCommentsAndBlankLines(t *testing.T) {
	src := `SECTION: WORLD
// a comment line
world gravity: -980.000000   // inline comment

horizon distance: (0.000000/0.000000/0.000000)
fog color: (0.000000/0.000000/0.000000)
fog start: 0.00000000
fog end: 0.00000000
fog enabled: 0x0
`
	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w, err := ParseWorld(doc)
	if err != nil {
		t.Fatalf("ParseWorld: %v", err)
	}
	if w.Gravity != -980.0 {
		t.Fatalf("Gravity = %v, want -980", w.Gravity)
	}
	if w.FogEnabled {
		t.Fatal("FogEnabled should be false for 0x0")
	}
}

func TestCopyrightMismatchRejected(t *testing.T) {
	var src strings.Builder
	src.WriteString("SECTION: COPYRIGHT\n")
	for i := 0; i < copyrightLines; i++ {
		src.WriteString("not the right watermark line\n")
	}
	if _, err := Parse(strings.NewReader(src.String())); err == nil {
		t.Fatal("expected a copyright watermark mismatch error")
	}
}
