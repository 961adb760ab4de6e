package cnd

import (
	"testing"

	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/fixedstr"
)

func TestMaterialPixelSizeRoundTrip(t *testing.T) {
	cf := ColorFormat{ColorMode: ColorModeRGB565, BPP: 16}
	m := &Material{
		Name:        "wall01",
		Width:       4,
		HeightVal:   4,
		ColorFormat: cf,
		Cells: []Cell{
			{Levels: []MipLevel{
				{Pixels: make([]byte, bitmapSize(4, 4, 16, 0))}, // 4x4 @ 16bpp = 32
				{Pixels: make([]byte, bitmapSize(4, 4, 16, 1))}, // 2x2 @ 16bpp = 8
			}},
		},
	}

	w := bstream.NewWriter()
	if err := WriteSectionMaterials(w, []*Material{m}); err != nil {
		t.Fatalf("WriteSectionMaterials: %v", err)
	}

	header := &Header{}
	header.Materials.Num = 1
	r := readerFor(w.Bytes())

	got, err := ParseSectionMaterials(r, header)
	if err != nil {
		t.Fatalf("ParseSectionMaterials: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(materials) = %d, want 1", len(got))
	}
	g := got[0]
	if g.Name != "wall01" || g.Width != 4 || g.HeightVal != 4 {
		t.Fatalf("material fields = %+v", g)
	}
	if len(g.Cells) != 1 || len(g.Cells[0].Levels) != 2 {
		t.Fatalf("cells/levels = %+v", g.Cells)
	}
	if len(g.Cells[0].Levels[0].Pixels) != 32 || len(g.Cells[0].Levels[1].Pixels) != 8 {
		t.Fatalf("level sizes = %d, %d", len(g.Cells[0].Levels[0].Pixels), len(g.Cells[0].Levels[1].Pixels))
	}
}

func TestMaterialPixelSizeMismatchRejected(t *testing.T) {
	w := bstream.NewWriter()
	w.WriteU32(999) // pixelDataSize lies about what follows

	name, err := fixedstr.WriteResourceName("wall01")
	if err != nil {
		t.Fatalf("WriteResourceName: %v", err)
	}
	w.Write(name)
	w.WriteU32(4) // width
	w.WriteU32(4) // height
	w.WriteU32(1) // numCells
	w.WriteU32(1) // numLevels
	writeColorFormat(w, ColorFormat{ColorMode: ColorModeRGB565, BPP: 16})
	w.Write(make([]byte, 32)) // the one 4x4@16bpp level, 32 bytes, not 999

	header := &Header{}
	header.Materials.Num = 1
	r := readerFor(w.Bytes())

	if _, err := ParseSectionMaterials(r, header); err == nil {
		t.Fatal("expected a pixel-data-size mismatch error")
	}
}
