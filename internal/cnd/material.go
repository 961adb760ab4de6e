package cnd

import (
	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/fixedstr"
)

// MaterialHeaderSize is the on-disk size of one material header record.
const MaterialHeaderSize = 136

// ColorFormatSize is the on-disk size of the embedded color-format record.
const ColorFormatSize = 56

// ColorFormat describes how pixels are packed for 16-bit RGB(A) materials.
type ColorFormat struct {
	ColorMode  uint32
	BPP        uint32
	RedBPP     uint32
	GreenBPP   uint32
	BlueBPP    uint32
	RedShl     uint32
	GreenShl   uint32
	BlueShl    uint32
	RedShr     uint32
	GreenShr   uint32
	BlueShr    uint32
	AlphaBPP   uint32
	AlphaShl   uint32
	AlphaShr   uint32
}

// Well-known 16-bit color modes, named as the source's ColorFormat constants.
const (
	ColorModeRGB565   = 0
	ColorModeRGBA4444 = 1
	ColorModeARGB4444 = 2
	ColorModeARGB1555 = 3
)

func readColorFormat(r *bstream.Reader) (ColorFormat, error) {
	var cf ColorFormat
	fields := []*uint32{
		&cf.ColorMode, &cf.BPP, &cf.RedBPP, &cf.GreenBPP, &cf.BlueBPP,
		&cf.RedShl, &cf.GreenShl, &cf.BlueShl, &cf.RedShr, &cf.GreenShr,
		&cf.BlueShr, &cf.AlphaBPP, &cf.AlphaShl, &cf.AlphaShr,
	}
	for _, f := range fields {
		v, err := r.ReadU32()
		if err != nil {
			return cf, err
		}
		*f = v
	}
	return cf, nil
}

func writeColorFormat(w *bstream.Writer, cf ColorFormat) {
	w.WriteU32(cf.ColorMode)
	w.WriteU32(cf.BPP)
	w.WriteU32(cf.RedBPP)
	w.WriteU32(cf.GreenBPP)
	w.WriteU32(cf.BlueBPP)
	w.WriteU32(cf.RedShl)
	w.WriteU32(cf.GreenShl)
	w.WriteU32(cf.BlueShl)
	w.WriteU32(cf.RedShr)
	w.WriteU32(cf.GreenShr)
	w.WriteU32(cf.BlueShr)
	w.WriteU32(cf.AlphaBPP)
	w.WriteU32(cf.AlphaShl)
	w.WriteU32(cf.AlphaShr)
}

// MipLevel is one mipmap level's raw pixel buffer within a cell.
type MipLevel struct {
	Pixels []byte
}

// Cell is one animation frame of a material, holding one buffer per
// mipmap level.
type Cell struct {
	Levels []MipLevel
}

// Material is a fully-resolved texture asset: name, dimensions, color
// format, and cells of mipmap levels.
type Material struct {
	Name        string
	Width       uint32
	HeightVal   uint32
	ColorFormat ColorFormat
	Cells       []Cell
}

// bitmapSize returns the byte size of one mipmap level at the given
// reduction k: (w>>k) * (h>>k) * (bpp/8), per P4, with each shifted
// dimension clamped to at least 1.
func bitmapSize(w, h, bpp uint32, k int) int {
	sw := w >> uint(k)
	sh := h >> uint(k)
	if sw == 0 {
		sw = 1
	}
	if sh == 0 {
		sh = 1
	}
	return int(sw) * int(sh) * int(bpp/8)
}

// materialHeader is the raw 136-byte on-disk layout.
type materialHeader struct {
	Name        [fixedstr.ResourceNameSize]byte
	Width       uint32
	Height      uint32
	NumCells    uint32
	NumLevels   uint32
	ColorFormat ColorFormat
}

// ParseSectionMaterials reads the Materials section: a u32 pixelDataSize,
// header.Materials.Num material headers (136 bytes each), then the
// concatenated pixel-data buffer. Per cell, the byte size of level k is
// bitmapSize(w, h, bpp, k); the sum over every cell/level must equal
// pixelDataSize (P4).
func ParseSectionMaterials(r *bstream.Reader, header *Header) ([]*Material, error) {
	pixelDataSize, err := r.ReadU32()
	if err != nil {
		return nil, errf("parseSectionMaterials", "pixel data size: %w", err)
	}

	rawHeaders := make([]materialHeader, header.Materials.Num)
	for i := range rawHeaders {
		mh := &rawHeaders[i]
		name, err := r.ReadBytes(fixedstr.ResourceNameSize)
		if err != nil {
			return nil, errf("parseSectionMaterials", "header %d name: %w", i, err)
		}
		copy(mh.Name[:], name)
		if mh.Width, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionMaterials", "header %d width: %w", i, err)
		}
		if mh.Height, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionMaterials", "header %d height: %w", i, err)
		}
		if mh.NumCells, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionMaterials", "header %d cells: %w", i, err)
		}
		if mh.NumLevels, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionMaterials", "header %d levels: %w", i, err)
		}
		if mh.ColorFormat, err = readColorFormat(r); err != nil {
			return nil, errf("parseSectionMaterials", "header %d color format: %w", i, err)
		}
	}

	materials := make([]*Material, len(rawHeaders))
	var consumed int
	for i, mh := range rawHeaders {
		m := &Material{
			Name:        fixedstr.Read(mh.Name[:]),
			Width:       mh.Width,
			HeightVal:   mh.Height,
			ColorFormat: mh.ColorFormat,
		}
		bpp := mh.ColorFormat.BPP
		m.Cells = make([]Cell, mh.NumCells)
		for c := range m.Cells {
			levels := make([]MipLevel, mh.NumLevels)
			for k := range levels {
				size := bitmapSize(mh.Width, mh.Height, bpp, k)
				buf, err := r.ReadBytes(size)
				if err != nil {
					return nil, errf("parseSectionMaterials", "material %d cell %d level %d pixels: %w", i, c, k, err)
				}
				levels[k] = MipLevel{Pixels: buf}
				consumed += size
			}
			m.Cells[c] = Cell{Levels: levels}
		}
		materials[i] = m
	}

	if uint32(consumed) != pixelDataSize {
		return nil, errf("parseSectionMaterials", "pixel data size mismatch: header says %d, consumed %d", pixelDataSize, consumed)
	}

	return materials, nil
}

// WriteSectionMaterials appends the Materials section.
func WriteSectionMaterials(w *bstream.Writer, materials []*Material) error {
	var pixelDataSize int
	for _, m := range materials {
		for _, c := range m.Cells {
			for _, l := range c.Levels {
				pixelDataSize += len(l.Pixels)
			}
		}
	}

	w.WriteU32(uint32(pixelDataSize))

	for _, m := range materials {
		name, err := fixedstr.WriteResourceName(m.Name)
		if err != nil {
			return errf("writeSectionMaterials", "material %q: %w", m.Name, err)
		}
		w.Write(name)
		w.WriteU32(m.Width)
		w.WriteU32(m.HeightVal)
		w.WriteU32(uint32(len(m.Cells)))
		numLevels := 0
		if len(m.Cells) > 0 {
			numLevels = len(m.Cells[0].Levels)
		}
		w.WriteU32(uint32(numLevels))
		writeColorFormat(w, m.ColorFormat)
	}

	for _, m := range materials {
		for _, c := range m.Cells {
			for _, l := range c.Levels {
				w.Write(l.Pixels)
			}
		}
	}
	return nil
}

// MaterialsSectionLength returns the byte length of the Materials section
// without decoding pixel buffers, for the offset oracle and patcher.
func MaterialsSectionLength(r *bstream.Reader, header *Header) (int64, error) {
	saved := r.Tell()
	defer r.Seek(saved)

	pixelDataSize, err := r.ReadU32()
	if err != nil {
		return 0, errf("materialsSectionLength", "pixel data size: %w", err)
	}
	return 4 + int64(header.Materials.Num)*MaterialHeaderSize + int64(pixelDataSize), nil
}
