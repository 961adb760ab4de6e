package cnd

import (
	"strings"

	"github.com/ernie/cndtool/internal/bstream"
)

// HeaderSize is the fixed on-disk size of the container header.
const HeaderSize = 1568

const (
	copyrightSize = 1216
	pathSize      = 64
	fileVersion   = 3
	reservedSize  = 24
)

// copyrightWatermark is the literal 1,216-byte copyright block every
// container must carry verbatim.
var copyrightWatermark = makeWatermark()

func makeWatermark() [copyrightSize]byte {
	const text = "LucasArts Entertainment Company LLC\n"
	var buf [copyrightSize]byte
	copy(buf[:], strings.Repeat(text, copyrightSize/len(text)+1))
	return buf
}

// SectionCounts is the num/size/pointer triple the header carries for one
// section. Pointer is always zero on disk — the source writes whatever
// pointer happened to be resident in memory; a fresh implementation writes
// zero, per the open question in SPEC_FULL.md.
type SectionCounts struct {
	Num     uint32
	Size    uint32
	Pointer uint32
}

// Header is the container's fixed 1,568-byte leading record.
type Header struct {
	FileSize  uint32
	Copyright [copyrightSize]byte
	Path      [pathSize]byte
	Version   uint32

	WorldFlags   uint32
	Gravity      float32
	HorizonDist  [2]float32
	FogColor     [3]float32
	FogStart     float32
	FogEnd       float32
	FogEnabled   uint32
	Reserved     [reservedSize]byte

	Sounds        SectionCounts
	Materials     SectionCounts
	Vertices      SectionCounts
	TexVertices   SectionCounts
	Adjoins       SectionCounts
	Surfaces      SectionCounts
	Sectors       SectionCounts
	AIClasses     SectionCounts
	Models        SectionCounts
	Sprites       SectionCounts
	Keyframes     SectionCounts
	AnimClasses   SectionCounts
	SoundClasses  SectionCounts
	CogScripts    SectionCounts
	Cogs          SectionCounts
	Templates     SectionCounts
	Things        SectionCounts
	PVS           SectionCounts
}

var headerSectionOrder = func(h *Header) []*SectionCounts {
	return []*SectionCounts{
		&h.Sounds, &h.Materials, &h.Vertices, &h.TexVertices, &h.Adjoins,
		&h.Surfaces, &h.Sectors, &h.AIClasses, &h.Models, &h.Sprites,
		&h.Keyframes, &h.AnimClasses, &h.SoundClasses, &h.CogScripts,
		&h.Cogs, &h.Templates, &h.Things, &h.PVS,
	}
}

// ReadHeader parses and validates the header at the stream's current
// position (expected to be offset 0). The copyright watermark must match
// exactly and Version must equal 3; either mismatch is a fatal format error
// naming this function as the origin, per the failure-semantics table.
func ReadHeader(r *bstream.Reader) (*Header, error) {
	h := &Header{}

	fileSize, err := r.ReadU32()
	if err != nil {
		return nil, errf("readHeader", "file size: %w", err)
	}
	h.FileSize = fileSize

	cr, err := r.ReadBytes(copyrightSize)
	if err != nil {
		return nil, errf("readHeader", "copyright: %w", err)
	}
	copy(h.Copyright[:], cr)
	if string(h.Copyright[:]) != string(copyrightWatermark[:]) {
		return nil, errf("readHeader", "copyright watermark mismatch")
	}

	path, err := r.ReadBytes(pathSize)
	if err != nil {
		return nil, errf("readHeader", "path: %w", err)
	}
	copy(h.Path[:], path)

	if h.Version, err = r.ReadU32(); err != nil {
		return nil, errf("readHeader", "version: %w", err)
	}
	if h.Version != fileVersion {
		return nil, errf("readHeader", "unsupported version %d, want %d", h.Version, fileVersion)
	}

	if h.WorldFlags, err = r.ReadU32(); err != nil {
		return nil, errf("readHeader", "world flags: %w", err)
	}
	if h.Gravity, err = r.ReadF32(); err != nil {
		return nil, errf("readHeader", "gravity: %w", err)
	}
	for i := range h.HorizonDist {
		if h.HorizonDist[i], err = r.ReadF32(); err != nil {
			return nil, errf("readHeader", "horizon distance: %w", err)
		}
	}
	for i := range h.FogColor {
		if h.FogColor[i], err = r.ReadF32(); err != nil {
			return nil, errf("readHeader", "fog color: %w", err)
		}
	}
	if h.FogStart, err = r.ReadF32(); err != nil {
		return nil, errf("readHeader", "fog start: %w", err)
	}
	if h.FogEnd, err = r.ReadF32(); err != nil {
		return nil, errf("readHeader", "fog end: %w", err)
	}
	if h.FogEnabled, err = r.ReadU32(); err != nil {
		return nil, errf("readHeader", "fog enabled: %w", err)
	}
	reserved, err := r.ReadBytes(reservedSize)
	if err != nil {
		return nil, errf("readHeader", "reserved: %w", err)
	}
	copy(h.Reserved[:], reserved)

	for _, sc := range headerSectionOrder(h) {
		if sc.Num, err = r.ReadU32(); err != nil {
			return nil, errf("readHeader", "section count: %w", err)
		}
		if sc.Size, err = r.ReadU32(); err != nil {
			return nil, errf("readHeader", "section size: %w", err)
		}
		if sc.Pointer, err = r.ReadU32(); err != nil {
			return nil, errf("readHeader", "section pointer: %w", err)
		}
		if sc.Num > sc.Size {
			return nil, errf("readHeader", "section count %d exceeds capacity %d", sc.Num, sc.Size)
		}
	}

	return h, nil
}

// WriteHeader appends the header to w. The Pointer field of every section
// is always emitted as zero regardless of what the in-memory Header holds,
// since its on-disk semantics are undefined.
func WriteHeader(w *bstream.Writer, h *Header) {
	w.WriteU32(h.FileSize)
	w.Write(copyrightWatermark[:])
	w.Write(h.Path[:])
	w.WriteU32(fileVersion)
	w.WriteU32(h.WorldFlags)
	w.WriteF32(h.Gravity)
	for _, v := range h.HorizonDist {
		w.WriteF32(v)
	}
	for _, v := range h.FogColor {
		w.WriteF32(v)
	}
	w.WriteF32(h.FogStart)
	w.WriteF32(h.FogEnd)
	w.WriteU32(h.FogEnabled)
	w.Write(h.Reserved[:])

	for _, sc := range headerSectionOrder(h) {
		w.WriteU32(sc.Num)
		w.WriteU32(sc.Size)
		w.WriteU32(0) // pointer fields are meaningless on disk
	}
}

// fileSizeOffset is the byte offset of the fileSize field, used by the
// in-place patcher to rewrite it after splicing a section.
const fileSizeOffset = 0
