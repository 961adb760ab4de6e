package cnd

import (
	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/fixedstr"
)

// SectorHeaderSize is the on-disk size of one sector header record.
const SectorHeaderSize = 244

// sectorReservedSize pads the modeled fields out to the full 244-byte
// on-disk record; the source carries unused slack here (reserved/runtime
// fields not needed by the codec).
const sectorReservedSize = 32

// AmbientSound is a sector's optional ambient sound reference.
type AmbientSound struct {
	Name   string
	Volume float32
}

// Sector is one convex cell of level geometry.
type Sector struct {
	Flags            uint32
	AmbientColor     [3]float32
	ExtraColor       [3]float32
	AverageLight     [3]float32
	Tint             [3]float32
	BoundBoxMin      Vector3
	BoundBoxMax      Vector3
	CollideBoxMin    Vector3
	CollideBoxMax    Vector3
	AmbientSound     *AmbientSound
	Center           Vector3
	Radius           float32
	FirstSurfaceIdx  uint32
	SurfacesCount    uint32
	VertexIndices    []uint32
	PVSIndex         OptIndex
	Thrust           Vector3
}

// ParseSectionSectors reads header.Sectors.Num 244-byte sector headers, then
// a u32 total-vertex-index count and that many 32-bit indices, consumed
// sequentially per-sector using each header's VerticesCount.
func ParseSectionSectors(r *bstream.Reader, header *Header) ([]*Sector, error) {
	type rawHeader struct {
		sector        *Sector
		verticesCount uint32
	}
	raws := make([]rawHeader, header.Sectors.Num)

	for i := range raws {
		s := &Sector{}
		var err error
		if s.Flags, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionSectors", "sector %d flags: %w", i, err)
		}
		for _, c := range []*[3]float32{&s.AmbientColor, &s.ExtraColor, &s.AverageLight, &s.Tint} {
			for k := range c {
				if c[k], err = r.ReadF32(); err != nil {
					return nil, errf("parseSectionSectors", "sector %d color: %w", i, err)
				}
			}
		}
		if s.BoundBoxMin, err = readVector3(r); err != nil {
			return nil, errf("parseSectionSectors", "sector %d bound box min: %w", i, err)
		}
		if s.BoundBoxMax, err = readVector3(r); err != nil {
			return nil, errf("parseSectionSectors", "sector %d bound box max: %w", i, err)
		}
		if s.CollideBoxMin, err = readVector3(r); err != nil {
			return nil, errf("parseSectionSectors", "sector %d collide box min: %w", i, err)
		}
		if s.CollideBoxMax, err = readVector3(r); err != nil {
			return nil, errf("parseSectionSectors", "sector %d collide box max: %w", i, err)
		}

		nameBytes, err := r.ReadBytes(fixedstr.ResourceNameSize)
		if err != nil {
			return nil, errf("parseSectionSectors", "sector %d ambient sound name: %w", i, err)
		}
		volume, err := r.ReadF32()
		if err != nil {
			return nil, errf("parseSectionSectors", "sector %d ambient sound volume: %w", i, err)
		}
		if name := fixedstr.Read(nameBytes); name != "" {
			s.AmbientSound = &AmbientSound{Name: name, Volume: volume}
		}

		if s.Center, err = readVector3(r); err != nil {
			return nil, errf("parseSectionSectors", "sector %d center: %w", i, err)
		}
		if s.Radius, err = r.ReadF32(); err != nil {
			return nil, errf("parseSectionSectors", "sector %d radius: %w", i, err)
		}
		if s.FirstSurfaceIdx, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionSectors", "sector %d first surface: %w", i, err)
		}
		if s.SurfacesCount, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionSectors", "sector %d surfaces count: %w", i, err)
		}
		verticesCount, err := r.ReadU32()
		if err != nil {
			return nil, errf("parseSectionSectors", "sector %d vertices count: %w", i, err)
		}
		pvsIdx, err := r.ReadI32()
		if err != nil {
			return nil, errf("parseSectionSectors", "sector %d pvs index: %w", i, err)
		}
		// pvsIdx is treated as persisted and read back, resolving the open
		// question about writeSection_Sectors/parseSection_Sectors disagreeing.
		s.PVSIndex = FromDisk(pvsIdx)
		if s.Thrust, err = readVector3(r); err != nil {
			return nil, errf("parseSectionSectors", "sector %d thrust: %w", i, err)
		}
		if _, err := r.ReadBytes(sectorReservedSize); err != nil {
			return nil, errf("parseSectionSectors", "sector %d reserved: %w", i, err)
		}

		raws[i] = rawHeader{sector: s, verticesCount: verticesCount}
	}

	totalIdx, err := r.ReadU32()
	if err != nil {
		return nil, errf("parseSectionSectors", "vertex index count: %w", err)
	}
	allIdx := make([]uint32, totalIdx)
	for i := range allIdx {
		if allIdx[i], err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionSectors", "vertex index %d: %w", i, err)
		}
	}

	sectors := make([]*Sector, len(raws))
	cursor := 0
	for i, raw := range raws {
		n := int(raw.verticesCount)
		if cursor+n > len(allIdx) {
			return nil, errf("parseSectionSectors", "sector %d requests %d indices, only %d remain", i, n, len(allIdx)-cursor)
		}
		raw.sector.VertexIndices = allIdx[cursor : cursor+n]
		cursor += n
		sectors[i] = raw.sector
	}
	if cursor != len(allIdx) {
		return nil, errf("parseSectionSectors", "vertex index cursor exhaustion: consumed %d of %d", cursor, len(allIdx))
	}

	return sectors, nil
}

// WriteSectionSectors appends the Sectors section.
func WriteSectionSectors(w *bstream.Writer, sectors []*Sector) error {
	for _, s := range sectors {
		w.WriteU32(s.Flags)
		for _, c := range []*[3]float32{&s.AmbientColor, &s.ExtraColor, &s.AverageLight, &s.Tint} {
			for _, v := range c {
				w.WriteF32(v)
			}
		}
		writeVector3(w, s.BoundBoxMin)
		writeVector3(w, s.BoundBoxMax)
		writeVector3(w, s.CollideBoxMin)
		writeVector3(w, s.CollideBoxMax)

		name, volume := "", float32(0)
		if s.AmbientSound != nil {
			name, volume = s.AmbientSound.Name, s.AmbientSound.Volume
		}
		nameBytes, err := fixedstr.WriteResourceName(name)
		if err != nil {
			return errf("writeSectionSectors", "ambient sound name %q: %w", name, err)
		}
		w.Write(nameBytes)
		w.WriteF32(volume)

		writeVector3(w, s.Center)
		w.WriteF32(s.Radius)
		w.WriteU32(s.FirstSurfaceIdx)
		w.WriteU32(s.SurfacesCount)
		w.WriteU32(uint32(len(s.VertexIndices)))
		w.WriteI32(s.PVSIndex.ToDisk())
		writeVector3(w, s.Thrust)
		w.Write(make([]byte, sectorReservedSize))
	}

	var total uint32
	for _, s := range sectors {
		total += uint32(len(s.VertexIndices))
	}
	w.WriteU32(total)
	for _, s := range sectors {
		for _, idx := range s.VertexIndices {
			w.WriteU32(idx)
		}
	}
	return nil
}

// SectorsSectionLength returns the Sectors section's byte length without
// decoding it.
func SectorsSectionLength(r *bstream.Reader, header *Header) (int64, error) {
	saved := r.Tell()
	defer r.Seek(saved)

	fixed := int64(header.Sectors.Num) * SectorHeaderSize
	if err := r.Advance(fixed); err != nil {
		return 0, errf("sectorsSectionLength", "seek past headers: %w", err)
	}
	totalIdx, err := r.ReadU32()
	if err != nil {
		return 0, errf("sectorsSectionLength", "vertex index count: %w", err)
	}
	return fixed + 4 + int64(totalIdx)*4, nil
}
