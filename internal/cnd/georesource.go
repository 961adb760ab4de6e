package cnd

import "github.com/ernie/cndtool/internal/bstream"

// On-disk record sizes for the Georesource section.
const (
	AdjoinSize     = 12
	SurfaceHdrSize = 56
	SurfaceVertSize = 24
)

// Adjoin is a portal between two sectors: flags, an optional mirror index
// into the owning adjoin array (the on-disk -1 sentinel maps to absent, per
// the design note on the mirror pointer cycle), and a distance.
type Adjoin struct {
	Flags    uint32
	Mirror   OptIndex
	Distance float32
}

// FaceVertex pairs a geometry vertex index with an optional texture-vertex
// index and a per-vertex intensity color.
type FaceVertex struct {
	VertexIndex  uint32
	TexVertIndex OptIndex
	Intensity    [4]float32
}

// Surface is one polygon of sector geometry.
type Surface struct {
	MaterialIndex OptIndex
	SurfaceFlags  uint32
	FaceFlags     uint32
	GeometryMode  uint32
	LightMode     uint32
	AdjoinIndex   OptIndex
	ExtraLight    [4]float32
	Normal        Vector3
	Vertices      []FaceVertex
}

// Georesource holds the vertex/tex-vertex/adjoin/surface data shared by all
// sectors in a container.
type Georesource struct {
	Vertices    []Vector3
	TexVertices []Vector2
	Adjoins     []Adjoin
	Surfaces    []Surface
}

// ParseSectionGeoresource reads: num vertices (12B each), num tex-verts (8B
// each), num adjoins (12B each), num surface headers (56B each), then a u32
// face-vertex count and that many 24-byte face-vertex records, consumed by
// each surface sequentially using its own vertex count. A final
// cursor-exhaustion check (P5-shaped, though Georesource has one cursor
// rather than eleven) must hold.
func ParseSectionGeoresource(r *bstream.Reader, header *Header) (*Georesource, error) {
	g := &Georesource{}

	g.Vertices = make([]Vector3, header.Vertices.Num)
	for i := range g.Vertices {
		v, err := readVector3(r)
		if err != nil {
			return nil, errf("parseSectionGeoresource", "vertex %d: %w", i, err)
		}
		g.Vertices[i] = v
	}

	g.TexVertices = make([]Vector2, header.TexVertices.Num)
	for i := range g.TexVertices {
		x, err := r.ReadF32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "tex vertex %d: %w", i, err)
		}
		y, err := r.ReadF32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "tex vertex %d: %w", i, err)
		}
		g.TexVertices[i] = Vector2{X: x, Y: y}
	}

	g.Adjoins = make([]Adjoin, header.Adjoins.Num)
	for i := range g.Adjoins {
		flags, err := r.ReadU32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "adjoin %d flags: %w", i, err)
		}
		mirror, err := r.ReadI32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "adjoin %d mirror: %w", i, err)
		}
		dist, err := r.ReadF32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "adjoin %d distance: %w", i, err)
		}
		g.Adjoins[i] = Adjoin{Flags: flags, Mirror: FromDisk(mirror), Distance: dist}
	}

	numVerts := make([]uint32, header.Surfaces.Num)
	surfaces := make([]Surface, header.Surfaces.Num)
	for i := range surfaces {
		s := &surfaces[i]
		matIdx, err := r.ReadI32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "surface %d material: %w", i, err)
		}
		s.MaterialIndex = FromDisk(matIdx)
		if s.SurfaceFlags, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionGeoresource", "surface %d flags: %w", i, err)
		}
		if s.FaceFlags, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionGeoresource", "surface %d face flags: %w", i, err)
		}
		if s.GeometryMode, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionGeoresource", "surface %d geo mode: %w", i, err)
		}
		if s.LightMode, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionGeoresource", "surface %d light mode: %w", i, err)
		}
		adjIdx, err := r.ReadI32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "surface %d adjoin: %w", i, err)
		}
		s.AdjoinIndex = FromDisk(adjIdx)
		for k := range s.ExtraLight {
			if s.ExtraLight[k], err = r.ReadF32(); err != nil {
				return nil, errf("parseSectionGeoresource", "surface %d extra light: %w", i, err)
			}
		}
		if s.Normal, err = readVector3(r); err != nil {
			return nil, errf("parseSectionGeoresource", "surface %d normal: %w", i, err)
		}
		n, err := r.ReadU32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "surface %d vertex count: %w", i, err)
		}
		numVerts[i] = n
	}

	totalFaceVerts, err := r.ReadU32()
	if err != nil {
		return nil, errf("parseSectionGeoresource", "face vertex count: %w", err)
	}

	faceVerts := make([]FaceVertex, totalFaceVerts)
	for i := range faceVerts {
		vidx, err := r.ReadU32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "face vertex %d index: %w", i, err)
		}
		tvidx, err := r.ReadI32()
		if err != nil {
			return nil, errf("parseSectionGeoresource", "face vertex %d tex index: %w", i, err)
		}
		var intensity [4]float32
		for k := range intensity {
			if intensity[k], err = r.ReadF32(); err != nil {
				return nil, errf("parseSectionGeoresource", "face vertex %d intensity: %w", i, err)
			}
		}
		faceVerts[i] = FaceVertex{VertexIndex: vidx, TexVertIndex: FromDisk(tvidx), Intensity: intensity}
	}

	cursor := 0
	for i := range surfaces {
		n := int(numVerts[i])
		if cursor+n > len(faceVerts) {
			return nil, errf("parseSectionGeoresource", "surface %d requests %d face vertices, only %d remain", i, n, len(faceVerts)-cursor)
		}
		surfaces[i].Vertices = faceVerts[cursor : cursor+n]
		cursor += n
	}
	if cursor != len(faceVerts) {
		return nil, errf("parseSectionGeoresource", "face vertex cursor exhaustion: consumed %d of %d", cursor, len(faceVerts))
	}

	g.Surfaces = surfaces
	return g, nil
}

func readVector3(r *bstream.Reader) (Vector3, error) {
	x, err := r.ReadF32()
	if err != nil {
		return Vector3{}, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return Vector3{}, err
	}
	z, err := r.ReadF32()
	if err != nil {
		return Vector3{}, err
	}
	return Vector3{X: x, Y: y, Z: z}, nil
}

func writeVector3(w *bstream.Writer, v Vector3) {
	w.WriteF32(v.X)
	w.WriteF32(v.Y)
	w.WriteF32(v.Z)
}

// WriteSectionGeoresource appends the Georesource section.
func WriteSectionGeoresource(w *bstream.Writer, g *Georesource) {
	for _, v := range g.Vertices {
		writeVector3(w, v)
	}
	for _, v := range g.TexVertices {
		w.WriteF32(v.X)
		w.WriteF32(v.Y)
	}
	for _, a := range g.Adjoins {
		w.WriteU32(a.Flags)
		w.WriteI32(a.Mirror.ToDisk())
		w.WriteF32(a.Distance)
	}
	for _, s := range g.Surfaces {
		w.WriteI32(s.MaterialIndex.ToDisk())
		w.WriteU32(s.SurfaceFlags)
		w.WriteU32(s.FaceFlags)
		w.WriteU32(s.GeometryMode)
		w.WriteU32(s.LightMode)
		w.WriteI32(s.AdjoinIndex.ToDisk())
		for _, v := range s.ExtraLight {
			w.WriteF32(v)
		}
		writeVector3(w, s.Normal)
		w.WriteU32(uint32(len(s.Vertices)))
	}

	var total uint32
	for _, s := range g.Surfaces {
		total += uint32(len(s.Vertices))
	}
	w.WriteU32(total)
	for _, s := range g.Surfaces {
		for _, fv := range s.Vertices {
			w.WriteU32(fv.VertexIndex)
			w.WriteI32(fv.TexVertIndex.ToDisk())
			for _, v := range fv.Intensity {
				w.WriteF32(v)
			}
		}
	}
}

// GeoresourceSectionLength returns the Georesource section's byte length
// without decoding it, for the offset oracle and patcher.
func GeoresourceSectionLength(r *bstream.Reader, header *Header) (int64, error) {
	saved := r.Tell()
	defer r.Seek(saved)

	fixed := int64(header.Vertices.Num)*12 +
		int64(header.TexVertices.Num)*8 +
		int64(header.Adjoins.Num)*AdjoinSize +
		int64(header.Surfaces.Num)*SurfaceHdrSize

	if err := r.Advance(fixed); err != nil {
		return 0, errf("georesourceSectionLength", "seek past fixed region: %w", err)
	}
	totalFaceVerts, err := r.ReadU32()
	if err != nil {
		return 0, errf("georesourceSectionLength", "face vertex count: %w", err)
	}
	return fixed + 4 + int64(totalFaceVerts)*SurfaceVertSize, nil
}
