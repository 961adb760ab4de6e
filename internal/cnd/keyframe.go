package cnd

import (
	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/fixedstr"
)

// On-disk record sizes for the Keyframes (animation) section, grounded on
// original_source/.../animation/cnd_key_structs.h.
const (
	KeyHeaderSize     = 92
	KeyNodeSize       = 72
	KeyMarkerSize     = 8
	KeyNodeEntrySize  = 56
	MaxKeyMarkers     = 16
)

// KeyMarker is a single named point in time within an animation.
type KeyMarker struct {
	Frame float32
	Type  uint32
}

// KeyNodeEntry is one keyframe sample: a joint number, flags, and the
// position/orientation (plus derivatives) at that frame.
type KeyNodeEntry struct {
	Number  uint32
	Flags   uint32
	Pos     Vector3
	DPos    Vector3
	Rot     Rotator
	DRot    Rotator
}

// KeyNode binds a mesh name and joint index to its list of keyframe entries.
type KeyNode struct {
	MeshName string
	Num      uint32
	Entries  []KeyNodeEntry
}

// Animation is one parsed KEY/keyframe asset.
type Animation struct {
	Name    string
	Flags   uint32
	Type    uint32
	Frames  uint32
	FPS     float32
	Joints  uint32
	Markers []KeyMarker
	Nodes   []KeyNode
}

// ParseSectionKeyframes reads the Keyframes section: if header.Keyframes.Num
// is zero, no animations are present and no further bytes are consumed.
// Otherwise a 3-element u32 prefix gives the total marker/node/entry counts,
// followed by header.Keyframes.Num 92-byte headers, then the marker, node
// and node-entry side arrays, consumed per-animation/per-node via cursors
// that must be fully exhausted at the end (mirroring the Things section's
// side-array discipline, on a smaller scale).
func ParseSectionKeyframes(r *bstream.Reader, header *Header) ([]*Animation, error) {
	if header.Keyframes.Num < 1 {
		return nil, nil
	}

	var aNumEntries [3]uint32
	for i := range aNumEntries {
		v, err := r.ReadU32()
		if err != nil {
			return nil, errf("parseSectionKeyframes", "entry count %d: %w", i, err)
		}
		aNumEntries[i] = v
	}
	numMarkers, numNodes, numEntries := aNumEntries[0], aNumEntries[1], aNumEntries[2]

	type rawHeader struct {
		name                          string
		flags, typ, frames            uint32
		fps                           float32
		numMarkers, numJoints, numNodes uint32
	}
	raws := make([]rawHeader, header.Keyframes.Num)
	for i := range raws {
		nameBytes, err := r.ReadBytes(fixedstr.ResourceNameSize)
		if err != nil {
			return nil, errf("parseSectionKeyframes", "header %d name: %w", i, err)
		}
		h := rawHeader{name: fixedstr.Read(nameBytes)}
		if h.flags, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionKeyframes", "header %d flags: %w", i, err)
		}
		if h.typ, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionKeyframes", "header %d type: %w", i, err)
		}
		if h.frames, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionKeyframes", "header %d frames: %w", i, err)
		}
		if h.fps, err = r.ReadF32(); err != nil {
			return nil, errf("parseSectionKeyframes", "header %d fps: %w", i, err)
		}
		if h.numMarkers, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionKeyframes", "header %d numMarkers: %w", i, err)
		}
		if h.numMarkers > MaxKeyMarkers {
			return nil, errf("parseSectionKeyframes", "header %d has %d markers, max %d", i, h.numMarkers, MaxKeyMarkers)
		}
		if h.numJoints, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionKeyframes", "header %d numJoints: %w", i, err)
		}
		if h.numNodes, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionKeyframes", "header %d numNodes: %w", i, err)
		}
		raws[i] = h
	}

	markers := make([]KeyMarker, numMarkers)
	for i := range markers {
		frame, err := r.ReadF32()
		if err != nil {
			return nil, errf("parseSectionKeyframes", "marker %d frame: %w", i, err)
		}
		typ, err := r.ReadU32()
		if err != nil {
			return nil, errf("parseSectionKeyframes", "marker %d type: %w", i, err)
		}
		markers[i] = KeyMarker{Frame: frame, Type: typ}
	}

	type rawNode struct {
		meshName   string
		num        uint32
		numEntries uint32
	}
	nodes := make([]rawNode, numNodes)
	for i := range nodes {
		nameBytes, err := r.ReadBytes(fixedstr.ResourceNameSize)
		if err != nil {
			return nil, errf("parseSectionKeyframes", "node %d mesh name: %w", i, err)
		}
		num, err := r.ReadU32()
		if err != nil {
			return nil, errf("parseSectionKeyframes", "node %d num: %w", i, err)
		}
		ne, err := r.ReadU32()
		if err != nil {
			return nil, errf("parseSectionKeyframes", "node %d numEntries: %w", i, err)
		}
		nodes[i] = rawNode{meshName: fixedstr.Read(nameBytes), num: num, numEntries: ne}
	}

	entries := make([]KeyNodeEntry, numEntries)
	for i := range entries {
		e := KeyNodeEntry{}
		var err error
		if e.Number, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionKeyframes", "entry %d number: %w", i, err)
		}
		if e.Flags, err = r.ReadU32(); err != nil {
			return nil, errf("parseSectionKeyframes", "entry %d flags: %w", i, err)
		}
		if e.Pos, err = readVector3(r); err != nil {
			return nil, errf("parseSectionKeyframes", "entry %d pos: %w", i, err)
		}
		if e.DPos, err = readVector3(r); err != nil {
			return nil, errf("parseSectionKeyframes", "entry %d dpos: %w", i, err)
		}
		rot, err := readVector3(r)
		if err != nil {
			return nil, errf("parseSectionKeyframes", "entry %d rot: %w", i, err)
		}
		e.Rot = Rotator{Pitch: rot.X, Yaw: rot.Y, Roll: rot.Z}
		drot, err := readVector3(r)
		if err != nil {
			return nil, errf("parseSectionKeyframes", "entry %d drot: %w", i, err)
		}
		e.DRot = Rotator{Pitch: drot.X, Yaw: drot.Y, Roll: drot.Z}
		entries[i] = e
	}

	mIdx, nIdx, eIdx := 0, 0, 0
	animations := make([]*Animation, len(raws))
	for i, h := range raws {
		anim := &Animation{
			Name: h.name, Flags: h.flags, Type: h.typ, Frames: h.frames,
			FPS: h.fps, Joints: h.numJoints,
		}

		if mIdx+int(h.numMarkers) > len(markers) {
			return nil, errf("parseSectionKeyframes", "animation %d requests %d markers, only %d remain", i, h.numMarkers, len(markers)-mIdx)
		}
		anim.Markers = append(anim.Markers, markers[mIdx:mIdx+int(h.numMarkers)]...)
		mIdx += int(h.numMarkers)

		anim.Nodes = make([]KeyNode, h.numNodes)
		for j := 0; j < int(h.numNodes); j++ {
			if nIdx >= len(nodes) {
				return nil, errf("parseSectionKeyframes", "animation %d node %d: node list exhausted", i, j)
			}
			rn := nodes[nIdx]
			nIdx++
			if eIdx+int(rn.numEntries) > len(entries) {
				return nil, errf("parseSectionKeyframes", "animation %d node %d requests %d entries, only %d remain", i, j, rn.numEntries, len(entries)-eIdx)
			}
			anim.Nodes[j] = KeyNode{
				MeshName: rn.meshName,
				Num:      rn.num,
				Entries:  append([]KeyNodeEntry(nil), entries[eIdx:eIdx+int(rn.numEntries)]...),
			}
			eIdx += int(rn.numEntries)
		}

		animations[i] = anim
	}

	if mIdx != len(markers) || nIdx != len(nodes) || eIdx != len(entries) {
		return nil, errf("parseSectionKeyframes", "side array cursor exhaustion: markers %d/%d nodes %d/%d entries %d/%d",
			mIdx, len(markers), nIdx, len(nodes), eIdx, len(entries))
	}

	return animations, nil
}

// WriteSectionKeyframes appends the Keyframes section. It enforces
// markers.size() <= 16 on write, as ParseSectionKeyframes does on read.
func WriteSectionKeyframes(w *bstream.Writer, animations []*Animation) error {
	if len(animations) == 0 {
		return nil
	}

	var headers []*Animation
	var markers []KeyMarker
	var nodes []KeyNode
	var entries []KeyNodeEntry

	for _, anim := range animations {
		if len(anim.Markers) > MaxKeyMarkers {
			return errf("writeSectionKeyframes", "animation %q has %d markers, max %d", anim.Name, len(anim.Markers), MaxKeyMarkers)
		}
		headers = append(headers, anim)
		markers = append(markers, anim.Markers...)
		for _, n := range anim.Nodes {
			nodes = append(nodes, n)
			entries = append(entries, n.Entries...)
		}
	}

	w.WriteU32(uint32(len(markers)))
	w.WriteU32(uint32(len(nodes)))
	w.WriteU32(uint32(len(entries)))

	for _, anim := range headers {
		nameBytes, err := fixedstr.WriteResourceName(anim.Name)
		if err != nil {
			return errf("writeSectionKeyframes", "animation name %q: %w", anim.Name, err)
		}
		w.Write(nameBytes)
		w.WriteU32(anim.Flags)
		w.WriteU32(anim.Type)
		w.WriteU32(anim.Frames)
		w.WriteF32(anim.FPS)
		w.WriteU32(uint32(len(anim.Markers)))
		w.WriteU32(anim.Joints)
		w.WriteU32(uint32(len(anim.Nodes)))
	}

	for _, m := range markers {
		w.WriteF32(m.Frame)
		w.WriteU32(m.Type)
	}

	for _, anim := range headers {
		for _, n := range anim.Nodes {
			nameBytes, err := fixedstr.WriteResourceName(n.MeshName)
			if err != nil {
				return errf("writeSectionKeyframes", "node mesh name %q: %w", n.MeshName, err)
			}
			w.Write(nameBytes)
			w.WriteU32(n.Num)
			w.WriteU32(uint32(len(n.Entries)))
		}
	}

	for _, e := range entries {
		w.WriteU32(e.Number)
		w.WriteU32(e.Flags)
		writeVector3(w, e.Pos)
		writeVector3(w, e.DPos)
		writeVector3(w, Vector3{X: e.Rot.Pitch, Y: e.Rot.Yaw, Z: e.Rot.Roll})
		writeVector3(w, Vector3{X: e.DRot.Pitch, Y: e.DRot.Yaw, Z: e.DRot.Roll})
	}

	return nil
}

// KeyframesSectionLength returns the Keyframes section's byte length
// without decoding it.
func KeyframesSectionLength(r *bstream.Reader, header *Header) (int64, error) {
	if header.Keyframes.Num < 1 {
		return 0, nil
	}
	saved := r.Tell()
	defer r.Seek(saved)

	var aNumEntries [3]uint32
	for i := range aNumEntries {
		v, err := r.ReadU32()
		if err != nil {
			return 0, errf("keyframesSectionLength", "entry count %d: %w", i, err)
		}
		aNumEntries[i] = v
	}
	return 12 + int64(header.Keyframes.Num)*KeyHeaderSize +
		int64(aNumEntries[0])*KeyMarkerSize +
		int64(aNumEntries[1])*KeyNodeSize +
		int64(aNumEntries[2])*KeyNodeEntrySize, nil
}
