package cnd

import (
	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/fixedstr"
)

// On-disk record sizes for the Templates/Things section, grounded on
// original_source/.../thing/cnd_thing.h.
const (
	ThingHeaderSize         = 568
	ThingListSizesSize      = 44
	PhysicsInfoSize         = 64
	ActorInfoSize           = 284
	WeaponInfoSize          = 92
	ExplosionInfoSize       = 1152
	ItemInfoSize            = 8
	ParticleInfoSize        = 100
	AIControlInfoHeaderSize = 68
	PathFrameSize           = 24
	MaxDebrisNames          = 16
)

// MoveType tags which movement variant, if any, follows a Thing header.
type MoveType uint32

const (
	MoveTypeNone MoveType = iota
	MoveTypePhysics
	MoveTypePath
)

// ControlType tags whether an AIControlInfo variant follows a Thing header.
type ControlType uint32

const (
	ControlTypePlot ControlType = iota
	ControlTypePlayer
	ControlTypeAI
	ControlTypeExplosion
	ControlTypeParticle
)

// ThingType tags which "thing info" variant, if any, follows a Thing header.
type ThingType uint32

const (
	ThingTypeFree ThingType = iota
	ThingTypeActor
	ThingTypePlayer
	ThingTypeWeapon
	ThingTypeExplosion
	ThingTypeItem
	ThingTypeHint
	ThingTypeParticle
	ThingTypeOther
)

// Collide describes a Thing's collision volume.
type Collide struct {
	Type     uint32
	MoveSize float32
	Size     float32
	Width    float32
	Height   float32
}

// ThingHeader is the 568-byte fixed portion of every Thing/Template record.
type ThingHeader struct {
	BaseName       string
	Name           string
	Pos            Vector3
	Rot            Rotator
	SectorIdx      int32
	ThingType      ThingType
	ThingFlags     uint32
	MoveType       MoveType
	ControlType    ControlType
	LightColor     [3]float32
	LifetimeMs     float32
	RenderType     uint32
	RenderFile     string
	PuppetFile     string
	SoundFile      string
	CreateThing    string
	CogScript      string
	Collide        Collide
	PerfLevel      uint32
}

// PhysicsInfo is the Physics movement-type variant.
type PhysicsInfo struct {
	Mass            float32
	Drag            float32
	LinearVel       Vector3
	AngularVel      Vector3
	Buoyancy        float32
	StaticRestitution float32
	MaxRotVel       float32
	MaxVel          float32
	Airdrag         float32
	Gravity         float32
	Height          float32
	Reserved        [1]float32
}

// PathFrame is one sample of a path (used both for Path movement and for
// AIControlInfo's path-frame list).
type PathFrame struct {
	Pos Vector3
	Rot Rotator
}

// ActorInfo is the Actor/Player "thing info" variant.
type ActorInfo struct {
	Health       float32
	MaxHealth    float32
	WeaponIdx    int32
	EyeOffset    Vector3
	FireOffset   Vector3
	LightOffset  Vector3
	VoiceColor   [3]float32
	MinHeadTilt  float32
	MaxHeadTilt  float32
	MinHeadTurn  float32
	MaxHeadTurn  float32
	Reserved     [52]float32
}

// WeaponInfo is the Weapon "thing info" variant.
type WeaponInfo struct {
	Damage    float32
	WeaponClass uint32
	Range     float32
	FireRate  float32
	Force     float32
	Reserved  [18]float32
}

// ExplosionInfo is the Explosion "thing info" variant.
type ExplosionInfo struct {
	Damage       float32
	Radius       float32
	Lifetime     float32
	DamageClass  uint32
	DebrisNames  [MaxDebrisNames]string
	SpritePos    Vector3
	Reserved     [25]float32
}

// ItemInfo is the Item "thing info" variant.
type ItemInfo struct {
	Flags   uint32
	Respawn float32
}

// HintUserVal preserves the full f32 bit pattern of a Hint's user value,
// which also carries a "solved" flag at bit 0x40000 in some contexts; the
// bits are kept verbatim rather than decoded into a bool.
type HintUserVal float32

// ParticleInfo is the Particle "thing info" variant.
type ParticleInfo struct {
	MaterialName string
	GrowthSpeed  float32
	MinRadius    float32
	MaxRadius    float32
	Count        uint32
	Reserved     [5]float32
}

// AIControlInfoHeader is the AI control-type variant's fixed part: the AI
// script name plus a path-frame count.
type AIControlInfoHeader struct {
	AIScriptName string
	NumFrames    uint32
}

// Thing is a fully-resolved Thing or Template record plus whichever
// optional variants its header tags select.
type Thing struct {
	Header ThingHeader

	Physics     *PhysicsInfo
	PathFrames  []PathFrame // present iff MoveType == Path

	AIScriptName string
	AIPathFrames []PathFrame // present iff ControlType == AI

	Actor     *ActorInfo
	Weapon    *WeaponInfo
	Explosion *ExplosionInfo
	Item      *ItemInfo
	Hint      *HintUserVal
	Particle  *ParticleInfo
}

func readThingHeader(r *bstream.Reader) (ThingHeader, error) {
	var h ThingHeader
	readName := func(label string) (string, error) {
		b, err := r.ReadBytes(fixedstr.ResourceNameSize)
		if err != nil {
			return "", errf("readThingHeader", "%s: %w", label, err)
		}
		return fixedstr.Read(b), nil
	}

	var err error
	if h.BaseName, err = readName("baseName"); err != nil {
		return h, err
	}
	if h.Name, err = readName("name"); err != nil {
		return h, err
	}
	if h.Pos, err = readVector3(r); err != nil {
		return h, errf("readThingHeader", "pos: %w", err)
	}
	rot, err := readVector3(r)
	if err != nil {
		return h, errf("readThingHeader", "rot: %w", err)
	}
	h.Rot = Rotator{Pitch: rot.X, Yaw: rot.Y, Roll: rot.Z}

	sectorIdx, err := r.ReadI32()
	if err != nil {
		return h, errf("readThingHeader", "sectorIdx: %w", err)
	}
	h.SectorIdx = sectorIdx

	thingType, err := r.ReadU32()
	if err != nil {
		return h, errf("readThingHeader", "thingType: %w", err)
	}
	h.ThingType = ThingType(thingType)

	if h.ThingFlags, err = r.ReadU32(); err != nil {
		return h, errf("readThingHeader", "thingFlags: %w", err)
	}
	moveType, err := r.ReadU32()
	if err != nil {
		return h, errf("readThingHeader", "moveType: %w", err)
	}
	h.MoveType = MoveType(moveType)

	controlType, err := r.ReadU32()
	if err != nil {
		return h, errf("readThingHeader", "controlType: %w", err)
	}
	h.ControlType = ControlType(controlType)

	for i := range h.LightColor {
		if h.LightColor[i], err = r.ReadF32(); err != nil {
			return h, errf("readThingHeader", "lightColor: %w", err)
		}
	}
	if h.LifetimeMs, err = r.ReadF32(); err != nil {
		return h, errf("readThingHeader", "lifetimeMs: %w", err)
	}
	if h.RenderType, err = r.ReadU32(); err != nil {
		return h, errf("readThingHeader", "renderType: %w", err)
	}
	if h.RenderFile, err = readName("renderFile"); err != nil {
		return h, err
	}
	if h.PuppetFile, err = readName("puppetFile"); err != nil {
		return h, err
	}
	if h.SoundFile, err = readName("soundFile"); err != nil {
		return h, err
	}
	if h.CreateThing, err = readName("createThing"); err != nil {
		return h, err
	}
	if h.CogScript, err = readName("cogScript"); err != nil {
		return h, err
	}

	if h.Collide.Type, err = r.ReadU32(); err != nil {
		return h, errf("readThingHeader", "collide type: %w", err)
	}
	if h.Collide.MoveSize, err = r.ReadF32(); err != nil {
		return h, errf("readThingHeader", "collide moveSize: %w", err)
	}
	if h.Collide.Size, err = r.ReadF32(); err != nil {
		return h, errf("readThingHeader", "collide size: %w", err)
	}
	if h.Collide.Width, err = r.ReadF32(); err != nil {
		return h, errf("readThingHeader", "collide width: %w", err)
	}
	if h.Collide.Height, err = r.ReadF32(); err != nil {
		return h, errf("readThingHeader", "collide height: %w", err)
	}
	if h.PerfLevel, err = r.ReadU32(); err != nil {
		return h, errf("readThingHeader", "perfLevel: %w", err)
	}

	// Pad out to the full 568-byte record; the remaining bytes are runtime
	// scratch fields the codec does not model.
	const modeled = 7*fixedstr.ResourceNameSize + 88 // 7 names, pos/rot/tags/light/collide/perf fields
	if _, err := r.ReadBytes(ThingHeaderSize - modeled); err != nil {
		return h, errf("readThingHeader", "reserved: %w", err)
	}

	return h, nil
}

func writeThingHeader(w *bstream.Writer, h ThingHeader) error {
	writeName := func(label, s string) error {
		b, err := fixedstr.WriteResourceName(s)
		if err != nil {
			return errf("writeThingHeader", "%s %q: %w", label, s, err)
		}
		w.Write(b)
		return nil
	}
	if err := writeName("baseName", h.BaseName); err != nil {
		return err
	}
	if err := writeName("name", h.Name); err != nil {
		return err
	}
	writeVector3(w, h.Pos)
	writeVector3(w, Vector3{X: h.Rot.Pitch, Y: h.Rot.Yaw, Z: h.Rot.Roll})
	w.WriteI32(h.SectorIdx)
	w.WriteU32(uint32(h.ThingType))
	w.WriteU32(h.ThingFlags)
	w.WriteU32(uint32(h.MoveType))
	w.WriteU32(uint32(h.ControlType))
	for _, v := range h.LightColor {
		w.WriteF32(v)
	}
	w.WriteF32(h.LifetimeMs)
	w.WriteU32(h.RenderType)
	if err := writeName("renderFile", h.RenderFile); err != nil {
		return err
	}
	if err := writeName("puppetFile", h.PuppetFile); err != nil {
		return err
	}
	if err := writeName("soundFile", h.SoundFile); err != nil {
		return err
	}
	if err := writeName("createThing", h.CreateThing); err != nil {
		return err
	}
	if err := writeName("cogScript", h.CogScript); err != nil {
		return err
	}
	w.WriteU32(h.Collide.Type)
	w.WriteF32(h.Collide.MoveSize)
	w.WriteF32(h.Collide.Size)
	w.WriteF32(h.Collide.Width)
	w.WriteF32(h.Collide.Height)
	w.WriteU32(h.PerfLevel)

	const modeled = 7*fixedstr.ResourceNameSize + 88 // 7 names, pos/rot/tags/light/collide/perf fields
	w.Write(make([]byte, ThingHeaderSize-modeled))
	return nil
}

func readPhysicsInfo(r *bstream.Reader) (PhysicsInfo, error) {
	var p PhysicsInfo
	var err error
	if p.Mass, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.Drag, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.LinearVel, err = readVector3(r); err != nil {
		return p, err
	}
	if p.AngularVel, err = readVector3(r); err != nil {
		return p, err
	}
	if p.Buoyancy, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.StaticRestitution, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.MaxRotVel, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.MaxVel, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.Airdrag, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.Gravity, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.Height, err = r.ReadF32(); err != nil {
		return p, err
	}
	for i := range p.Reserved {
		if p.Reserved[i], err = r.ReadF32(); err != nil {
			return p, err
		}
	}
	return p, nil
}

func writePhysicsInfo(w *bstream.Writer, p PhysicsInfo) {
	w.WriteF32(p.Mass)
	w.WriteF32(p.Drag)
	writeVector3(w, p.LinearVel)
	writeVector3(w, p.AngularVel)
	w.WriteF32(p.Buoyancy)
	w.WriteF32(p.StaticRestitution)
	w.WriteF32(p.MaxRotVel)
	w.WriteF32(p.MaxVel)
	w.WriteF32(p.Airdrag)
	w.WriteF32(p.Gravity)
	w.WriteF32(p.Height)
	for _, v := range p.Reserved {
		w.WriteF32(v)
	}
}

func readPathFrame(r *bstream.Reader) (PathFrame, error) {
	pos, err := readVector3(r)
	if err != nil {
		return PathFrame{}, err
	}
	rot, err := readVector3(r)
	if err != nil {
		return PathFrame{}, err
	}
	return PathFrame{Pos: pos, Rot: Rotator{Pitch: rot.X, Yaw: rot.Y, Roll: rot.Z}}, nil
}

func writePathFrame(w *bstream.Writer, f PathFrame) {
	writeVector3(w, f.Pos)
	writeVector3(w, Vector3{X: f.Rot.Pitch, Y: f.Rot.Yaw, Z: f.Rot.Roll})
}

func readActorInfo(r *bstream.Reader) (ActorInfo, error) {
	var a ActorInfo
	var err error
	if a.Health, err = r.ReadF32(); err != nil {
		return a, err
	}
	if a.MaxHealth, err = r.ReadF32(); err != nil {
		return a, err
	}
	if a.WeaponIdx, err = r.ReadI32(); err != nil {
		return a, err
	}
	if a.EyeOffset, err = readVector3(r); err != nil {
		return a, err
	}
	if a.FireOffset, err = readVector3(r); err != nil {
		return a, err
	}
	if a.LightOffset, err = readVector3(r); err != nil {
		return a, err
	}
	for i := range a.VoiceColor {
		if a.VoiceColor[i], err = r.ReadF32(); err != nil {
			return a, err
		}
	}
	if a.MinHeadTilt, err = r.ReadF32(); err != nil {
		return a, err
	}
	if a.MaxHeadTilt, err = r.ReadF32(); err != nil {
		return a, err
	}
	if a.MinHeadTurn, err = r.ReadF32(); err != nil {
		return a, err
	}
	if a.MaxHeadTurn, err = r.ReadF32(); err != nil {
		return a, err
	}
	for i := range a.Reserved {
		if a.Reserved[i], err = r.ReadF32(); err != nil {
			return a, err
		}
	}
	return a, nil
}

func writeActorInfo(w *bstream.Writer, a ActorInfo) {
	w.WriteF32(a.Health)
	w.WriteF32(a.MaxHealth)
	w.WriteI32(a.WeaponIdx)
	writeVector3(w, a.EyeOffset)
	writeVector3(w, a.FireOffset)
	writeVector3(w, a.LightOffset)
	for _, v := range a.VoiceColor {
		w.WriteF32(v)
	}
	w.WriteF32(a.MinHeadTilt)
	w.WriteF32(a.MaxHeadTilt)
	w.WriteF32(a.MinHeadTurn)
	w.WriteF32(a.MaxHeadTurn)
	for _, v := range a.Reserved {
		w.WriteF32(v)
	}
}

func readWeaponInfo(r *bstream.Reader) (WeaponInfo, error) {
	var wi WeaponInfo
	var err error
	if wi.Damage, err = r.ReadF32(); err != nil {
		return wi, err
	}
	if wi.WeaponClass, err = r.ReadU32(); err != nil {
		return wi, err
	}
	if wi.Range, err = r.ReadF32(); err != nil {
		return wi, err
	}
	if wi.FireRate, err = r.ReadF32(); err != nil {
		return wi, err
	}
	if wi.Force, err = r.ReadF32(); err != nil {
		return wi, err
	}
	for i := range wi.Reserved {
		if wi.Reserved[i], err = r.ReadF32(); err != nil {
			return wi, err
		}
	}
	return wi, nil
}

func writeWeaponInfo(w *bstream.Writer, wi WeaponInfo) {
	w.WriteF32(wi.Damage)
	w.WriteU32(wi.WeaponClass)
	w.WriteF32(wi.Range)
	w.WriteF32(wi.FireRate)
	w.WriteF32(wi.Force)
	for _, v := range wi.Reserved {
		w.WriteF32(v)
	}
}

func readExplosionInfo(r *bstream.Reader) (ExplosionInfo, error) {
	var e ExplosionInfo
	var err error
	if e.Damage, err = r.ReadF32(); err != nil {
		return e, err
	}
	if e.Radius, err = r.ReadF32(); err != nil {
		return e, err
	}
	if e.Lifetime, err = r.ReadF32(); err != nil {
		return e, err
	}
	if e.DamageClass, err = r.ReadU32(); err != nil {
		return e, err
	}
	for i := range e.DebrisNames {
		b, err := r.ReadBytes(fixedstr.ResourceNameSize)
		if err != nil {
			return e, err
		}
		e.DebrisNames[i] = fixedstr.Read(b)
	}
	if e.SpritePos, err = readVector3(r); err != nil {
		return e, err
	}
	for i := range e.Reserved {
		if e.Reserved[i], err = r.ReadF32(); err != nil {
			return e, err
		}
	}
	return e, nil
}

func writeExplosionInfo(w *bstream.Writer, e ExplosionInfo) error {
	w.WriteF32(e.Damage)
	w.WriteF32(e.Radius)
	w.WriteF32(e.Lifetime)
	w.WriteU32(e.DamageClass)
	for _, name := range e.DebrisNames {
		b, err := fixedstr.WriteResourceName(name)
		if err != nil {
			return errf("writeExplosionInfo", "debris name %q: %w", name, err)
		}
		w.Write(b)
	}
	writeVector3(w, e.SpritePos)
	for _, v := range e.Reserved {
		w.WriteF32(v)
	}
	return nil
}

func readItemInfo(r *bstream.Reader) (ItemInfo, error) {
	var it ItemInfo
	var err error
	if it.Flags, err = r.ReadU32(); err != nil {
		return it, err
	}
	if it.Respawn, err = r.ReadF32(); err != nil {
		return it, err
	}
	return it, nil
}

func writeItemInfo(w *bstream.Writer, it ItemInfo) {
	w.WriteU32(it.Flags)
	w.WriteF32(it.Respawn)
}

func readParticleInfo(r *bstream.Reader) (ParticleInfo, error) {
	var p ParticleInfo
	nameBytes, err := r.ReadBytes(fixedstr.ResourceNameSize)
	if err != nil {
		return p, err
	}
	p.MaterialName = fixedstr.Read(nameBytes)
	if p.GrowthSpeed, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.MinRadius, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.MaxRadius, err = r.ReadF32(); err != nil {
		return p, err
	}
	if p.Count, err = r.ReadU32(); err != nil {
		return p, err
	}
	for i := range p.Reserved {
		if p.Reserved[i], err = r.ReadF32(); err != nil {
			return p, err
		}
	}
	return p, nil
}

func writeParticleInfo(w *bstream.Writer, p ParticleInfo) error {
	b, err := fixedstr.WriteResourceName(p.MaterialName)
	if err != nil {
		return errf("writeParticleInfo", "material name %q: %w", p.MaterialName, err)
	}
	w.Write(b)
	w.WriteF32(p.GrowthSpeed)
	w.WriteF32(p.MinRadius)
	w.WriteF32(p.MaxRadius)
	w.WriteU32(p.Count)
	for _, v := range p.Reserved {
		w.WriteF32(v)
	}
	return nil
}

// listSizes is the 44-byte (11 x u32) record giving the element count of
// each of the eleven side arrays that follow the Templates/Things headers.
type listSizes struct {
	Physics, NumPathFrames, PathFrame, Actor, Weapon, Explosion, Item,
	Hint, Particle, AIControlHeader, AIPathFrame uint32
}

func readListSizes(r *bstream.Reader) (listSizes, error) {
	var ls listSizes
	fields := []*uint32{
		&ls.Physics, &ls.NumPathFrames, &ls.PathFrame, &ls.Actor, &ls.Weapon,
		&ls.Explosion, &ls.Item, &ls.Hint, &ls.Particle, &ls.AIControlHeader,
		&ls.AIPathFrame,
	}
	for _, f := range fields {
		v, err := r.ReadU32()
		if err != nil {
			return ls, err
		}
		*f = v
	}
	return ls, nil
}

func writeListSizes(w *bstream.Writer, ls listSizes) {
	for _, v := range []uint32{
		ls.Physics, ls.NumPathFrames, ls.PathFrame, ls.Actor, ls.Weapon,
		ls.Explosion, ls.Item, ls.Hint, ls.Particle, ls.AIControlHeader,
		ls.AIPathFrame,
	} {
		w.WriteU32(v)
	}
}

// parseThingList parses num 568-byte headers followed by the 44-byte
// list-sizes record and the eleven side arrays (in fixed order: Physics,
// NumPathFrames, PathFrame, Actor, Weapon, Explosion, Item, Hint, Particle,
// AIControlInfoHeader, AIPathFrame), dispatching per-header on moveType,
// controlType and thingType to consume the right cursors. Every side-array
// cursor must equal its end once all headers are processed (P5).
func parseThingList(r *bstream.Reader, num uint32) ([]*Thing, error) {
	headers := make([]ThingHeader, num)
	for i := range headers {
		h, err := readThingHeader(r)
		if err != nil {
			return nil, errf("parseThingList", "header %d: %w", i, err)
		}
		headers[i] = h
	}

	ls, err := readListSizes(r)
	if err != nil {
		return nil, errf("parseThingList", "list sizes: %w", err)
	}

	physics := make([]PhysicsInfo, ls.Physics)
	for i := range physics {
		if physics[i], err = readPhysicsInfo(r); err != nil {
			return nil, errf("parseThingList", "physics %d: %w", i, err)
		}
	}

	numPathFrames := make([]uint32, ls.NumPathFrames)
	for i := range numPathFrames {
		if numPathFrames[i], err = r.ReadU32(); err != nil {
			return nil, errf("parseThingList", "numPathFrames %d: %w", i, err)
		}
	}

	pathFrames := make([]PathFrame, ls.PathFrame)
	for i := range pathFrames {
		if pathFrames[i], err = readPathFrame(r); err != nil {
			return nil, errf("parseThingList", "pathFrame %d: %w", i, err)
		}
	}

	actors := make([]ActorInfo, ls.Actor)
	for i := range actors {
		if actors[i], err = readActorInfo(r); err != nil {
			return nil, errf("parseThingList", "actorInfo %d: %w", i, err)
		}
	}

	weapons := make([]WeaponInfo, ls.Weapon)
	for i := range weapons {
		if weapons[i], err = readWeaponInfo(r); err != nil {
			return nil, errf("parseThingList", "weaponInfo %d: %w", i, err)
		}
	}

	explosions := make([]ExplosionInfo, ls.Explosion)
	for i := range explosions {
		if explosions[i], err = readExplosionInfo(r); err != nil {
			return nil, errf("parseThingList", "explosionInfo %d: %w", i, err)
		}
	}

	items := make([]ItemInfo, ls.Item)
	for i := range items {
		if items[i], err = readItemInfo(r); err != nil {
			return nil, errf("parseThingList", "itemInfo %d: %w", i, err)
		}
	}

	hints := make([]HintUserVal, ls.Hint)
	for i := range hints {
		v, err := r.ReadF32()
		if err != nil {
			return nil, errf("parseThingList", "hintUserVal %d: %w", i, err)
		}
		hints[i] = HintUserVal(v)
	}

	particles := make([]ParticleInfo, ls.Particle)
	for i := range particles {
		if particles[i], err = readParticleInfo(r); err != nil {
			return nil, errf("parseThingList", "particleInfo %d: %w", i, err)
		}
	}

	type rawAIHeader struct {
		name      string
		numFrames uint32
	}
	aiHeaders := make([]rawAIHeader, ls.AIControlHeader)
	for i := range aiHeaders {
		b, err := r.ReadBytes(fixedstr.ResourceNameSize)
		if err != nil {
			return nil, errf("parseThingList", "aiControlInfoHeader %d name: %w", i, err)
		}
		n, err := r.ReadU32()
		if err != nil {
			return nil, errf("parseThingList", "aiControlInfoHeader %d numFrames: %w", i, err)
		}
		aiHeaders[i] = rawAIHeader{name: fixedstr.Read(b), numFrames: n}
	}

	aiPathFrames := make([]PathFrame, ls.AIPathFrame)
	for i := range aiPathFrames {
		if aiPathFrames[i], err = readPathFrame(r); err != nil {
			return nil, errf("parseThingList", "aiPathFrame %d: %w", i, err)
		}
	}

	var physIdx, numPFIdx, pfIdx, actorIdx, weaponIdx, explIdx, itemIdx, hintIdx, particleIdx, aiHdrIdx, aiPFIdx int

	things := make([]*Thing, num)
	for i, h := range headers {
		t := &Thing{Header: h}

		switch h.MoveType {
		case MoveTypePhysics:
			if physIdx >= len(physics) {
				return nil, errf("parseThingList", "header %d: physics array exhausted", i)
			}
			p := physics[physIdx]
			t.Physics = &p
			physIdx++
		case MoveTypePath:
			if numPFIdx >= len(numPathFrames) {
				return nil, errf("parseThingList", "header %d: numPathFrames array exhausted", i)
			}
			n := numPathFrames[numPFIdx]
			numPFIdx++
			if n > 0 {
				if pfIdx+int(n) > len(pathFrames) {
					return nil, errf("parseThingList", "header %d: requests %d path frames, only %d remain", i, n, len(pathFrames)-pfIdx)
				}
				t.PathFrames = append([]PathFrame(nil), pathFrames[pfIdx:pfIdx+int(n)]...)
				pfIdx += int(n)
			}
		}

		if h.ControlType == ControlTypeAI {
			if aiHdrIdx >= len(aiHeaders) {
				return nil, errf("parseThingList", "header %d: aiControlInfoHeader array exhausted", i)
			}
			ah := aiHeaders[aiHdrIdx]
			aiHdrIdx++
			t.AIScriptName = ah.name
			if ah.numFrames > 0 {
				if aiPFIdx+int(ah.numFrames) > len(aiPathFrames) {
					return nil, errf("parseThingList", "header %d: requests %d AI path frames, only %d remain", i, ah.numFrames, len(aiPathFrames)-aiPFIdx)
				}
				t.AIPathFrames = append([]PathFrame(nil), aiPathFrames[aiPFIdx:aiPFIdx+int(ah.numFrames)]...)
				aiPFIdx += int(ah.numFrames)
			}
		}

		switch h.ThingType {
		case ThingTypeActor, ThingTypePlayer:
			if actorIdx >= len(actors) {
				return nil, errf("parseThingList", "header %d: actorInfo array exhausted", i)
			}
			a := actors[actorIdx]
			t.Actor = &a
			actorIdx++
		case ThingTypeWeapon:
			if weaponIdx >= len(weapons) {
				return nil, errf("parseThingList", "header %d: weaponInfo array exhausted", i)
			}
			wi := weapons[weaponIdx]
			t.Weapon = &wi
			weaponIdx++
		case ThingTypeExplosion:
			if explIdx >= len(explosions) {
				return nil, errf("parseThingList", "header %d: explosionInfo array exhausted", i)
			}
			e := explosions[explIdx]
			t.Explosion = &e
			explIdx++
		case ThingTypeItem:
			if itemIdx >= len(items) {
				return nil, errf("parseThingList", "header %d: itemInfo array exhausted", i)
			}
			it := items[itemIdx]
			t.Item = &it
			itemIdx++
		case ThingTypeHint:
			if hintIdx >= len(hints) {
				return nil, errf("parseThingList", "header %d: hintUserVal array exhausted", i)
			}
			hv := hints[hintIdx]
			t.Hint = &hv
			hintIdx++
		case ThingTypeParticle:
			if particleIdx >= len(particles) {
				return nil, errf("parseThingList", "header %d: particleInfo array exhausted", i)
			}
			p := particles[particleIdx]
			t.Particle = &p
			particleIdx++
		}

		things[i] = t
	}

	if physIdx != len(physics) || numPFIdx != len(numPathFrames) || pfIdx != len(pathFrames) ||
		actorIdx != len(actors) || weaponIdx != len(weapons) || explIdx != len(explosions) ||
		itemIdx != len(items) || hintIdx != len(hints) || particleIdx != len(particles) ||
		aiHdrIdx != len(aiHeaders) || aiPFIdx != len(aiPathFrames) {
		return nil, errf("parseThingList", "side array cursor exhaustion")
	}

	return things, nil
}

// writeThingList builds the eleven side arrays by the same dispatch rule
// used on parse, then appends headers, list-sizes, and the side arrays in
// order.
func writeThingList(w *bstream.Writer, things []*Thing) error {
	var physics []PhysicsInfo
	var numPathFrames []uint32
	var pathFrames []PathFrame
	var actors []ActorInfo
	var weapons []WeaponInfo
	var explosions []ExplosionInfo
	var items []ItemInfo
	var hints []HintUserVal
	var particles []ParticleInfo
	type rawAIHeader struct {
		name      string
		numFrames uint32
	}
	var aiHeaders []rawAIHeader
	var aiPathFrames []PathFrame

	for _, t := range things {
		switch t.Header.MoveType {
		case MoveTypePhysics:
			if t.Physics == nil {
				return errf("writeThingList", "thing %q: moveType Physics without PhysicsInfo", t.Header.Name)
			}
			physics = append(physics, *t.Physics)
		case MoveTypePath:
			numPathFrames = append(numPathFrames, uint32(len(t.PathFrames)))
			pathFrames = append(pathFrames, t.PathFrames...)
		}

		if t.Header.ControlType == ControlTypeAI {
			aiHeaders = append(aiHeaders, rawAIHeader{name: t.AIScriptName, numFrames: uint32(len(t.AIPathFrames))})
			aiPathFrames = append(aiPathFrames, t.AIPathFrames...)
		}

		switch t.Header.ThingType {
		case ThingTypeActor, ThingTypePlayer:
			if t.Actor == nil {
				return errf("writeThingList", "thing %q: thingType Actor/Player without ActorInfo", t.Header.Name)
			}
			actors = append(actors, *t.Actor)
		case ThingTypeWeapon:
			if t.Weapon == nil {
				return errf("writeThingList", "thing %q: thingType Weapon without WeaponInfo", t.Header.Name)
			}
			weapons = append(weapons, *t.Weapon)
		case ThingTypeExplosion:
			if t.Explosion == nil {
				return errf("writeThingList", "thing %q: thingType Explosion without ExplosionInfo", t.Header.Name)
			}
			explosions = append(explosions, *t.Explosion)
		case ThingTypeItem:
			if t.Item == nil {
				return errf("writeThingList", "thing %q: thingType Item without ItemInfo", t.Header.Name)
			}
			items = append(items, *t.Item)
		case ThingTypeHint:
			if t.Hint == nil {
				return errf("writeThingList", "thing %q: thingType Hint without HintUserVal", t.Header.Name)
			}
			hints = append(hints, *t.Hint)
		case ThingTypeParticle:
			if t.Particle == nil {
				return errf("writeThingList", "thing %q: thingType Particle without ParticleInfo", t.Header.Name)
			}
			particles = append(particles, *t.Particle)
		}
	}

	for _, t := range things {
		if err := writeThingHeader(w, t.Header); err != nil {
			return errf("writeThingList", "header %q: %w", t.Header.Name, err)
		}
	}

	writeListSizes(w, listSizes{
		Physics: uint32(len(physics)), NumPathFrames: uint32(len(numPathFrames)),
		PathFrame: uint32(len(pathFrames)), Actor: uint32(len(actors)),
		Weapon: uint32(len(weapons)), Explosion: uint32(len(explosions)),
		Item: uint32(len(items)), Hint: uint32(len(hints)),
		Particle: uint32(len(particles)), AIControlHeader: uint32(len(aiHeaders)),
		AIPathFrame: uint32(len(aiPathFrames)),
	})

	for _, p := range physics {
		writePhysicsInfo(w, p)
	}
	for _, n := range numPathFrames {
		w.WriteU32(n)
	}
	for _, f := range pathFrames {
		writePathFrame(w, f)
	}
	for _, a := range actors {
		writeActorInfo(w, a)
	}
	for _, wi := range weapons {
		writeWeaponInfo(w, wi)
	}
	for _, e := range explosions {
		if err := writeExplosionInfo(w, e); err != nil {
			return err
		}
	}
	for _, it := range items {
		writeItemInfo(w, it)
	}
	for _, hv := range hints {
		w.WriteF32(float32(hv))
	}
	for _, p := range particles {
		if err := writeParticleInfo(w, p); err != nil {
			return err
		}
	}
	for _, ah := range aiHeaders {
		b, err := fixedstr.WriteResourceName(ah.name)
		if err != nil {
			return errf("writeThingList", "ai script name %q: %w", ah.name, err)
		}
		w.Write(b)
		w.WriteU32(ah.numFrames)
	}
	for _, f := range aiPathFrames {
		writePathFrame(w, f)
	}

	return nil
}

// ParseSectionTemplates reads the Templates section: num 568-byte headers,
// the list-sizes record, and the eleven side arrays, then inserts each
// template into an insertion-ordered name map, erroring on a duplicate name.
func ParseSectionTemplates(r *bstream.Reader, header *Header) (map[string]*Thing, []string, error) {
	things, err := parseThingList(r, header.Templates.Num)
	if err != nil {
		return nil, nil, errf("parseSectionTemplates", "%w", err)
	}
	byName := make(map[string]*Thing, len(things))
	order := make([]string, 0, len(things))
	for _, t := range things {
		if _, dup := byName[t.Header.Name]; dup {
			return nil, nil, errf("parseSectionTemplates", "duplicate template name %q", t.Header.Name)
		}
		byName[t.Header.Name] = t
		order = append(order, t.Header.Name)
	}
	return byName, order, nil
}

// ParseSectionThings reads the Things section, sharing the Templates
// section's exact on-disk shape.
func ParseSectionThings(r *bstream.Reader, header *Header) ([]*Thing, error) {
	things, err := parseThingList(r, header.Things.Num)
	if err != nil {
		return nil, errf("parseSectionThings", "%w", err)
	}
	return things, nil
}

// WriteSectionTemplates appends the Templates section in the given
// insertion order.
func WriteSectionTemplates(w *bstream.Writer, byName map[string]*Thing, order []string) error {
	things := make([]*Thing, len(order))
	for i, name := range order {
		things[i] = byName[name]
	}
	return writeThingList(w, things)
}

// WriteSectionThings appends the Things section.
func WriteSectionThings(w *bstream.Writer, things []*Thing) error {
	return writeThingList(w, things)
}

// thingListLength computes the byte length of a Templates or Things section
// from its header count and its list-sizes record, without building the
// model, for the offset oracle and patcher.
func thingListLength(r *bstream.Reader, num uint32) (int64, error) {
	fixed := int64(num)*ThingHeaderSize + ThingListSizesSize
	if err := r.Advance(int64(num) * ThingHeaderSize); err != nil {
		return 0, err
	}
	ls, err := readListSizes(r)
	if err != nil {
		return 0, err
	}
	rest := int64(ls.Physics)*PhysicsInfoSize +
		int64(ls.NumPathFrames)*4 +
		int64(ls.PathFrame)*PathFrameSize +
		int64(ls.Actor)*ActorInfoSize +
		int64(ls.Weapon)*WeaponInfoSize +
		int64(ls.Explosion)*ExplosionInfoSize +
		int64(ls.Item)*ItemInfoSize +
		int64(ls.Hint)*4 +
		int64(ls.Particle)*ParticleInfoSize +
		int64(ls.AIControlHeader)*AIControlInfoHeaderSize +
		int64(ls.AIPathFrame)*PathFrameSize
	return fixed + rest, nil
}

// TemplatesSectionLength returns the Templates section's byte length
// without decoding it.
func TemplatesSectionLength(r *bstream.Reader, header *Header) (int64, error) {
	saved := r.Tell()
	defer r.Seek(saved)
	return thingListLength(r, header.Templates.Num)
}

// ThingsSectionLength returns the Things section's byte length without
// decoding it.
func ThingsSectionLength(r *bstream.Reader, header *Header) (int64, error) {
	saved := r.Tell()
	defer r.Seek(saved)
	return thingListLength(r, header.Things.Num)
}
