package cnd

import (
	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/soundcache"
)

// Container is a fully parsed CND level file: the header plus every
// section in on-disk order. SoundCache owns the sound payload arena;
// Sound values borrow from it.
type Container struct {
	Header *Header

	Sounds      []*Sound
	SoundCache  *soundcache.Cache
	Materials   []*Material
	Georesource *Georesource
	Sectors     []*Sector

	AIClasses    []string
	Models       []string
	Sprites      []string
	Keyframes    []*Animation
	AnimClasses  []string
	SoundClasses []string
	CogScripts   []string

	Cogs       []*Cog
	CogValues  []string

	TemplateOrder []string
	Templates     map[string]*Thing
	Things        []*Thing

	PVS []byte
}

// ParseContainer reads a complete CND file from r. Sections are decoded in
// the fixed on-disk order (P1): Header, Sounds, Materials, Georesource,
// Sectors, AIClasses, Models, Sprites, Keyframes, AnimClasses, SoundClasses,
// CogScripts, Cogs, Templates, Things, PVS.
func ParseContainer(r *bstream.Reader) (*Container, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, errf("parseContainer", "header: %w", err)
	}
	c := &Container{Header: header}

	if c.Sounds, c.SoundCache, err = ParseSectionSounds(r); err != nil {
		return nil, errf("parseContainer", "sounds: %w", err)
	}
	if c.Materials, err = ParseSectionMaterials(r, header); err != nil {
		return nil, errf("parseContainer", "materials: %w", err)
	}
	if c.Georesource, err = ParseSectionGeoresource(r, header); err != nil {
		return nil, errf("parseContainer", "georesource: %w", err)
	}
	if c.Sectors, err = ParseSectionSectors(r, header); err != nil {
		return nil, errf("parseContainer", "sectors: %w", err)
	}
	if c.AIClasses, err = ParseResourceNameList(r, header.AIClasses.Num); err != nil {
		return nil, errf("parseContainer", "ai classes: %w", err)
	}
	if c.Models, err = ParseResourceNameList(r, header.Models.Num); err != nil {
		return nil, errf("parseContainer", "models: %w", err)
	}
	if c.Sprites, err = ParseResourceNameList(r, header.Sprites.Num); err != nil {
		return nil, errf("parseContainer", "sprites: %w", err)
	}
	if c.Keyframes, err = ParseSectionKeyframes(r, header); err != nil {
		return nil, errf("parseContainer", "keyframes: %w", err)
	}
	if c.AnimClasses, err = ParseResourceNameList(r, header.AnimClasses.Num); err != nil {
		return nil, errf("parseContainer", "anim classes: %w", err)
	}
	if c.SoundClasses, err = ParseResourceNameList(r, header.SoundClasses.Num); err != nil {
		return nil, errf("parseContainer", "sound classes: %w", err)
	}
	if c.CogScripts, err = ParseResourceNameList(r, header.CogScripts.Num); err != nil {
		return nil, errf("parseContainer", "cog scripts: %w", err)
	}

	scriptNames, values, err := ParseSectionCogs(r)
	if err != nil {
		return nil, errf("parseContainer", "cogs: %w", err)
	}
	c.CogValues = values
	c.Cogs = make([]*Cog, len(scriptNames))
	for i, name := range scriptNames {
		c.Cogs[i] = &Cog{ID: uint32(i), ScriptName: name}
	}

	if c.Templates, c.TemplateOrder, err = ParseSectionTemplates(r, header); err != nil {
		return nil, errf("parseContainer", "templates: %w", err)
	}
	if c.Things, err = ParseSectionThings(r, header); err != nil {
		return nil, errf("parseContainer", "things: %w", err)
	}
	if c.PVS, err = ParseSectionPVS(r); err != nil {
		return nil, errf("parseContainer", "pvs: %w", err)
	}

	return c, nil
}

// WriteContainer serializes c in full, recomputing every SectionCounts
// entry in the header from the section contents actually written rather
// than trusting whatever counts c.Header carried in (so a caller that
// mutated c.Things, say, without touching c.Header still gets a
// consistent file out).
func WriteContainer(c *Container) ([]byte, error) {
	w := bstream.NewWriter()

	if c.Georesource == nil {
		c.Georesource = &Georesource{}
	}
	if c.SoundCache == nil {
		c.SoundCache = soundcache.New()
	}

	header := *c.Header
	header.Sounds.Num = uint32(len(c.Sounds))
	header.Materials.Num = uint32(len(c.Materials))
	header.Vertices.Num = uint32(len(c.Georesource.Vertices))
	header.TexVertices.Num = uint32(len(c.Georesource.TexVertices))
	header.Adjoins.Num = uint32(len(c.Georesource.Adjoins))
	header.Surfaces.Num = uint32(len(c.Georesource.Surfaces))
	header.Sectors.Num = uint32(len(c.Sectors))
	header.AIClasses.Num = uint32(len(c.AIClasses))
	header.Models.Num = uint32(len(c.Models))
	header.Sprites.Num = uint32(len(c.Sprites))
	header.Keyframes.Num = uint32(len(c.Keyframes))
	header.AnimClasses.Num = uint32(len(c.AnimClasses))
	header.SoundClasses.Num = uint32(len(c.SoundClasses))
	header.CogScripts.Num = uint32(len(c.CogScripts))
	header.Cogs.Num = uint32(len(c.Cogs))
	header.Templates.Num = uint32(len(c.TemplateOrder))
	header.Things.Num = uint32(len(c.Things))
	for _, sc := range headerSectionOrder(&header) {
		if sc.Num > sc.Size {
			sc.Size = sc.Num
		}
	}

	WriteHeader(w, &header)

	WriteSectionSounds(w, c.Sounds, c.SoundCache)
	if err := WriteSectionMaterials(w, c.Materials); err != nil {
		return nil, errf("writeContainer", "materials: %w", err)
	}
	WriteSectionGeoresource(w, c.Georesource)
	if err := WriteSectionSectors(w, c.Sectors); err != nil {
		return nil, errf("writeContainer", "sectors: %w", err)
	}
	if err := WriteResourceNameList(w, c.AIClasses); err != nil {
		return nil, errf("writeContainer", "ai classes: %w", err)
	}
	if err := WriteResourceNameList(w, c.Models); err != nil {
		return nil, errf("writeContainer", "models: %w", err)
	}
	if err := WriteResourceNameList(w, c.Sprites); err != nil {
		return nil, errf("writeContainer", "sprites: %w", err)
	}
	if err := WriteSectionKeyframes(w, c.Keyframes); err != nil {
		return nil, errf("writeContainer", "keyframes: %w", err)
	}
	if err := WriteResourceNameList(w, c.AnimClasses); err != nil {
		return nil, errf("writeContainer", "anim classes: %w", err)
	}
	if err := WriteResourceNameList(w, c.SoundClasses); err != nil {
		return nil, errf("writeContainer", "sound classes: %w", err)
	}
	if err := WriteResourceNameList(w, c.CogScripts); err != nil {
		return nil, errf("writeContainer", "cog scripts: %w", err)
	}

	scriptNames := make([]string, len(c.Cogs))
	for i, cog := range c.Cogs {
		scriptNames[i] = cog.ScriptName
	}
	if err := WriteSectionCogs(w, scriptNames, c.CogValues); err != nil {
		return nil, errf("writeContainer", "cogs: %w", err)
	}
	if err := WriteSectionTemplates(w, c.Templates, c.TemplateOrder); err != nil {
		return nil, errf("writeContainer", "templates: %w", err)
	}
	if err := WriteSectionThings(w, c.Things); err != nil {
		return nil, errf("writeContainer", "things: %w", err)
	}
	WriteSectionPVS(w, c.PVS)

	out := w.Bytes()
	if err := w.PutU32At(fileSizeOffset, uint32(len(out))); err != nil {
		return nil, errf("writeContainer", "file size: %w", err)
	}
	return w.Bytes(), nil
}
