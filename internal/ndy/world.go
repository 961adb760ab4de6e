package ndy

import "fmt"

// World is the textual sibling of the binary header's gravity, horizon and
// fog fields. The header's world flags and path are not carried, nor is the
// section-count/pointer bookkeeping, which has no meaning in a text file —
// section presence is driven by which SECTION blocks exist.
type World struct {
	Gravity     float64
	HorizonDist Vector3
	FogColor    Vector3
	FogStart    float64
	FogEnd      float64
	FogEnabled  bool
}

// ParseWorld reads the WORLD section's gravity/fog/horizon fields.
func ParseWorld(doc *Document) (*World, error) {
	s := doc.Section("WORLD")
	if s == nil {
		return nil, fmt.Errorf("ndy: no WORLD section")
	}
	w := &World{}
	var err error
	if w.Gravity, err = s.GetFloat("world gravity"); err != nil {
		return nil, err
	}
	if w.HorizonDist, err = s.GetVector3("horizon distance"); err != nil {
		return nil, err
	}
	if w.FogColor, err = s.GetVector3("fog color"); err != nil {
		return nil, err
	}
	if w.FogStart, err = s.GetFloat("fog start"); err != nil {
		return nil, err
	}
	if w.FogEnd, err = s.GetFloat("fog end"); err != nil {
		return nil, err
	}
	enabled, err := s.GetInt("fog enabled")
	if err != nil {
		return nil, err
	}
	w.FogEnabled = enabled != 0
	return w, nil
}

// WriteWorld appends a WORLD section built from w to doc.
func WriteWorld(doc *Document, w *World) {
	s := newSection("WORLD")
	s.SetFloat("world gravity", w.Gravity, 6)
	s.SetVector3("horizon distance", w.HorizonDist, 8)
	s.SetVector3("fog color", w.FogColor, 6)
	s.SetFloat("fog start", w.FogStart, 8)
	s.SetFloat("fog end", w.FogEnd, 8)
	enabled := int64(0)
	if w.FogEnabled {
		enabled = 1
	}
	s.SetInt("fog enabled", enabled)
	doc.Sections = append(doc.Sections, s)
}

// ParseNameList reads a resource-name-list section (AICLASSES, MODELS,
// SPRITES, ANIMCLASSES, SOUNDCLASSES or COGSCRIPTS in the binary model) as
// an ordered list of names, one per "N: name" line; the key itself (an
// index) is discarded since Keys already preserves insertion order.
func ParseNameList(doc *Document, sectionName string) []string {
	s := doc.Section(sectionName)
	if s == nil {
		return nil
	}
	names := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		names[i] = s.Values[k]
	}
	return names
}

// WriteNameList appends a resource-name-list section built from names,
// keyed by their positional index.
func WriteNameList(doc *Document, sectionName string, names []string) {
	s := newSection(sectionName)
	for i, name := range names {
		s.SetString(fmt.Sprintf("%d", i), name)
	}
	doc.Sections = append(doc.Sections, s)
}
