package cnd

import (
	"os"

	"github.com/ernie/cndtool/internal/bstream"
)

// Section names one of the fifteen on-disk sections a patch can target.
type Section int

const (
	SectionSounds Section = iota
	SectionMaterials
	SectionGeoresource
	SectionSectors
	SectionAIClasses
	SectionModels
	SectionSprites
	SectionKeyframes
	SectionAnimClasses
	SectionSoundClasses
	SectionCogScripts
	SectionCogs
	SectionTemplates
	SectionThings
	SectionPVS
)

type sectionFuncs struct {
	offset func(*bstream.Reader, *Header) (int64, error)
	length func(*bstream.Reader, *Header) (int64, error)
}

var sectionTable = map[Section]sectionFuncs{
	SectionSounds:       {OffsetSounds, func(r *bstream.Reader, h *Header) (int64, error) { return SoundsSectionLength(r) }},
	SectionMaterials:    {OffsetMaterials, MaterialsSectionLength},
	SectionGeoresource:  {OffsetGeoresource, GeoresourceSectionLength},
	SectionSectors:      {OffsetSectors, SectorsSectionLength},
	SectionAIClasses:    {OffsetAIClasses, func(r *bstream.Reader, h *Header) (int64, error) { return ResourceNameListLength(h.AIClasses.Num), nil }},
	SectionModels:       {OffsetModels, func(r *bstream.Reader, h *Header) (int64, error) { return ResourceNameListLength(h.Models.Num), nil }},
	SectionSprites:      {OffsetSprites, func(r *bstream.Reader, h *Header) (int64, error) { return ResourceNameListLength(h.Sprites.Num), nil }},
	SectionKeyframes:    {OffsetKeyframes, KeyframesSectionLength},
	SectionAnimClasses:  {OffsetAnimClasses, func(r *bstream.Reader, h *Header) (int64, error) { return ResourceNameListLength(h.AnimClasses.Num), nil }},
	SectionSoundClasses: {OffsetSoundClasses, func(r *bstream.Reader, h *Header) (int64, error) { return ResourceNameListLength(h.SoundClasses.Num), nil }},
	SectionCogScripts:   {OffsetCogScripts, func(r *bstream.Reader, h *Header) (int64, error) { return ResourceNameListLength(h.CogScripts.Num), nil }},
	SectionCogs:         {OffsetCogs, func(r *bstream.Reader, h *Header) (int64, error) { return CogsSectionLength(r) }},
	SectionTemplates:    {OffsetTemplates, TemplatesSectionLength},
	SectionThings:       {OffsetThings, ThingsSectionLength},
	SectionPVS:          {OffsetPVS, func(r *bstream.Reader, h *Header) (int64, error) { return PVSSectionLength(r) }},
}

// PatchSection rewrites a single section of the CND file at path in place,
// without re-encoding any other section. It opens the file read-only,
// locates the target section via the offset oracle, and writes a sibling
// "<path>.patched" file holding [0, sectionStart) copied verbatim, newData
// in place of the old section bytes, and [sectionEnd, fileEnd) copied
// verbatim — then renames the sibling over the original.
//
// newHeader must already reflect whatever SectionCounts changed as a
// result of the edit (the caller, which knows the section's new shape,
// is in the best position to recompute those); PatchSection only rewrites
// FileSize on top of whatever newHeader supplies, then writes newHeader in
// place of the original header bytes.
//
// On any failure after the sibling file is created, the sibling is
// removed before returning.
func PatchSection(path string, section Section, newData []byte, newHeader *Header) (err error) {
	funcs, ok := sectionTable[section]
	if !ok {
		return errf("patchSection", "unknown section %d", section)
	}

	in, err := os.Open(path)
	if err != nil {
		return errf("patchSection", "open: %w", err)
	}
	defer in.Close()

	stat, err := in.Stat()
	if err != nil {
		return errf("patchSection", "stat: %w", err)
	}
	r := bstream.NewReader(in, stat.Size())

	header, err := ReadHeader(r)
	if err != nil {
		return errf("patchSection", "header: %w", err)
	}

	start, err := funcs.offset(r, header)
	if err != nil {
		return errf("patchSection", "locate section: %w", err)
	}
	if err := r.Seek(start); err != nil {
		return errf("patchSection", "seek to section: %w", err)
	}
	length, err := funcs.length(r, header)
	if err != nil {
		return errf("patchSection", "measure section: %w", err)
	}
	end := start + length

	patchedPath := path + ".patched"
	out, err := os.Create(patchedPath)
	if err != nil {
		return errf("patchSection", "create patched file: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(patchedPath)
		}
	}()

	newFileSize := HeaderSize + (start - HeaderSize) + int64(len(newData)) + (stat.Size() - end)
	hw := bstream.NewWriter()
	headerCopy := *newHeader
	headerCopy.FileSize = uint32(newFileSize)
	WriteHeader(hw, &headerCopy)
	if _, err = out.Write(hw.Bytes()); err != nil {
		return errf("patchSection", "write header: %w", err)
	}

	if err = r.CopyRange(out, HeaderSize, start); err != nil {
		return errf("patchSection", "copy before: %w", err)
	}
	if _, err = out.Write(newData); err != nil {
		return errf("patchSection", "write new section: %w", err)
	}
	if err = r.CopyRange(out, end, stat.Size()); err != nil {
		return errf("patchSection", "copy after: %w", err)
	}

	if err = out.Close(); err != nil {
		return errf("patchSection", "close patched file: %w", err)
	}
	if err = os.Rename(patchedPath, path); err != nil {
		return errf("patchSection", "rename: %w", err)
	}
	return nil
}
