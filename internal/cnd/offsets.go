package cnd

import "github.com/ernie/cndtool/internal/bstream"

// The Offset Oracle: because the on-disk header carries no section offset
// table, each function below computes its section's start by replaying the
// byte-size rules of every preceding section. The internal compute*
// functions move the stream's cursor as a side effect of measuring earlier
// sections; every exported Offset* entry point wraps one in
// withSavedCursor so callers can call it from any cursor position and get
// it back unchanged (P3).

func withSavedCursor(r *bstream.Reader, header *Header, fn func(*bstream.Reader, *Header) (int64, error)) (int64, error) {
	saved := r.Tell()
	defer r.Seek(saved)
	return fn(r, header)
}

func computeSounds(r *bstream.Reader, header *Header) (int64, error) {
	return HeaderSize, nil
}

func computeMaterials(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeSounds(r, header)
	if err != nil {
		return 0, err
	}
	if err := r.Seek(base); err != nil {
		return 0, errf("offsetMaterials", "%w", err)
	}
	length, err := SoundsSectionLength(r)
	if err != nil {
		return 0, errf("offsetMaterials", "%w", err)
	}
	return base + length, nil
}

func computeGeoresource(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeMaterials(r, header)
	if err != nil {
		return 0, err
	}
	if err := r.Seek(base); err != nil {
		return 0, errf("offsetGeoresource", "%w", err)
	}
	length, err := MaterialsSectionLength(r, header)
	if err != nil {
		return 0, errf("offsetGeoresource", "%w", err)
	}
	return base + length, nil
}

func computeSectors(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeGeoresource(r, header)
	if err != nil {
		return 0, err
	}
	if err := r.Seek(base); err != nil {
		return 0, errf("offsetSectors", "%w", err)
	}
	length, err := GeoresourceSectionLength(r, header)
	if err != nil {
		return 0, errf("offsetSectors", "%w", err)
	}
	return base + length, nil
}

func computeAIClasses(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeSectors(r, header)
	if err != nil {
		return 0, err
	}
	if err := r.Seek(base); err != nil {
		return 0, errf("offsetAIClasses", "%w", err)
	}
	length, err := SectorsSectionLength(r, header)
	if err != nil {
		return 0, errf("offsetAIClasses", "%w", err)
	}
	return base + length, nil
}

func computeModels(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeAIClasses(r, header)
	if err != nil {
		return 0, err
	}
	return base + ResourceNameListLength(header.AIClasses.Num), nil
}

func computeSprites(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeModels(r, header)
	if err != nil {
		return 0, err
	}
	return base + ResourceNameListLength(header.Models.Num), nil
}

func computeKeyframes(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeSprites(r, header)
	if err != nil {
		return 0, err
	}
	return base + ResourceNameListLength(header.Sprites.Num), nil
}

func computeAnimClasses(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeKeyframes(r, header)
	if err != nil {
		return 0, err
	}
	if err := r.Seek(base); err != nil {
		return 0, errf("offsetAnimClasses", "%w", err)
	}
	length, err := KeyframesSectionLength(r, header)
	if err != nil {
		return 0, errf("offsetAnimClasses", "%w", err)
	}
	return base + length, nil
}

func computeSoundClasses(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeAnimClasses(r, header)
	if err != nil {
		return 0, err
	}
	return base + ResourceNameListLength(header.AnimClasses.Num), nil
}

func computeCogScripts(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeSoundClasses(r, header)
	if err != nil {
		return 0, err
	}
	return base + ResourceNameListLength(header.SoundClasses.Num), nil
}

func computeCogs(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeCogScripts(r, header)
	if err != nil {
		return 0, err
	}
	return base + ResourceNameListLength(header.CogScripts.Num), nil
}

func computeTemplates(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeCogs(r, header)
	if err != nil {
		return 0, err
	}
	if err := r.Seek(base); err != nil {
		return 0, errf("offsetTemplates", "%w", err)
	}
	length, err := CogsSectionLength(r)
	if err != nil {
		return 0, errf("offsetTemplates", "%w", err)
	}
	return base + length, nil
}

func computeThings(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeTemplates(r, header)
	if err != nil {
		return 0, err
	}
	if err := r.Seek(base); err != nil {
		return 0, errf("offsetThings", "%w", err)
	}
	length, err := TemplatesSectionLength(r, header)
	if err != nil {
		return 0, errf("offsetThings", "%w", err)
	}
	return base + length, nil
}

func computePVS(r *bstream.Reader, header *Header) (int64, error) {
	base, err := computeThings(r, header)
	if err != nil {
		return 0, err
	}
	if err := r.Seek(base); err != nil {
		return 0, errf("offsetPVS", "%w", err)
	}
	length, err := ThingsSectionLength(r, header)
	if err != nil {
		return 0, errf("offsetPVS", "%w", err)
	}
	return base + length, nil
}

func OffsetSounds(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeSounds)
}
func OffsetMaterials(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeMaterials)
}
func OffsetGeoresource(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeGeoresource)
}
func OffsetSectors(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeSectors)
}
func OffsetAIClasses(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeAIClasses)
}
func OffsetModels(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeModels)
}
func OffsetSprites(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeSprites)
}
func OffsetKeyframes(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeKeyframes)
}
func OffsetAnimClasses(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeAnimClasses)
}
func OffsetSoundClasses(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeSoundClasses)
}
func OffsetCogScripts(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeCogScripts)
}
func OffsetCogs(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeCogs)
}
func OffsetTemplates(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeTemplates)
}
func OffsetThings(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computeThings)
}
func OffsetPVS(r *bstream.Reader, header *Header) (int64, error) {
	return withSavedCursor(r, header, computePVS)
}
