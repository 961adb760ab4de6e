package cnd

import "github.com/ernie/cndtool/internal/bstream"

// Cog is a script instance: a reference to a CogScript by name, a vtable
// id, and the initial values bound into that script's symbol vtable at the
// instance's vtid. Flags and Id round out the record.
type Cog struct {
	ID         uint32
	ScriptName string
	Flags      uint32
	VTableID   uint32
	Values     []string
}

// ParseSectionCogs reads {u32 numCogs, u32 numValues}, numCogs 64-byte
// script names, then numValues 64-byte value strings. Binding a Cog to its
// script's symbol vtable (filling non-local, non-message symbols in
// declaration order) is the caller's job — the script definitions
// themselves live outside the container (CogScripts is a name list here,
// resolved against an external script repository) — so this layer hands
// back the flat name/value lists for the caller to zip together, erroring
// only on the count mismatch the format itself can detect.
func ParseSectionCogs(r *bstream.Reader) (scriptNames, values []string, err error) {
	numCogs, err := r.ReadU32()
	if err != nil {
		return nil, nil, errf("parseSectionCogs", "numCogs: %w", err)
	}
	numValues, err := r.ReadU32()
	if err != nil {
		return nil, nil, errf("parseSectionCogs", "numValues: %w", err)
	}

	scriptNames, err = ParseResourceNameList(r, numCogs)
	if err != nil {
		return nil, nil, errf("parseSectionCogs", "script names: %w", err)
	}
	values, err = ParseResourceNameList(r, numValues)
	if err != nil {
		return nil, nil, errf("parseSectionCogs", "values: %w", err)
	}
	return scriptNames, values, nil
}

// WriteSectionCogs appends the Cogs section.
func WriteSectionCogs(w *bstream.Writer, scriptNames, values []string) error {
	w.WriteU32(uint32(len(scriptNames)))
	w.WriteU32(uint32(len(values)))
	if err := WriteResourceNameList(w, scriptNames); err != nil {
		return errf("writeSectionCogs", "script names: %w", err)
	}
	if err := WriteResourceNameList(w, values); err != nil {
		return errf("writeSectionCogs", "values: %w", err)
	}
	return nil
}

// CogsSectionLength returns the Cogs section's byte length without
// decoding it.
func CogsSectionLength(r *bstream.Reader) (int64, error) {
	saved := r.Tell()
	defer r.Seek(saved)

	numCogs, err := r.ReadU32()
	if err != nil {
		return 0, errf("cogsSectionLength", "numCogs: %w", err)
	}
	numValues, err := r.ReadU32()
	if err != nil {
		return 0, errf("cogsSectionLength", "numValues: %w", err)
	}
	return 8 + ResourceNameListLength(numCogs) + ResourceNameListLength(numValues), nil
}

// BindCogValues matches each Cog's declared non-local, non-message symbol
// count against the values available for it, erroring on a mismatch per
// the format's "value/symbol count mismatch" failure mode. symbolCounts
// gives, per cog index, the number of bindable symbols its script expects.
func BindCogValues(cogs []*Cog, values []string, symbolCounts []int) error {
	idx := 0
	for i, cog := range cogs {
		n := symbolCounts[i]
		if idx+n > len(values) {
			return errf("bindCogValues", "cog %d (%s) needs %d values, only %d remain", i, cog.ScriptName, n, len(values)-idx)
		}
		cog.Values = append([]string(nil), values[idx:idx+n]...)
		idx += n
	}
	if idx != len(values) {
		return errf("bindCogValues", "value count mismatch: consumed %d of %d", idx, len(values))
	}
	return nil
}
