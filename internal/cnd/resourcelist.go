package cnd

import (
	"github.com/ernie/cndtool/internal/bstream"
	"github.com/ernie/cndtool/internal/fixedstr"
)

// ParseResourceNameList reads count 64-byte resource names, trimming each
// on read. It backs the AIClasses, Models, Sprites, AnimClasses,
// SoundClasses and CogScripts sections, which share this exact shape.
func ParseResourceNameList(r *bstream.Reader, count uint32) ([]string, error) {
	names := make([]string, count)
	for i := range names {
		b, err := r.ReadBytes(fixedstr.ResourceNameSize)
		if err != nil {
			return nil, errf("parseResourceNameList", "name %d: %w", i, err)
		}
		names[i] = fixedstr.Read(b)
	}
	return names, nil
}

// WriteResourceNameList appends a resource-name list section.
func WriteResourceNameList(w *bstream.Writer, names []string) error {
	for _, n := range names {
		b, err := fixedstr.WriteResourceName(n)
		if err != nil {
			return errf("writeResourceNameList", "%w", err)
		}
		w.Write(b)
	}
	return nil
}

// ResourceNameListLength returns the byte length of a count-element
// resource-name list, for the offset oracle.
func ResourceNameListLength(count uint32) int64 {
	return int64(count) * fixedstr.ResourceNameSize
}
