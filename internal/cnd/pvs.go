package cnd

import "github.com/ernie/cndtool/internal/bstream"

// ParseSectionPVS reads an i32 size followed by that many opaque bytes. The
// Potentially Visible Set is never interpreted by the codec; sectors merely
// carry an index into it.
func ParseSectionPVS(r *bstream.Reader) ([]byte, error) {
	size, err := r.ReadI32()
	if err != nil {
		return nil, errf("parseSectionPVS", "size: %w", err)
	}
	if size < 0 {
		return nil, errf("parseSectionPVS", "negative size %d", size)
	}
	data, err := r.ReadBytes(int(size))
	if err != nil {
		return nil, errf("parseSectionPVS", "data: %w", err)
	}
	return data, nil
}

// WriteSectionPVS appends the PVS section.
func WriteSectionPVS(w *bstream.Writer, data []byte) {
	w.WriteI32(int32(len(data)))
	w.Write(data)
}

// PVSSectionLength returns the PVS section's byte length without decoding it.
func PVSSectionLength(r *bstream.Reader) (int64, error) {
	saved := r.Tell()
	defer r.Seek(saved)

	size, err := r.ReadI32()
	if err != nil {
		return 0, errf("pvsSectionLength", "size: %w", err)
	}
	return 4 + int64(size), nil
}
