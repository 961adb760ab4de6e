// Package fixedstr implements the fixed-capacity, null-padded ASCII strings
// embedded in CND binary records (material names, sector ambient sound
// names, the 64-byte ResourceName used throughout the container). The
// teacher's own readNullTerminated helper (internal/assets/bsp.go) trims a
// single null-terminated byte slice; this package generalizes that into a
// reusable, size-parameterized, round-trip-safe type.
package fixedstr

import (
	"bytes"
	"fmt"
)

// ResourceNameSize is the capacity of the name field used by most CND
// records (materials, animations, resource-name lists, sector names).
const ResourceNameSize = 64

// Read trims b at the first NUL byte, returning the owned string. If b
// contains no NUL, the whole buffer is treated as the string — the format
// never guarantees a NUL when every byte is used, only that bytes beyond the
// logical length are zero.
func Read(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// Write copies s into a freshly-zeroed buffer of size n, failing if s does
// not fit with room for the trailing NUL (s must be at most n-1 bytes).
func Write(s string, n int) ([]byte, error) {
	if len(s) > n-1 {
		return nil, fmt.Errorf("fixedstr: %q exceeds %d-byte field (max %d visible bytes)", s, n, n-1)
	}
	buf := make([]byte, n)
	copy(buf, s)
	return buf, nil
}

// WriteResourceName writes s into the standard 64-byte name field.
func WriteResourceName(s string) ([]byte, error) { return Write(s, ResourceNameSize) }

// Equal compares two fixed-string buffers up to their first NUL, per the
// format's definition of fixed-string equality.
func Equal(a, b []byte) bool { return Read(a) == Read(b) }
