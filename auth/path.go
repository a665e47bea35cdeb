package auth

import (
	"fmt"
	"strings"
)

// PathSegment encodes a namespace or alias as one path segment of a storage
// URL. Bytes outside [a-z0-9.-] become _XX (upper-case hex) and the names "."
// and ".." are escaped whole, so the encoding is reversible and distinct
// values never share a segment, even on case-insensitive file systems.
func PathSegment(s string) string {
	switch s {
	case "":
		return "_"
	case ".", "..":
		return strings.Repeat("_2E", len(s))
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') || c == '-' || c == '.' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "_%02X", c)
	}
	return b.String()
}
