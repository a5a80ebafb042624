package herd

import "strings"

// NormalizeID canonicalizes an animal identifier by trimming whitespace and
// stripping leading zeros. Source systems disagree on zero padding, so the
// same cow may arrive as "00123" in one export and "123" in another; both
// normalize to "123". An identifier that is all zeros normalizes to the
// empty string, which is a valid if degenerate key.
func NormalizeID(raw string) string {
	return strings.TrimLeft(strings.TrimSpace(raw), "0")
}
