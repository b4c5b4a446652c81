package memory

import (
	"regexp"
	"strings"
)

var disallowedKeyRunes = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Zs}-]`)

// Normalize canonicalizes a raw fact key: trimmed, lowercased, and stripped
// of anything but letters, digits, underscores, whitespace (Unicode
// space separators included) and hyphens.
// The result is trimmed again so Normalize is idempotent.
func Normalize(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	k = disallowedKeyRunes.ReplaceAllString(k, "")
	return strings.TrimSpace(k)
}
