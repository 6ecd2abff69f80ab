// Package common holds small helpers shared across the crawl pipeline.
package common

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// ContentHash computes the SHA-256 digest of content and returns it as a
// lowercase hex string. The digest doubles as the integrity record in the
// manifest and the dedup key for the content store.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

var unsafeFilenameChar = regexp.MustCompile(`[^\w\-]`)

// SafeFileName replaces every non-word character with an underscore so a
// form identifier can be used as a filesystem name.
func SafeFileName(name string) string {
	return unsafeFilenameChar.ReplaceAllString(name, "_")
}

// SanitizeHref performs basic cleanup on an href to handle common markup
// issues: surrounding whitespace and stray quoting.
func SanitizeHref(href string) string {
	cleaned := strings.TrimSpace(href)
	cleaned = strings.Trim(cleaned, `"'`)
	return strings.TrimSpace(cleaned)
}

// TruncateTitle bounds anchor text to at most limit runes. Malformed pages
// sometimes wrap entire sections in a single anchor.
func TruncateTitle(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
