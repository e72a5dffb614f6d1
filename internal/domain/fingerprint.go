package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Fingerprint derives the cross-source identity key for a posting from its
// normalized title, organization and location. Two records that differ only
// in SourceID hash to the same fingerprint and merge into one.
func Fingerprint(title, organization, location string) string {
	key := normalizeKey(title) + "|" + normalizeKey(organization) + "|" + normalizeKey(location)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// normalizeKey lowercases, strips punctuation and collapses whitespace so
// cosmetic re-scrape differences don't change identity.
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
