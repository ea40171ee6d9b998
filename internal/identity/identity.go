// Package identity derives deterministic names for exported scene objects:
// entity ids, sanitized identifiers and file-safe directory names.
package identity

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// EntityIDPrefix marks ids produced by StableID.
const EntityIDPrefix = "go_"

// SanitizeIdentifier maps value onto a C-style identifier. Every rune that is
// not a letter, digit or underscore becomes '_' and a leading digit gets a '_'
// prefix. Blank input yields fallback.
func SanitizeIdentifier(value, fallback string) string {
	if fallback == "" {
		fallback = "item"
	}
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	var b strings.Builder
	b.Grow(len(value) + 1)
	first := true
	for _, r := range value {
		if first && unicode.IsDigit(r) {
			b.WriteByte('_')
		}
		first = false
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ToSnakeCase sanitizes value and splits camel case humps with underscores.
func ToSnakeCase(value, fallback string) string {
	clean := []rune(SanitizeIdentifier(value, fallback))
	var b strings.Builder
	b.Grow(len(clean) + 8)
	for i, r := range clean {
		if unicode.IsUpper(r) && i > 0 && clean[i-1] != '_' {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// HierarchyPath joins node names root to leaf with '/'.
func HierarchyPath(names []string) string {
	return strings.Join(names, "/")
}

// StableID derives the entity id for a node. The persistent id, when the
// producer has one, is mixed in ahead of the hierarchy path.
func StableID(path, persistentID string) string {
	raw := path
	if persistentID != "" {
		raw = persistentID + "|" + path
	}
	return EntityIDPrefix + Sha1Hex(raw)[:16]
}

// MaterialID derives the material record id from its dedup inputs.
func MaterialID(name, diffuse, normal, specular, emissive string) string {
	raw := strings.Join([]string{name, diffuse, normal, specular, emissive}, "|")
	return "mat_" + Sha1Hex(raw)[:16]
}

func Sha1Hex(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NormalizeRelativePath converts Windows separators to '/'.
func NormalizeRelativePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// EscapeCppString escapes backslashes and double quotes for a C++ string literal.
func EscapeCppString(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	return strings.ReplaceAll(value, "\"", "\\\"")
}

const invalidFileNameChars = "<>:\"/\\|?*"

// SafeDirName replaces characters that are invalid in a file name on any of
// the supported platforms.
func SafeDirName(name, fallback string) string {
	value := strings.TrimSpace(name)
	if value == "" {
		return fallback
	}
	value = strings.Map(func(r rune) rune {
		if r < 32 || strings.ContainsRune(invalidFileNameChars, r) {
			return '_'
		}
		return r
	}, value)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
