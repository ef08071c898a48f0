package files

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// SanitizeName maps a client supplied filename to a single safe path segment.
// Every rune that is not a letter, digit, '.', '-', '_' or space becomes '_', then
// surrounding whitespace is trimmed. The names "." and ".." sanitize to "".
// An empty result means no usable filename was given.
func SanitizeName(name string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		switch r {
		case '.', '-', '_', ' ':
			return r
		}
		return '_'
	}, name)

	safe = strings.TrimSpace(safe)
	if safe == "." || safe == ".." {
		return ""
	}
	return safe
}

// splitName separates name into stem and extension (including the dot).
// A leading dot does not start an extension, so ".env" is all stem.
func splitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	stem = strings.TrimSuffix(name, ext)
	if stem == "" {
		return name, ""
	}
	return stem, ext
}

// timestampedName returns stem_<unix seconds>.ext for name.
func timestampedName(name string, now time.Time) string {
	stem, ext := splitName(name)
	return stem + "_" + strconv.FormatInt(now.Unix(), 10) + ext
}

// numberedName returns stem_<unix seconds>_<n>.ext, used when the timestamped name is also taken.
func numberedName(name string, now time.Time, n int) string {
	stem, ext := splitName(name)
	return stem + "_" + strconv.FormatInt(now.Unix(), 10) + "_" + strconv.Itoa(n) + ext
}

// KindOfName infers a file category from the extension of name, lowercased.
func KindOfName(name string) string {
	_, ext := splitName(name)
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return KindUnknownFile
	}
	return strings.ToLower(ext)
}

// KindUnknownFile is the kind of a name without an extension.
const KindUnknownFile = "unknown"
