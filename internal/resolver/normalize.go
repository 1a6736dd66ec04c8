package resolver

import (
	"encoding/hex"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// commentPrefix is what a leading "<!-- " becomes after normalization.
const commentPrefix = "%3C%21--_"

// maxFileNameLength is the longest file name most filesystems accept.
const maxFileNameLength = 255

// DefaultRejectedExtensions are the lowercase extensions that are never
// resolved.
var DefaultRejectedExtensions = []string{".tiff", ".png"}

// Normalize converts a raw image reference into the wiki file name used in
// description page URLs and as the cache file name.
//
// The steps are applied in order: strip leading '[' characters, replace
// spaces with underscores, uppercase the first character, percent-encode
// every byte outside A-Z a-z 0-9 - . _ ~, and drop a leading encoded
// "<!-- " left over from a commented-out value.
func Normalize(ref string) string {
	name := strings.TrimLeft(ref, "[")
	name = strings.ReplaceAll(name, " ", "_")
	name = upperFirst(name)
	name = escape(name)
	return strings.TrimPrefix(name, commentPrefix)
}

// IsRejected reports whether ref must not be resolved: it is empty or its
// lowercase form ends with one of the rejected extensions.
func IsRejected(ref string, rejected []string) bool {
	if ref == "" {
		return true
	}
	lower := strings.ToLower(ref)
	for _, ext := range rejected {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// CacheFileName returns the file name used to store a normalized reference.
// Names longer than the filesystem limit are replaced by the SHA3-256 digest
// of the name followed by its extension.
func CacheFileName(normalized string) string {
	if len(normalized) <= maxFileNameLength {
		return normalized
	}

	sum := sha3.Sum256([]byte(normalized))
	ext := strings.ToLower(path.Ext(normalized))
	if len(ext) > 16 {
		ext = ""
	}
	return hex.EncodeToString(sum[:]) + ext
}

// imageExtensions are the lowercase extensions of files the resolver can
// decode and therefore store.
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".jpe": true, ".gif": true, ".png": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsCacheFileName reports whether name has the shape of a file the resolver
// writes into the image cache: a normalized reference or a digest name with
// an image extension, or a leftover temporary download.
func IsCacheFileName(name string) bool {
	if strings.HasPrefix(name, tempPrefix) {
		return true
	}

	ext := strings.ToLower(path.Ext(name))
	if !imageExtensions[ext] {
		return false
	}
	stem := name[:len(name)-len(ext)]
	if isDigest(stem) {
		return true
	}
	if stem == "" || ('a' <= stem[0] && stem[0] <= 'z') {
		return false
	}
	for i := 0; i < len(stem); i++ {
		c := stem[i]
		if isUnreserved(c) {
			continue
		}
		if c != '%' || i+2 >= len(stem) || !isUpperHex(stem[i+1]) || !isUpperHex(stem[i+2]) {
			return false
		}
		i += 2
	}
	return true
}

func isDigest(s string) bool {
	if len(s) != hex.EncodedLen(len(sha3.Sum256(nil))) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

func isUpperHex(c byte) bool {
	return '0' <= c && c <= '9' || 'A' <= c && c <= 'F'
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	first := s[:size]
	if up := cases.Upper(language.Und).String(first); up != first {
		return up + s[size:]
	}
	return s
}

func escape(s string) string {
	const hexDigits = "0123456789ABCDEF"

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0F])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
