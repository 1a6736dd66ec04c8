package pipeline

import (
	"strings"
	"unicode/utf8"
)

// Result file suffixes, appended to the museum name.
const (
	OrigSuffix     = "-orig.jpg"
	PaintingSuffix = "-painting.jpg"
	StyledSuffix   = "-styled.jpg"
)

// maxBaseLength keeps "<name><suffix>" under the common 255 byte limit.
const maxBaseLength = 200

// SafeName turns a museum name into a file name base. Path separators,
// characters reserved on common filesystems and control characters become
// underscores. Leading and trailing spaces and dots are removed.
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteByte('_')
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	s := strings.Trim(b.String(), " .")
	if len(s) > maxBaseLength {
		s = s[:maxBaseLength]
		for !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
	}
	if s == "" {
		return "museum"
	}
	return s
}
