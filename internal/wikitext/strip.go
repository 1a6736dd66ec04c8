package wikitext

import (
	"strings"

	"golang.org/x/net/html"
)

// invisibleTags are HTML-like tags whose contents never show up as text.
var invisibleTags = map[string]bool{
	"ref":          true,
	"references":   true,
	"gallery":      true,
	"math":         true,
	"score":        true,
	"timeline":     true,
	"imagemap":     true,
	"templatedata": true,
	"categorytree": true,
}

// StripCode renders the sequence as plain text. Templates and comments are
// removed, links are replaced by their visible text, HTML tags are dropped
// and entities are decoded. The result is not trimmed.
func (w Wikicode) StripCode() string {
	var sb strings.Builder
	w.strip(&sb)
	return stripHTML(sb.String())
}

func (w Wikicode) strip(sb *strings.Builder) {
	for _, n := range w {
		switch n := n.(type) {
		case *Text:
			sb.WriteString(stripQuotes(n.Value))
		case *Wikilink:
			if n.Text != nil {
				n.Text.strip(sb)
			} else {
				n.Title.strip(sb)
			}
		case *ExternalLink:
			if n.Title != nil {
				n.Title.strip(sb)
			}
		case *Template, *Comment:
			// dropped
		}
	}
}

// stripQuotes removes bold and italic markup. Runs of two, three or five
// apostrophes vanish, a run of four keeps one literal apostrophe and longer
// runs keep all but the last five.
func stripQuotes(s string) string {
	if !strings.Contains(s, "''") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\'' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '\'' {
			j++
		}
		switch n := j - i; {
		case n == 1, n == 4:
			sb.WriteByte('\'')
		case n > 5:
			sb.WriteString(strings.Repeat("'", n-5))
		}
		i = j
	}
	return sb.String()
}

// stripHTML removes tags, drops the contents of invisible tags and decodes
// entities.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var (
		sb     strings.Builder
		hidden int
	)
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			if hidden == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if invisibleTags[string(name)] {
				hidden++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if invisibleTags[string(name)] && hidden > 0 {
				hidden--
			}
		}
	}
}
