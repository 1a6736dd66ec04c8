package wikitext

import "strings"

// Node is an element of a parsed document.
type Node interface {
	// String returns the node in its original markup form.
	String() string
}

// Wikicode is a sequence of parsed nodes.
type Wikicode []Node

// String returns the markup form of the whole sequence.
func (w Wikicode) String() string {
	var sb strings.Builder
	for _, n := range w {
		sb.WriteString(n.String())
	}
	return sb.String()
}

// Text is a run of plain text, possibly containing HTML.
type Text struct {
	Value string
}

func (t *Text) String() string { return t.Value }

// Comment is an HTML comment. Contents excludes the delimiters.
type Comment struct {
	Contents string
}

func (c *Comment) String() string { return "<!--" + c.Contents + "-->" }

// Template is a template transclusion such as {{Infobox museum|name=Louvre}}.
type Template struct {
	Name   Wikicode
	Params []Parameter
}

// Parameter is one argument of a Template. Positional arguments are named
// "1", "2", ... and have Showkey set to false.
type Parameter struct {
	Name    Wikicode
	Value   Wikicode
	Showkey bool
}

func (t *Template) String() string {
	var sb strings.Builder
	sb.WriteString("{{")
	sb.WriteString(t.Name.String())
	for _, p := range t.Params {
		sb.WriteString("|")
		if p.Showkey {
			sb.WriteString(p.Name.String())
			sb.WriteString("=")
		}
		sb.WriteString(p.Value.String())
	}
	sb.WriteString("}}")
	return sb.String()
}

// Get returns the last parameter whose trimmed name equals name.
func (t *Template) Get(name string) (Parameter, bool) {
	for i := len(t.Params) - 1; i >= 0; i-- {
		if strings.TrimSpace(t.Params[i].Name.String()) == name {
			return t.Params[i], true
		}
	}
	return Parameter{}, false
}

// Wikilink is an internal link such as [[Louvre|the Louvre]].
// Text is nil when the link has no label.
type Wikilink struct {
	Title Wikicode
	Text  Wikicode
}

func (l *Wikilink) String() string {
	if l.Text == nil {
		return "[[" + l.Title.String() + "]]"
	}
	return "[[" + l.Title.String() + "|" + l.Text.String() + "]]"
}

// ExternalLink is a bracketed external link such as [https://example.org label].
// Title is nil when the link has no label.
type ExternalLink struct {
	URL   string
	Title Wikicode
}

func (l *ExternalLink) String() string {
	if l.Title == nil {
		return "[" + l.URL + "]"
	}
	return "[" + l.URL + " " + l.Title.String() + "]"
}

// Templates returns every template in document order, including templates
// nested in parameters and links. A parent precedes its children.
func (w Wikicode) Templates() []*Template {
	var out []*Template
	w.walk(func(n Node) {
		if t, ok := n.(*Template); ok {
			out = append(out, t)
		}
	})
	return out
}

// Wikilinks returns every wikilink in document order, including nested ones.
func (w Wikicode) Wikilinks() []*Wikilink {
	var out []*Wikilink
	w.walk(func(n Node) {
		if l, ok := n.(*Wikilink); ok {
			out = append(out, l)
		}
	})
	return out
}

// walk visits every node depth-first, parents before children.
func (w Wikicode) walk(visit func(Node)) {
	for _, n := range w {
		visit(n)
		switch n := n.(type) {
		case *Template:
			n.Name.walk(visit)
			for _, p := range n.Params {
				if p.Showkey {
					p.Name.walk(visit)
				}
				p.Value.walk(visit)
			}
		case *Wikilink:
			n.Title.walk(visit)
			n.Text.walk(visit)
		case *ExternalLink:
			n.Title.walk(visit)
		}
	}
}
