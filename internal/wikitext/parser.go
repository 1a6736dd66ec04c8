package wikitext

import (
	"strconv"
	"strings"
)

// externalSchemes are the URL prefixes that turn a single bracket into an
// external link.
var externalSchemes = []string{"http://", "https://", "//", "ftp://", "mailto:"}

type constructKind int

const (
	kindTemplate constructKind = iota
	kindWikilink
	kindExternal
)

type failure struct {
	kind constructKind
	pos  int
}

type parser struct {
	src string
	pos int

	// failed remembers constructs that could not be closed, so the same
	// opening is not retried when the text around it is rescanned.
	failed map[failure]bool
}

// Parse parses src into a node sequence. It never fails: unclosed constructs
// become text.
func Parse(src string) Wikicode {
	p := &parser{src: src, failed: make(map[failure]bool)}
	nodes, _ := p.parseNodes()
	return nodes
}

// parseNodes consumes input until one of stops is found at the current
// nesting level or the input ends. It returns the parsed nodes and the stop
// token that ended the run ("" at end of input). The stop token is consumed.
func (p *parser) parseNodes(stops ...string) (Wikicode, string) {
	var (
		nodes Wikicode
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, &Text{Value: text.String()})
			text.Reset()
		}
	}

	for p.pos < len(p.src) {
		rest := p.src[p.pos:]

		for _, stop := range stops {
			if strings.HasPrefix(rest, stop) {
				flush()
				p.pos += len(stop)
				return nodes, stop
			}
		}

		switch {
		case strings.HasPrefix(rest, "<!--"):
			flush()
			nodes = append(nodes, p.parseComment())
			continue
		case strings.HasPrefix(rest, "{{"):
			if n, ok := p.tryTemplate(); ok {
				flush()
				nodes = append(nodes, n)
				continue
			}
		case strings.HasPrefix(rest, "[["):
			if n, ok := p.tryWikilink(); ok {
				flush()
				nodes = append(nodes, n)
				continue
			}
		case rest[0] == '[':
			if n, ok := p.tryExternalLink(); ok {
				flush()
				nodes = append(nodes, n)
				continue
			}
		}

		text.WriteByte(rest[0])
		p.pos++
	}

	flush()
	return nodes, ""
}

// parseComment consumes a comment. An unterminated comment runs to the end
// of the input, as MediaWiki does.
func (p *parser) parseComment() *Comment {
	start := p.pos + len("<!--")
	end := strings.Index(p.src[start:], "-->")
	if end < 0 {
		p.pos = len(p.src)
		return &Comment{Contents: p.src[start:]}
	}
	p.pos = start + end + len("-->")
	return &Comment{Contents: p.src[start : start+end]}
}

func (p *parser) tryTemplate() (*Template, bool) {
	start := p.pos
	key := failure{kind: kindTemplate, pos: start}
	if p.failed[key] {
		return nil, false
	}

	p.pos += len("{{")
	name, stop := p.parseNodes("|", "}}")
	if stop == "" {
		return p.fail(key, start)
	}

	tpl := &Template{Name: name}
	positional := 0
	for stop == "|" {
		var head Wikicode
		head, stop = p.parseNodes("=", "|", "}}")
		if stop == "" {
			return p.fail(key, start)
		}

		if stop == "=" {
			var value Wikicode
			value, stop = p.parseNodes("|", "}}")
			if stop == "" {
				return p.fail(key, start)
			}
			tpl.Params = append(tpl.Params, Parameter{Name: head, Value: value, Showkey: true})
			continue
		}

		positional++
		tpl.Params = append(tpl.Params, Parameter{
			Name:  Wikicode{&Text{Value: strconv.Itoa(positional)}},
			Value: head,
		})
	}

	return tpl, true
}

func (p *parser) tryWikilink() (*Wikilink, bool) {
	start := p.pos
	key := failure{kind: kindWikilink, pos: start}
	if p.failed[key] {
		return nil, false
	}

	p.pos += len("[[")
	title, stop := p.parseNodes("|", "]]")
	switch stop {
	case "":
		p.fail(key, start)
		return nil, false
	case "]]":
		return &Wikilink{Title: title}, true
	}

	text, stop := p.parseNodes("]]")
	if stop == "" {
		p.fail(key, start)
		return nil, false
	}
	if text == nil {
		text = Wikicode{}
	}
	return &Wikilink{Title: title, Text: text}, true
}

func (p *parser) tryExternalLink() (*ExternalLink, bool) {
	start := p.pos
	key := failure{kind: kindExternal, pos: start}
	if p.failed[key] {
		return nil, false
	}

	rest := p.src[start+1:]
	if !hasScheme(rest) {
		return nil, false
	}

	urlEnd := strings.IndexAny(rest, " ]\n")
	if urlEnd < 0 || rest[urlEnd] == '\n' {
		p.failed[key] = true
		return nil, false
	}

	link := &ExternalLink{URL: rest[:urlEnd]}
	p.pos = start + 1 + urlEnd
	if rest[urlEnd] == ']' {
		p.pos++
		return link, true
	}

	p.pos++ // separator space
	title, stop := p.parseNodes("]")
	if stop == "" {
		p.fail(key, start)
		return nil, false
	}
	if title == nil {
		title = Wikicode{}
	}
	link.Title = title
	return link, true
}

// fail records a failed construct and rewinds to its opening.
func (p *parser) fail(key failure, start int) (*Template, bool) {
	p.failed[key] = true
	p.pos = start
	return nil, false
}

func hasScheme(s string) bool {
	lower := strings.ToLower(s)
	for _, scheme := range externalSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
