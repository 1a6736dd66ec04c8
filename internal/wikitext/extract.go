package wikitext

import "strings"

// InfoboxPrefix is the lowercased template name prefix that marks an infobox.
const InfoboxPrefix = "infobox "

// Output field names shared by the built-in descriptors.
const (
	FieldImage  = "image"
	FieldName   = "name"
	FieldYear   = "year"
	FieldArtist = "artist"
	FieldMuseum = "museum"
)

// FieldKind selects how a parameter value becomes a field value.
type FieldKind int

const (
	// PlainText fields take the parameter value stripped of markup.
	PlainText FieldKind = iota

	// Reference fields take the title of the first wikilink in the value.
	// A value without a wikilink yields no field.
	Reference
)

// Field maps a template parameter to an output field.
type Field struct {
	Name string
	Kind FieldKind
}

// Descriptor describes which infobox parameters an entity type reads.
// Params is keyed by trimmed parameter name.
type Descriptor struct {
	Params map[string]Field
}

// MuseumDescriptor reads the image of a museum infobox.
var MuseumDescriptor = Descriptor{
	Params: map[string]Field{
		"image":      {Name: FieldImage},
		"image_file": {Name: FieldImage},
	},
}

// PaintingDescriptor reads the fields of an artwork infobox.
var PaintingDescriptor = Descriptor{
	Params: map[string]Field{
		"image":      {Name: FieldImage},
		"image_file": {Name: FieldImage},
		"name":       {Name: FieldName},
		"year":       {Name: FieldYear},
		"artist":     {Name: FieldArtist},
		"museum":     {Name: FieldMuseum, Kind: Reference},
	},
}

// Fields holds extracted field values by output field name. A missing key
// means the field is absent.
type Fields map[string]string

// Get returns the value of name and whether it was present.
func (f Fields) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// IsInfobox reports whether t is an infobox template.
func IsInfobox(t *Template) bool {
	name := strings.ToLower(strings.TrimSpace(t.Name.String()))
	return strings.HasPrefix(name, InfoboxPrefix)
}

// FindInfobox returns the first infobox template of the document.
func FindInfobox(code Wikicode) (*Template, bool) {
	for _, t := range code.Templates() {
		if IsInfobox(t) {
			return t, true
		}
	}
	return nil, false
}

// Extract parses src and reads the fields described by d from the first
// infobox template. Values are trimmed and empty values are treated as
// absent. When a field is mapped from several parameters, the last one in
// the template wins. A page without an infobox yields empty Fields.
func Extract(src string, d Descriptor) Fields {
	fields := Fields{}

	infobox, ok := FindInfobox(Parse(src))
	if !ok {
		return fields
	}

	for _, param := range infobox.Params {
		field, ok := d.Params[strings.TrimSpace(param.Name.String())]
		if !ok {
			continue
		}

		var value string
		switch field.Kind {
		case Reference:
			links := param.Value.Wikilinks()
			if len(links) == 0 {
				continue
			}
			value = strings.TrimSpace(links[0].Title.String())
		default:
			value = strings.TrimSpace(param.Value.StripCode())
		}

		if value != "" {
			fields[field.Name] = value
		}
	}

	return fields
}
