package swml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Version is the SWML specification version emitted in rendered documents.
const Version = "1.0.0"

// MainSection is the entry section executed by the platform when a call starts.
const MainSection = "main"

// Verb represents a polymorphic SWML instruction. Concrete verb types
// implement the unexported verbName marker enabling a closed set; the name is
// used as the single JSON object key when the verb is rendered.
type Verb interface{ verbName() string }

// Document is an ordered collection of named verb sections serializing to
//
//	{"version":"1.0.0","sections":{"main":[{"answer":{}},...]}}
//
// Sections render in lexical order with "main" always first so output stays
// deterministic for a fixed agent definition.
type Document struct {
	version  string
	sections map[string][]Verb
}

// NewDocument creates an empty document with an initialized main section.
func NewDocument() *Document {
	return &Document{
		version:  Version,
		sections: map[string][]Verb{MainSection: {}},
	}
}

// AddVerb appends a verb to the named section, creating the section on demand.
func (d *Document) AddVerb(section string, v Verb) *Document {
	d.sections[section] = append(d.sections[section], v)
	return d
}

// Add appends a verb to the main section.
func (d *Document) Add(v Verb) *Document { return d.AddVerb(MainSection, v) }

// Sections returns the section names in render order.
func (d *Document) Sections() []string { return d.sectionOrder() }

// Verbs returns the verbs of a section in insertion order.
func (d *Document) Verbs(section string) []Verb {
	verbs := make([]Verb, len(d.sections[section]))
	copy(verbs, d.sections[section])
	return verbs
}

func (d *Document) sectionOrder() []string {
	names := make([]string, 0, len(d.sections))
	for name := range d.sections {
		if name == MainSection {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if _, ok := d.sections[MainSection]; ok {
		names = append([]string{MainSection}, names...)
	}
	return names
}

// MarshalJSON implements deterministic document serialization.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"version":`)
	version := d.version
	if version == "" {
		version = Version
	}
	vb, err := json.Marshal(version)
	if err != nil {
		return nil, err
	}
	buf.Write(vb)
	buf.WriteString(`,"sections":{`)
	for i, name := range d.sectionOrder() {
		if i > 0 {
			buf.WriteByte(',')
		}
		nb, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(nb)
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, verb := range d.sections[name] {
			if j > 0 {
				buf.WriteByte(',')
			}
			body, err := json.Marshal(verb)
			if err != nil {
				return nil, fmt.Errorf("marshal verb %q: %w", verb.verbName(), err)
			}
			keyb, err := json.Marshal(verb.verbName())
			if err != nil {
				return nil, err
			}
			buf.WriteByte('{')
			buf.Write(keyb)
			buf.WriteByte(':')
			buf.Write(body)
			buf.WriteByte('}')
		}
		buf.WriteByte(']')
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// Render serializes the document to compact JSON.
func (d *Document) Render() ([]byte, error) { return json.Marshal(d) }

// RenderIndent serializes the document to indented JSON for human inspection.
func (d *Document) RenderIndent() ([]byte, error) {
	compact, err := d.Render()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
