// Package sourcemap writes version 3 source maps.
package sourcemap

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidMapping is returned for a mapping with out of range positions
// or an original position without a source.
var ErrInvalidMapping = errors.New("invalid mapping")

const version = 3

// Position is a 1-based line and 0-based column.
type Position struct {
	Line   int
	Column int
}

// Mapping links a generated position to an original one. A mapping without
// Original maps generated text to no source.
type Mapping struct {
	Generated Position
	Original  *Position
	Source    string
	Name      string
}

func (m Mapping) valid() bool {
	if m.Generated.Line <= 0 || m.Generated.Column < 0 {
		return false
	}

	if m.Original == nil {
		return m.Source == "" && m.Name == ""
	}

	return m.Original.Line > 0 && m.Original.Column >= 0 && m.Source != ""
}

// indexSet is an insertion ordered set of strings.
type indexSet struct {
	items []string
	index map[string]int
}

func (set *indexSet) add(item string) int {
	if idx, ok := set.index[item]; ok {
		return idx
	}

	if set.index == nil {
		set.index = map[string]int{}
	}

	set.index[item] = len(set.items)
	set.items = append(set.items, item)

	return len(set.items) - 1
}

// Generator accumulates mappings and renders the source map.
type Generator struct {
	file           string
	sourceRoot     string
	sources        indexSet
	names          indexSet
	mappings       []Mapping
	sorted         bool
	sourcesContent map[string]string
}

// NewGenerator returns a generator for the named output file. Both
// arguments may be empty.
func NewGenerator(file, sourceRoot string) *Generator {
	return &Generator{file: file, sourceRoot: sourceRoot, sorted: true}
}

// AddMapping records a mapping.
func (gen *Generator) AddMapping(mapping Mapping) error {
	if !mapping.valid() {
		return fmt.Errorf("%w: generated %d:%d source %q", ErrInvalidMapping,
			mapping.Generated.Line, mapping.Generated.Column, mapping.Source)
	}

	if mapping.Source != "" {
		gen.sources.add(mapping.Source)
	}

	if mapping.Name != "" {
		gen.names.add(mapping.Name)
	}

	if n := len(gen.mappings); n > 0 && compareGenerated(gen.mappings[n-1], mapping) > 0 {
		gen.sorted = false
	}

	gen.mappings = append(gen.mappings, mapping)

	return nil
}

// SetSourceContent embeds the text of a source. An empty content removes it.
func (gen *Generator) SetSourceContent(source, content string) {
	if content == "" {
		delete(gen.sourcesContent, source)

		return
	}

	if gen.sourcesContent == nil {
		gen.sourcesContent = map[string]string{}
	}

	gen.sourcesContent[source] = content
}

// Mappings returns the recorded mappings in generated order.
func (gen *Generator) Mappings() []Mapping {
	gen.sort()

	return slices.Clone(gen.mappings)
}

func (gen *Generator) sort() {
	if !gen.sorted {
		slices.SortStableFunc(gen.mappings, compareGenerated)
		gen.sorted = true
	}
}

func compareOriginal(a, b *Position) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.Column, b.Column))
}

func compareGenerated(a, b Mapping) int {
	return cmp.Or(
		cmp.Compare(a.Generated.Line, b.Generated.Line),
		cmp.Compare(a.Generated.Column, b.Generated.Column),
		cmp.Compare(a.Source, b.Source),
		compareOriginal(a.Original, b.Original),
		cmp.Compare(a.Name, b.Name),
	)
}

// EncodedMappings renders the "mappings" field.
func (gen *Generator) EncodedMappings() string {
	gen.sort()

	var (
		builder        strings.Builder
		prevColumn     int
		prevLine       = 1
		prevOrigLine   int
		prevOrigColumn int
		prevSource     int
		prevName       int
	)

	for idx, mapping := range gen.mappings {
		if mapping.Generated.Line != prevLine {
			prevColumn = 0

			for mapping.Generated.Line != prevLine {
				builder.WriteByte(';')

				prevLine++
			}
		} else if idx > 0 {
			if compareGenerated(mapping, gen.mappings[idx-1]) == 0 {
				continue
			}

			builder.WriteByte(',')
		}

		EncodeVLQ(&builder, mapping.Generated.Column-prevColumn)
		prevColumn = mapping.Generated.Column

		if mapping.Original == nil {
			continue
		}

		source := gen.sources.index[mapping.Source]
		EncodeVLQ(&builder, source-prevSource)
		prevSource = source

		EncodeVLQ(&builder, mapping.Original.Line-1-prevOrigLine)
		prevOrigLine = mapping.Original.Line - 1

		EncodeVLQ(&builder, mapping.Original.Column-prevOrigColumn)
		prevOrigColumn = mapping.Original.Column

		if mapping.Name != "" {
			name := gen.names.index[mapping.Name]
			EncodeVLQ(&builder, name-prevName)
			prevName = name
		}
	}

	return builder.String()
}

// Map is the JSON form of a source map.
type Map struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
}

// Map returns the source map document.
func (gen *Generator) Map() Map {
	doc := Map{
		Version:    version,
		File:       gen.file,
		SourceRoot: gen.sourceRoot,
		Sources:    append([]string{}, gen.sources.items...),
		Names:      append([]string{}, gen.names.items...),
		Mappings:   gen.EncodedMappings(),
	}

	if len(gen.sourcesContent) > 0 {
		doc.SourcesContent = make([]*string, len(doc.Sources))

		for idx, source := range doc.Sources {
			if content, ok := gen.sourcesContent[source]; ok {
				doc.SourcesContent[idx] = &content
			}
		}
	}

	return doc
}

// MarshalJSON implements json.Marshaler.
func (gen *Generator) MarshalJSON() ([]byte, error) {
	return json.Marshal(gen.Map())
}

// String returns the source map as JSON.
func (gen *Generator) String() string {
	data, err := gen.MarshalJSON()
	if err != nil {
		return ""
	}

	return string(data)
}
