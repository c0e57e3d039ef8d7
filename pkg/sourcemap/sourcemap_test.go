package sourcemap_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/sourcemap"
)

func TestVLQ(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   int
		encoded string
	}{
		{0, "A"},
		{1, "C"},
		{-1, "D"},
		{15, "e"},
		{16, "gB"},
		{-16, "hB"},
		{1024, "ggC"},
	}

	for _, tt := range tests {
		var builder strings.Builder

		sourcemap.EncodeVLQ(&builder, tt.value)
		assert.Equal(t, tt.encoded, builder.String(), "encode %d", tt.value)

		value, next, err := sourcemap.DecodeVLQ(tt.encoded, 0)
		require.NoError(t, err)
		assert.Equal(t, tt.value, value)
		assert.Equal(t, len(tt.encoded), next)
	}
}

func TestDecodeVLQErrors(t *testing.T) {
	t.Parallel()

	_, _, err := sourcemap.DecodeVLQ("g", 0)
	require.ErrorIs(t, err, sourcemap.ErrVLQTruncated)

	_, _, err = sourcemap.DecodeVLQ("!", 0)
	require.ErrorIs(t, err, sourcemap.ErrVLQDigit)
}

func TestGenerator(t *testing.T) {
	t.Parallel()

	gen := sourcemap.NewGenerator("out.css", "")

	// Added out of order on purpose.
	require.NoError(t, gen.AddMapping(sourcemap.Mapping{
		Generated: sourcemap.Position{Line: 3, Column: 2},
	}))
	require.NoError(t, gen.AddMapping(sourcemap.Mapping{
		Generated: sourcemap.Position{Line: 1, Column: 5},
		Original:  &sourcemap.Position{Line: 2, Column: 3},
		Source:    "a.css",
		Name:      "x",
	}))
	require.NoError(t, gen.AddMapping(sourcemap.Mapping{
		Generated: sourcemap.Position{Line: 1, Column: 0},
		Original:  &sourcemap.Position{Line: 1, Column: 0},
		Source:    "a.css",
	}))
	// Duplicate is written once.
	require.NoError(t, gen.AddMapping(sourcemap.Mapping{
		Generated: sourcemap.Position{Line: 1, Column: 0},
		Original:  &sourcemap.Position{Line: 1, Column: 0},
		Source:    "a.css",
	}))

	assert.Equal(t, "AAAA,KACGA;;E", gen.EncodedMappings())
	assert.Len(t, gen.Mappings(), 4)

	gen.SetSourceContent("a.css", "a{}")

	doc := gen.Map()
	assert.Equal(t, 3, doc.Version)
	assert.Equal(t, []string{"a.css"}, doc.Sources)
	assert.Equal(t, []string{"x"}, doc.Names)
	require.Len(t, doc.SourcesContent, 1)
	assert.Equal(t, "a{}", *doc.SourcesContent[0])

	assert.JSONEq(t,
		`{"version":3,"file":"out.css","sources":["a.css"],"names":["x"],`+
			`"mappings":"AAAA,KACGA;;E","sourcesContent":["a{}"]}`,
		gen.String())
}

func TestGeneratorRejectsInvalidMapping(t *testing.T) {
	t.Parallel()

	gen := sourcemap.NewGenerator("", "")

	tests := []sourcemap.Mapping{
		{Generated: sourcemap.Position{Line: 0, Column: 0}},
		{Generated: sourcemap.Position{Line: 1, Column: -1}},
		{Generated: sourcemap.Position{Line: 1}, Original: &sourcemap.Position{Line: 1}},
		{Generated: sourcemap.Position{Line: 1}, Source: "a.css"},
	}

	for _, mapping := range tests {
		require.ErrorIs(t, gen.AddMapping(mapping), sourcemap.ErrInvalidMapping)
	}

	assert.JSONEq(t, `{"version":3,"sources":[],"names":[],"mappings":""}`, gen.String())
}
