package extension_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/extension"
	"github.com/Sumatoshi-tech/csstree/pkg/lexer"
	"github.com/Sumatoshi-tech/csstree/pkg/syntax"
)

const yamlExtension = `
generic: true
types:
  brand-color: "acme-red | acme-blue"
  color: "| <brand-color>"
properties:
  acme-gap: "<length> | none"
atrules:
  acme:
    prelude: "<ident>"
    descriptors:
      size: "<length>"
  font-face: null
`

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	patch, err := extension.Decode([]byte(yamlExtension), extension.FormatYAML, "test.yaml")
	require.NoError(t, err)

	require.NotNil(t, patch.Generic)
	assert.True(t, *patch.Generic)
	assert.Equal(t, "| <brand-color>", patch.Types["color"])
	assert.Equal(t, "<length> | none", patch.Properties["acme-gap"])
	require.Contains(t, patch.Atrules, "acme")
	require.NotNil(t, patch.Atrules["acme"].Prelude)
	assert.Equal(t, "<ident>", *patch.Atrules["acme"].Prelude)
	assert.Contains(t, patch.Atrules, "font-face")
	assert.Nil(t, patch.Atrules["font-face"])
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	patch, err := extension.Decode([]byte(`{"units":{"length":["px","acme"]}}`), extension.FormatJSON, "x.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"px", "acme"}, patch.Units["length"])

	patch, err = extension.Decode([]byte(""), extension.FormatYAML, "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, syntax.Patch{}, patch)
}

func TestDecodeInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "colors: {}"},
		{"non string syntax", "types: {a: 1}"},
		{"unknown unit group", "units: {mass: [kg]}"},
		{"bad atrule field", "atrules: {x: {body: a}}"},
	}

	for _, tt := range tests {
		_, err := extension.Decode([]byte(tt.doc), extension.FormatYAML, "bad.yaml")
		require.ErrorIs(t, err, extension.ErrInvalid, tt.name)

		var verr *extension.ValidationError
		require.ErrorAs(t, err, &verr, tt.name)
		assert.Equal(t, "bad.yaml", verr.Source)
		assert.NotEmpty(t, verr.Problems, tt.name)
	}

	_, err := extension.Decode([]byte("types: ["), extension.FormatYAML, "broken.yaml")
	require.Error(t, err)
	require.NotErrorIs(t, err, extension.ErrInvalid)

	_, err = extension.Decode([]byte("{}"), extension.Format("toml"), "x.toml")
	require.ErrorIs(t, err, extension.ErrUnknownFormat)
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	format, err := extension.FormatOf("a/b.YML")
	require.NoError(t, err)
	assert.Equal(t, extension.FormatYAML, format)

	format, err = extension.FormatOf("b.json")
	require.NoError(t, err)
	assert.Equal(t, extension.FormatJSON, format)

	_, err = extension.FormatOf("b.txt")
	require.ErrorIs(t, err, extension.ErrUnknownFormat)
}

func TestApply(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "acme.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlExtension), 0o600))

	base := syntax.Default()

	extended, err := extension.Apply(base, path)
	require.NoError(t, err)

	lex := extended.Lexer()
	assert.NotNil(t, lex.MatchProperty("color", lexer.CSS("acme-red")).Matched)
	assert.NotNil(t, lex.MatchProperty("color", lexer.CSS("red")).Matched)
	assert.NotNil(t, lex.MatchProperty("acme-gap", lexer.CSS("none")).Matched)
	assert.NotNil(t, lex.MatchAtruleDescriptor("acme", "size", lexer.CSS("2px")).Matched)
	assert.Nil(t, lex.GetAtrule("font-face", false))

	assert.Nil(t, base.Lexer().MatchProperty("color", lexer.CSS("acme-red")).Matched)

	_, err = extension.Apply(base, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	assert.Contains(t, string(extension.Schema()), `"atrules"`)
}
