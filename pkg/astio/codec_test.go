package astio_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/astio"
	"github.com/Sumatoshi-tech/csstree/pkg/generator"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
)

const sample = ".a{color:red;margin:0 auto}@media screen{.b>.c{width:calc(100% - 2px)}}"

func parseSample(t *testing.T) ast.Node {
	t.Helper()

	root, err := parser.Parse(sample, parser.WithPositions(true))
	require.NoError(t, err)

	return root
}

func generate(t *testing.T, node ast.Node) string {
	t.Helper()

	css, err := generator.Generate(node)
	require.NoError(t, err)

	return css
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codecs := []astio.Codec{astio.NewJSONCodec(), &astio.JSONCodec{}, astio.NewLZ4Codec()}

	for _, codec := range codecs {
		root := parseSample(t)

		var buf bytes.Buffer

		require.NoError(t, codec.Encode(&buf, root))

		decoded, err := codec.Decode(&buf)
		require.NoError(t, err)

		assert.Equal(t, sample, generate(t, decoded), codec.Extension())
		assert.Equal(t, ast.ToPlain(root), ast.ToPlain(decoded), codec.Extension())
	}
}

func TestJSONCodecIndent(t *testing.T) {
	t.Parallel()

	var pretty, compact bytes.Buffer

	root := parseSample(t)

	require.NoError(t, astio.NewJSONCodec().Encode(&pretty, root))
	require.NoError(t, (&astio.JSONCodec{}).Encode(&compact, root))

	assert.Contains(t, pretty.String(), "\n  \"")
	assert.Equal(t, 1, strings.Count(compact.String(), "\n"))
	assert.Less(t, compact.Len(), pretty.Len())
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := astio.NewJSONCodec().Decode(strings.NewReader("[1,2]"))
	require.ErrorIs(t, err, astio.ErrNotANode)

	_, err = astio.NewJSONCodec().Decode(strings.NewReader(`{"type":"Nope"}`))
	require.ErrorIs(t, err, ast.ErrUnknownType)

	_, err = astio.NewLZ4Codec().Decode(strings.NewReader("not lz4"))
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := parseSample(t)

	for _, name := range []string{"tree.json", "tree.json.lz4"} {
		path := filepath.Join(dir, name)

		require.NoError(t, astio.Save(path, root))

		loaded, err := astio.Load(path)
		require.NoError(t, err)
		assert.Equal(t, sample, generate(t, loaded), name)
	}

	assert.IsType(t, &astio.LZ4Codec{}, astio.CodecFor("x.JSON.LZ4"))
	assert.IsType(t, &astio.JSONCodec{}, astio.CodecFor("x.json"))

	_, err := astio.Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
