package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig keeps CLI tests independent of any config in $HOME or CWD.
const testConfig = `logging:
  level: error
limits:
  max_input_size: 1KB
`

func writeTestConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".csstree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	return path
}

// runCLI runs the root command with stdin and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	rootCmd := newRootCmd()

	var outBuf, errBuf bytes.Buffer

	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(append([]string{"--config", writeTestConfig(t)}, args...))

	err = rootCmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestHelpAndSubcommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args    []string
		wantOut string
		wantErr bool
	}{
		{args: []string{"--help"}, wantOut: "csstree parses CSS into a detailed syntax tree"},
		{args: []string{"parse", "--help"}, wantOut: "Parse a CSS file"},
		{args: []string{"match", "--help"}, wantOut: "--property"},
		{args: []string{"version"}, wantOut: "csstree 0.1.0"},
		{args: []string{"unknown"}, wantErr: true},
	}

	for _, tt := range tests {
		stdout, _, err := runCLI(t, "", tt.args...)
		if tt.wantErr {
			require.Error(t, err, tt.args)

			continue
		}

		require.NoError(t, err, tt.args)
		assert.Contains(t, stdout, tt.wantOut, tt.args)
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := runCLI(t, "a{color red}", "parse", "--stats")
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &tree))
	assert.Equal(t, "StyleSheet", tree["type"])
	assert.Contains(t, stderr, "Colon is expected")
	assert.True(t, strings.HasPrefix(stderr, "<stdin>:1:"), stderr)
	assert.Contains(t, stderr, "errors: 1")
	assert.Contains(t, stderr, "input: 12 B in 1 line(s)")

	stdout, _, err = runCLI(t, "1px solid", "parse", "--context", "value", "--positions")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"type": "Value"`)
	assert.Contains(t, stdout, `"loc"`)

	_, _, err = runCLI(t, strings.Repeat("a", 2000), "parse")
	require.ErrorIs(t, err, ErrInputTooLarge)
}

func TestParseCompressedAndGenerate(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "in.css", ".a , .b { color : red }")
	output := filepath.Join(t.TempDir(), "tree.json")

	_, _, err := runCLI(t, "", "parse", input, "--output", output, "--compress", "--positions")
	require.NoError(t, err)
	require.FileExists(t, output+".lz4")

	stdout, _, err := runCLI(t, "", "generate", output+".lz4")
	require.NoError(t, err)
	assert.Equal(t, ".a,.b{color:red}\n", stdout)

	cssOut := filepath.Join(t.TempDir(), "out.css")
	mapOut := cssOut + ".map"

	_, _, err = runCLI(t, "", "generate", output+".lz4", "--output", cssOut, "--source-map", mapOut)
	require.NoError(t, err)

	css, err := os.ReadFile(cssOut)
	require.NoError(t, err)
	assert.Equal(t, ".a,.b{color:red}", string(css))

	var sourceMap map[string]any

	data, err := os.ReadFile(mapOut)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &sourceMap))
	assert.Equal(t, "out.css", sourceMap["file"])
	assert.NotEmpty(t, sourceMap["mappings"])
}

func TestGenerateFromStdin(t *testing.T) {
	t.Parallel()

	tree, _, err := runCLI(t, "a { margin : 0 }", "parse")
	require.NoError(t, err)

	stdout, _, err := runCLI(t, tree, "generate", "--mode", "spec")
	require.NoError(t, err)
	assert.Equal(t, "a{margin:0}\n", stdout)

	_, _, err = runCLI(t, tree, "generate", "--source-map", filepath.Join(t.TempDir(), "x.map"))
	require.ErrorIs(t, err, ErrNoLocations)
}

func TestTokensCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, "a{}", "tokens", "--format", "json")
	require.NoError(t, err)

	var rows []tokenRow
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "ident-token", rows[0].Type)
	assert.Equal(t, "a", rows[0].Value)
	assert.Equal(t, 2, rows[1].Column)

	stdout, _, err = runCLI(t, "a{}", "tokens")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ident-token")
	assert.Contains(t, stdout, "Total: 3 tokens")
}

func TestRoundtripCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, "a { color : red }", "roundtrip", "--check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "17 -> 12 bytes")

	stdout, _, err = runCLI(t, "a{color:red}", "roundtrip")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no changes")
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, ".a{colr:red}", "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "<stdin>:1:4: warning: Unknown property `colr`")
	assert.Contains(t, stdout, "did you mean `color`")

	stdout, _, err = runCLI(t, ".a{colr:red}", "validate", "--strict")
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, stdout, "0 error(s), 1 warning(s)")

	path := writeFile(t, "bad.css", ".a{width:red}")

	stdout, _, err = runCLI(t, "", "validate", path, "--format", "json")
	require.ErrorIs(t, err, ErrValidationFailed)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Problems, 1)
	assert.Equal(t, "width", reports[0].Problems[0].Name)

	stdout, _, err = runCLI(t, ".a{color:red}", "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 file(s) valid")
}

func TestMatchCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, "", "match", "1px solid red", "--property", "border", "--tree")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"1px solid red" matches border`)
	assert.Contains(t, stdout, `"syntax"`)

	stdout, _, err = runCLI(t, "", "match", "1px", "--property", "color")
	require.ErrorIs(t, err, ErrNoMatch)
	assert.Contains(t, stdout, "does not match color")

	stdout, _, err = runCLI(t, "", "match", "12.5%", "--type", "length-percentage", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"matched": true`)

	_, _, err = runCLI(t, "", "match", "red")
	require.Error(t, err)

	_, _, err = runCLI(t, "", "match", "red", "--property", "color", "--type", "color")
	require.Error(t, err)
}

func TestFindCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, "a{color:red;top:0}", "find", "Declaration")
	require.NoError(t, err)
	assert.Contains(t, stdout, "<stdin>:1:3: color:red")
	assert.Contains(t, stdout, "<stdin>:1:13: top:0")
	assert.Contains(t, stdout, "2 node(s)")

	stdout, _, err = runCLI(t, "a{color:red;top:0}", "find", "Declaration", "--last")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 node(s)")
	assert.Contains(t, stdout, "top:0")

	_, _, err = runCLI(t, "", "find", "Declaraton")
	require.ErrorIs(t, err, ErrUnknownKind)
	assert.Contains(t, err.Error(), "did you mean `Declaration`")
}

func TestSyntaxCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, "", "syntax", "properties", "background-col")
	require.NoError(t, err)
	assert.Contains(t, stdout, "background-color")
	assert.Contains(t, stdout, "<color>")
	assert.Contains(t, stdout, "Total: ")

	stdout, _, err = runCLI(t, "", "syntax", "atrules", "font-face")
	require.NoError(t, err)
	assert.Contains(t, stdout, "@font-face")
	assert.Contains(t, stdout, "font-family")

	stdout, _, err = runCLI(t, "", "syntax", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "properties:")

	_, _, err = runCLI(t, "", "syntax", "colors")
	require.ErrorIs(t, err, ErrUnknownSection)
}

func TestExtensionFlag(t *testing.T) {
	t.Parallel()

	ext := writeFile(t, "acme.yaml", "properties:\n  acme-gap: \"<length> | none\"\n")

	_, _, err := runCLI(t, "", "match", "none", "--property", "acme-gap")
	require.Error(t, err)

	stdout, _, err := runCLI(t, "", "--extension", ext, "match", "none", "--property", "acme-gap")
	require.NoError(t, err)
	assert.Contains(t, stdout, "matches acme-gap")
}

func TestReadInputRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, _, err := readInput(strings.NewReader(""), t.TempDir(), 10)
	require.ErrorIs(t, err, ErrDirectoryPath)

	_, _, err = readInput(strings.NewReader(""), " ", 10)
	require.ErrorIs(t, err, ErrEmptyPath)

	_, _, err = readInput(strings.NewReader("a{\x00}"), stdinPath, 10)
	require.ErrorIs(t, err, ErrBinaryInput)

	content, name, err := readInput(strings.NewReader("a{}"), stdinPath, 10)
	require.NoError(t, err)
	assert.Equal(t, "a{}", content)
	assert.Equal(t, "<stdin>", name)
}
