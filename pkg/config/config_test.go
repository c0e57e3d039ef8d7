package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/csstree/pkg/config"
)

const (
	testPort          = 9000
	testMaxIterations = 500
	testCacheSize     = 32
	testInputBytes    = 2 * 1000 * 1000
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".csstree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultParserParseValue, cfg.Parser.ParseValue)
	assert.Equal(t, config.DefaultParserPositions, cfg.Parser.Positions)
	assert.Equal(t, config.DefaultGeneratorMode, cfg.Generator.Mode)
	assert.Equal(t, config.DefaultLexerMaxIterations, cfg.Lexer.MaxIterations)
	assert.Equal(t, config.DefaultLexerCacheSize, cfg.Lexer.CacheSize)
	assert.Empty(t, cfg.Lexer.Extensions)
	assert.Equal(t, config.DefaultMaxInputSize, cfg.Limits.MaxInputSize)
	assert.Equal(t, 4*1000*1000, cfg.Limits.MaxInputBytes())
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, config.DefaultLoggingLevel, cfg.Logging.Level)
	assert.InDelta(t, config.DefaultSampleRatio, cfg.Observability.SampleRatio, 0.001)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	content := `parser:
  positions: true
  parse_value: false
generator:
  mode: spec
  source_map: true
lexer:
  extensions:
    - acme.yaml
    - brand.json
  max_iterations: 500
  cache_size: 32
limits:
  max_input_size: 2MB
server:
  port: 9000
  idle_timeout: 2m
  diagnostics_addr: ":9464"
logging:
  level: debug
  json: true
observability:
  otlp_endpoint: "localhost:4317"
  otlp_insecure: true
  sample_ratio: 0.25
`

	cfg, err := config.LoadConfig(writeConfig(t, content))
	require.NoError(t, err)

	assert.True(t, cfg.Parser.Positions)
	assert.False(t, cfg.Parser.ParseValue)
	assert.True(t, cfg.Parser.ParseRulePrelude)
	assert.Equal(t, "spec", cfg.Generator.Mode)
	assert.True(t, cfg.Generator.SourceMap)
	assert.Equal(t, []string{"acme.yaml", "brand.json"}, cfg.Lexer.Extensions)
	assert.Equal(t, testMaxIterations, cfg.Lexer.MaxIterations)
	assert.Equal(t, testCacheSize, cfg.Lexer.CacheSize)
	assert.Equal(t, testInputBytes, cfg.Limits.MaxInputBytes())
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, ":9464", cfg.Server.DiagnosticsAddr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "localhost:4317", cfg.Observability.OTLPEndpoint)
	assert.True(t, cfg.Observability.OTLPInsecure)
	assert.InDelta(t, 0.25, cfg.Observability.SampleRatio, 0.001)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("CSSTREE_SERVER_PORT", "9090")
	t.Setenv("CSSTREE_LEXER_MAX_ITERATIONS", "100")
	t.Setenv("CSSTREE_GENERATOR_MODE", "spec")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Lexer.MaxIterations)
	assert.Equal(t, "spec", cfg.Generator.Mode)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"bad port", "server: {port: 70000}", config.ErrInvalidPort},
		{"bad mode", "generator: {mode: fast}", config.ErrInvalidMode},
		{"bad iterations", "lexer: {max_iterations: 0}", config.ErrInvalidIterations},
		{"bad cache", "lexer: {cache_size: -1}", config.ErrInvalidCacheSize},
		{"bad size", "limits: {max_input_size: lots}", config.ErrInvalidInputSize},
		{"zero size", "limits: {max_input_size: 0B}", config.ErrInvalidInputSize},
		{"bad level", "logging: {level: loud}", config.ErrInvalidLogLevel},
		{"bad ratio", "observability: {sample_ratio: 2}", config.ErrInvalidSampleRatio},
		{"bad timeout", "server: {read_timeout: 0s}", config.ErrInvalidServerTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadConfig_MalformedYAML_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "parser: [unclosed"))
	require.Error(t, err)
}

func TestLoadConfig_ExplicitPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
