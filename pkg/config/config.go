// Package config provides configuration loading and validation for the
// csstree tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/csstree/pkg/safeconv"
)

// Sentinel validation errors.
var (
	ErrInvalidPort          = errors.New("invalid server port")
	ErrInvalidMode          = errors.New("generator mode must be safe or spec")
	ErrInvalidIterations    = errors.New("lexer max iterations must be positive")
	ErrInvalidCacheSize     = errors.New("lexer cache size must not be negative")
	ErrInvalidInputSize     = errors.New("invalid max input size")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrInvalidSampleRatio   = errors.New("sample ratio must be within [0, 1]")
	ErrInvalidServerTimeout = errors.New("server timeouts must be positive")
)

const (
	// configName is the config file name without extension.
	configName = ".csstree"
	// configType is the config file format.
	configType = "yaml"
	// envPrefix is the environment variable prefix for csstree settings.
	envPrefix = "CSSTREE"
	// envKeySeparator is the nested key separator in environment variable names.
	envKeySeparator = "_"

	maxPort = 65535
)

// Config is the top-level configuration struct for csstree.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Parser        ParserConfig        `mapstructure:"parser"`
	Generator     GeneratorConfig     `mapstructure:"generator"`
	Lexer         LexerConfig         `mapstructure:"lexer"`
	Limits        LimitsConfig        `mapstructure:"limits"`
	Server        ServerConfig        `mapstructure:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ParserConfig holds the default parse options.
type ParserConfig struct {
	Positions           bool `mapstructure:"positions"`
	ParseValue          bool `mapstructure:"parse_value"`
	ParseCustomProperty bool `mapstructure:"parse_custom_property"`
	ParseRulePrelude    bool `mapstructure:"parse_rule_prelude"`
	ParseAtrulePrelude  bool `mapstructure:"parse_atrule_prelude"`
}

// GeneratorConfig holds the default generate options.
type GeneratorConfig struct {
	Mode      string `mapstructure:"mode"`
	SourceMap bool   `mapstructure:"source_map"`
}

// LexerConfig holds the syntax dictionary settings.
type LexerConfig struct {
	Extensions    []string `mapstructure:"extensions"`
	MaxIterations int      `mapstructure:"max_iterations"`
	CacheSize     int      `mapstructure:"cache_size"`
}

// LimitsConfig bounds the input the tools accept.
type LimitsConfig struct {
	MaxInputSize string `mapstructure:"max_input_size"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	DiagnosticsAddr string        `mapstructure:"diagnostics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	Port            int           `mapstructure:"port"`
}

// Addr returns the listen address of the API server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ObservabilityConfig holds OpenTelemetry export settings.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// MaxInputBytes returns the parsed input limit. It returns 0 when the
// limit does not parse or fit an int; Validate rejects such configurations.
func (c LimitsConfig) MaxInputBytes() int {
	size, err := humanize.ParseBytes(c.MaxInputSize)
	if err != nil {
		return 0
	}

	limit, ok := safeconv.Uint64ToInt(size)
	if !ok {
		return 0
	}

	return limit
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var cfg Config

	// Defaults always decode.
	_ = viperCfg.Unmarshal(&cfg)

	return &cfg
}

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("parser.positions", DefaultParserPositions)
	viperCfg.SetDefault("parser.parse_value", DefaultParserParseValue)
	viperCfg.SetDefault("parser.parse_custom_property", DefaultParserParseCustomProperty)
	viperCfg.SetDefault("parser.parse_rule_prelude", DefaultParserParseRulePrelude)
	viperCfg.SetDefault("parser.parse_atrule_prelude", DefaultParserParseAtrulePrelude)

	viperCfg.SetDefault("generator.mode", DefaultGeneratorMode)
	viperCfg.SetDefault("generator.source_map", DefaultGeneratorSourceMap)

	viperCfg.SetDefault("lexer.extensions", []string{})
	viperCfg.SetDefault("lexer.max_iterations", DefaultLexerMaxIterations)
	viperCfg.SetDefault("lexer.cache_size", DefaultLexerCacheSize)

	viperCfg.SetDefault("limits.max_input_size", DefaultMaxInputSize)

	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)
	viperCfg.SetDefault("server.diagnostics_addr", DefaultDiagnosticsAddr)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", DefaultLoggingJSON)

	viperCfg.SetDefault("observability.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("observability.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("observability.sample_ratio", DefaultSampleRatio)
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration for values the tools cannot use.
func (c *Config) Validate() error {
	if c.Generator.Mode != "safe" && c.Generator.Mode != "spec" {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Generator.Mode)
	}

	if c.Lexer.MaxIterations <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIterations, c.Lexer.MaxIterations)
	}

	if c.Lexer.CacheSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.Lexer.CacheSize)
	}

	if c.Limits.MaxInputBytes() <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidInputSize, c.Limits.MaxInputSize)
	}

	err := c.validateServer()
	if err != nil {
		return err
	}

	if !logLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Observability.SampleRatio)
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return ErrInvalidServerTimeout
	}

	return nil
}
