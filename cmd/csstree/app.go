package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/pkg/config"
	"github.com/Sumatoshi-tech/csstree/pkg/extension"
	"github.com/Sumatoshi-tech/csstree/pkg/generator"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/syntax"
)

// app is the state a subcommand runs with: loaded configuration,
// observability providers and the syntax with extensions applied.
type app struct {
	cfg       *config.Config
	providers observability.Providers
	syntax    *syntax.Syntax
	red       *observability.REDMetrics
}

// setup loads configuration and builds the syntax for a subcommand.
// Logs go to the command's stderr.
func setup(cmd *cobra.Command, flags *globalFlags, mode observability.AppMode) (*app, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}

	if flags.logJSON {
		cfg.Logging.JSON = true
	}

	return setupWith(cfg, cmd.ErrOrStderr(), flags.extensions, mode)
}

func setupWith(cfg *config.Config, logOutput io.Writer, extraExtensions []string, mode observability.AppMode) (*app, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogOutput = logOutput

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	lexerMetrics, err := observability.NewLexerMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("init lexer metrics: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("init request metrics: %w", err)
	}

	base := syntax.Default().Fork(syntax.Patch{},
		syntax.WithMaxIterations(cfg.Lexer.MaxIterations),
		syntax.WithCacheSize(cfg.Lexer.CacheSize),
		syntax.WithMatchObserver(lexerMetrics.Observe),
	)

	extensions := append(append([]string{}, cfg.Lexer.Extensions...), extraExtensions...)

	syn, err := extension.Apply(base, extensions...)
	if err != nil {
		return nil, fmt.Errorf("load extensions: %w", err)
	}

	if len(extensions) > 0 {
		providers.Logger.Debug("syntax extensions applied", "files", extensions)
	}

	return &app{cfg: cfg, providers: providers, syntax: syn, red: red}, nil
}

// close flushes telemetry.
func (a *app) close() {
	err := a.providers.Shutdown(context.Background())
	if err != nil {
		a.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// maxInput returns the configured input limit in bytes.
func (a *app) maxInput() int {
	return a.cfg.Limits.MaxInputBytes()
}

// parserOptions turns the parser section of the configuration into
// parse options.
func (a *app) parserOptions() []parser.Option {
	p := a.cfg.Parser

	return []parser.Option{
		parser.WithPositions(p.Positions),
		parser.WithParseValue(p.ParseValue),
		parser.WithParseCustomProperty(p.ParseCustomProperty),
		parser.WithParseRulePrelude(p.ParseRulePrelude),
		parser.WithParseAtrulePrelude(p.ParseAtrulePrelude),
	}
}

// generatorMode returns the configured generator mode, or override when
// it is set.
func (a *app) generatorMode(override string) (generator.Mode, error) {
	name := a.cfg.Generator.Mode
	if override != "" {
		name = override
	}

	mode, err := generator.ParseMode(name)
	if err != nil {
		return mode, fmt.Errorf("generator mode: %w", err)
	}

	return mode, nil
}
