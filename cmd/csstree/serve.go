package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/internal/api"
	"github.com/Sumatoshi-tech/csstree/internal/mcp"
	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/internal/server"
	"github.com/Sumatoshi-tech/csstree/pkg/lsp"
)

func lspCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the CSS language server (LSP)",
		Long: `Start a language server for CSS on stdio. It reports parse errors and
invalid values as diagnostics, completes property names and shows property
syntax on hover.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, flags, observability.ModeLSP)
			if err != nil {
				return err
			}
			defer a.close()

			return lsp.NewServer(a.syntax, a.providers.Logger).Run()
		},
	}

	return cmd
}

func mcpCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes csstree as tools that AI agents can discover and invoke:
  - css_parse: parse CSS into a syntax tree
  - css_validate: check a stylesheet against the syntax dictionary
  - css_generate: print CSS from a source or a tree
  - css_match: match a value against a property, a type or a syntax`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.logJSON = true

			a, err := setup(cmd, flags, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer a.close()

			srv := mcp.NewServer(mcp.ServerDeps{
				Service: api.NewService(a.syntax, a.maxInput()),
				Logger:  a.providers.Logger,
				Metrics: a.red,
				Tracer:  a.providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}

	return cmd
}

func serverCmd(flags *globalFlags) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP API server",
		Long: `Start an HTTP server exposing POST /v1/parse, /v1/validate, /v1/generate
and /v1/match with JSON bodies, plus /healthz, /readyz and /metrics. When
server.diagnostics_addr is set, health and metrics are also served there.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, flags, observability.ModeServe)
			if err != nil {
				return err
			}
			defer a.close()

			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}

			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, a)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")

	return cmd
}

func runServer(ctx context.Context, a *app) error {
	logger := a.providers.Logger

	if addr := a.cfg.Server.DiagnosticsAddr; addr != "" {
		diag, err := observability.NewDiagnosticsServer(addr, a.providers.MetricsHandler, logger,
			observability.DictionaryCheck(a.syntax.Lexer()))
		if err != nil {
			return err
		}

		defer func() {
			closeErr := diag.Close()
			if closeErr != nil {
				logger.Warn("diagnostics server close failed", "error", closeErr)
			}
		}()

		logger.InfoContext(ctx, "diagnostics server listening", "addr", diag.Addr())
	}

	handler := server.NewHandler(server.Deps{
		Service:        api.NewService(a.syntax, a.maxInput()),
		Tracer:         a.providers.Tracer,
		Metrics:        a.red,
		MetricsHandler: a.providers.MetricsHandler,
		Logger:         logger,
		MaxBodyBytes:   int64(4 * a.maxInput()),
	})

	return server.New(a.cfg.Server, handler, logger).Run(ctx)
}
