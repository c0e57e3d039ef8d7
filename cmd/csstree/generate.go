package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/astio"
	"github.com/Sumatoshi-tech/csstree/pkg/generator"
	"github.com/Sumatoshi-tech/csstree/pkg/sourcemap"
)

// ErrNoLocations indicates a source map was requested for a tree parsed
// without positions.
var ErrNoLocations = errors.New("tree has no source locations; parse with --positions")

type generateOptions struct {
	mode      string
	sourceMap string
	output    string
}

func generateCmd(flags *globalFlags) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [tree-file]",
		Short: "Print CSS from a syntax tree",
		Long: `Print CSS from a tree written by "csstree parse". Files ending in .lz4
are decompressed; without a file the JSON tree is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, flags, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("source-map") && a.cfg.Generator.SourceMap && opts.output != "" {
				opts.sourceMap = opts.output + ".map"
			}

			return runGenerate(cmd, a, firstArg(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "whitespace mode: safe or spec (default from config)")
	cmd.Flags().StringVar(&opts.sourceMap, "source-map", "", "write a source map to this file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write CSS to a file instead of stdout")

	return cmd
}

func loadTree(cmd *cobra.Command, path string) (ast.Node, error) {
	if path == "" || path == stdinPath {
		root, err := astio.NewJSONCodec().Decode(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read tree from stdin: %w", err)
		}

		return root, nil
	}

	resolved, err := resolveUserFilePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %q: %w", path, err)
	}

	return astio.Load(resolved)
}

func runGenerate(cmd *cobra.Command, a *app, path string, opts *generateOptions) error {
	root, err := loadTree(cmd, path)
	if err != nil {
		return err
	}

	mode, err := a.generatorMode(opts.mode)
	if err != nil {
		return err
	}

	genOpts := []generator.Option{generator.WithMode(mode)}

	var mapGen *sourcemap.Generator

	if opts.sourceMap != "" {
		if root.Location() == nil {
			return ErrNoLocations
		}

		file := ""
		if opts.output != "" {
			file = filepath.Base(opts.output)
		}

		mapGen = sourcemap.NewGenerator(file, "")
		genOpts = append(genOpts, generator.WithSourceMap(mapGen))
	}

	css, err := a.syntax.Generate(root, genOpts...)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if opts.output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), css)
	} else {
		err = os.WriteFile(opts.output, []byte(css), 0o600)
		if err != nil {
			return fmt.Errorf("write css: %w", err)
		}
	}

	if mapGen != nil {
		err = os.WriteFile(opts.sourceMap, []byte(mapGen.String()), 0o600)
		if err != nil {
			return fmt.Errorf("write source map: %w", err)
		}
	}

	return nil
}
