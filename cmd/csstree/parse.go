package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/astio"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/safeconv"
	"github.com/Sumatoshi-tech/csstree/pkg/textutil"
	"github.com/Sumatoshi-tech/csstree/pkg/walker"
)

type parseOptions struct {
	context   string
	positions bool
	output    string
	compress  bool
	stats     bool
}

func parseCmd(flags *globalFlags) *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse CSS into a syntax tree",
		Long: `Parse a CSS file (or stdin) and print its syntax tree as JSON.

Recoverable errors are reported on stderr; the affected parts of the tree
become Raw nodes. With --compress the tree is written LZ4 compressed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, flags, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("positions") {
				opts.positions = a.cfg.Parser.Positions
			}

			return runParse(cmd, a, firstArg(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.context, "context", "c", parser.ContextDefault, "parse context (stylesheet, rule, declaration, value, ...)")
	cmd.Flags().BoolVarP(&opts.positions, "positions", "p", false, "include source locations")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the tree to a file (.json or .json.lz4) instead of stdout")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "LZ4 compress the tree")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print input size, node count and timing to stderr")

	return cmd
}

func runParse(cmd *cobra.Command, a *app, path string, opts *parseOptions) error {
	source, name, err := readInput(cmd.InOrStdin(), path, a.maxInput())
	if err != nil {
		return err
	}

	var parseErrors int

	parseOpts := append(a.parserOptions(),
		parser.WithContext(opts.context),
		parser.WithPositions(opts.positions),
		parser.WithFilename(name),
		parser.WithOnParseError(func(perr *parser.SyntaxError, _ ast.Node) {
			parseErrors++

			fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: %s\n", name, perr.Line, perr.Column, perr.Message)
		}),
	)

	start := time.Now()

	root, err := a.syntax.Parse(source, parseOpts...)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}

	elapsed := time.Since(start)

	err = writeTree(cmd.OutOrStdout(), root, opts)
	if err != nil {
		return err
	}

	if opts.stats {
		fmt.Fprintf(cmd.ErrOrStderr(), "input: %s in %d line(s), nodes: %s, errors: %d, parsed in %s\n",
			humanize.Bytes(safeconv.MustIntToUint64(len(source))), textutil.CountLines(source),
			humanize.Comma(int64(countNodes(root))), parseErrors, elapsed.Round(time.Microsecond))
	}

	return nil
}

func writeTree(stdout io.Writer, root ast.Node, opts *parseOptions) error {
	if opts.output != "" {
		path := opts.output
		if opts.compress {
			path = ensureLZ4Suffix(path)
		}

		err := astio.Save(path, root)
		if err != nil {
			return fmt.Errorf("save tree: %w", err)
		}

		return nil
	}

	var codec astio.Codec = astio.NewJSONCodec()
	if opts.compress {
		codec = astio.NewLZ4Codec()
	}

	err := codec.Encode(stdout, root)
	if err != nil {
		return fmt.Errorf("write tree: %w", err)
	}

	return nil
}

func ensureLZ4Suffix(path string) string {
	if astio.CodecFor(path).Extension() == astio.NewLZ4Codec().Extension() {
		return path
	}

	return path + ".lz4"
}

func countNodes(root ast.Node) int {
	var count int

	// Counting never fails for parser output.
	_ = walker.Walk(root, walker.Options{
		Enter: func(_ *walker.Context, _ ast.Node, _ walker.Item) walker.Action {
			count++

			return walker.Continue
		},
	})

	return count
}
