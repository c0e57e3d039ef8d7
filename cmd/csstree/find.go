package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/pkg/ast"
	"github.com/Sumatoshi-tech/csstree/pkg/names"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/syntax"
	"github.com/Sumatoshi-tech/csstree/pkg/walker"
)

// ErrUnknownKind indicates a node type name that does not exist.
var ErrUnknownKind = errors.New("unknown node type")

func findCmd(flags *globalFlags) *cobra.Command {
	var (
		first bool
		last  bool
	)

	cmd := &cobra.Command{
		Use:   "find <node-type> [file]",
		Short: "List the nodes of one type with their positions",
		Example: `  csstree find Declaration style.css
  csstree find Url --first style.css`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindByName(args[0])
			if err != nil {
				return err
			}

			a, err := setup(cmd, flags, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			source, name, err := readInput(cmd.InOrStdin(), firstArg(args[1:]), a.maxInput())
			if err != nil {
				return err
			}

			root, err := a.syntax.Parse(source, append(a.parserOptions(), parser.WithPositions(true))...)
			if err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}

			found := findNodes(root, kind, first, last)

			return printNodes(cmd.OutOrStdout(), a.syntax, name, found)
		},
	}

	cmd.Flags().BoolVar(&first, "first", false, "print only the first match")
	cmd.Flags().BoolVar(&last, "last", false, "print only the last match")
	cmd.MarkFlagsMutuallyExclusive("first", "last")

	return cmd
}

func kindByName(name string) (ast.Kind, error) {
	kind, ok := ast.KindByName(name)
	if ok {
		return kind, nil
	}

	kindNames := make([]string, 0, len(ast.Kinds()))
	for _, known := range ast.Kinds() {
		kindNames = append(kindNames, known.String())
	}

	hint := ""
	if suggestions := names.Suggest(name, kindNames, 0); len(suggestions) > 0 {
		hint = fmt.Sprintf("; did you mean %s?", quoteNames(suggestions))
	}

	return ast.KindInvalid, fmt.Errorf("%w: %q%s", ErrUnknownKind, name, hint)
}

func findNodes(root ast.Node, kind ast.Kind, first, last bool) []ast.Node {
	match := func(_ *walker.Context, node ast.Node, _ walker.Item) bool {
		return node.Kind() == kind
	}

	var node ast.Node

	switch {
	case first:
		node = walker.Find(root, match)
	case last:
		node = walker.FindLast(root, match)
	default:
		return walker.FindAll(root, match)
	}

	if node == nil {
		return nil
	}

	return []ast.Node{node}
}

func printNodes(out io.Writer, syn *syntax.Syntax, source string, found []ast.Node) error {
	for _, node := range found {
		css, err := syn.Generate(node)
		if err != nil {
			return fmt.Errorf("generate %s: %w", node.Kind(), err)
		}

		line, column := 0, 0
		if loc := node.Location(); loc != nil {
			line, column = loc.Start.Line, loc.Start.Column
		}

		fmt.Fprintf(out, "%s:%d:%d: %s\n", source, line, column, sanitizeForTerminal(strings.TrimSpace(css)))
	}

	fmt.Fprintf(out, "%d node(s)\n", len(found))

	return nil
}
