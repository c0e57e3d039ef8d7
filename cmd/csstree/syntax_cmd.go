package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/pkg/lexer"
)

// Dictionary sections.
const (
	sectionProperties = "properties"
	sectionTypes      = "types"
	sectionAtrules    = "atrules"

	formatYAML  = "yaml"
	formatTable = "table"
)

var (
	// ErrUnknownSection indicates a section other than properties, types or atrules.
	ErrUnknownSection = errors.New("unknown dictionary section")
	// ErrBrokenReferences indicates syntaxes that reference missing types or properties.
	ErrBrokenReferences = errors.New("dictionary has broken references")
)

type syntaxOptions struct {
	format string
	check  bool
}

func syntaxCmd(flags *globalFlags) *cobra.Command {
	opts := &syntaxOptions{}

	cmd := &cobra.Command{
		Use:   "syntax [properties|types|atrules] [filter]",
		Short: "List the syntax dictionary",
		Long: `List the properties, types or at-rules of the syntax dictionary,
including extensions, with their value definition syntax. A filter keeps
names containing it. With --format json or yaml the whole dictionary is
dumped; --check reports syntaxes referencing missing definitions.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, flags, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			lex := a.syntax.Lexer()

			if opts.check {
				return checkReferences(cmd.OutOrStdout(), lex)
			}

			section := sectionProperties
			if len(args) > 0 {
				section = args[0]
			}

			filter := ""
			if len(args) > 1 {
				filter = args[1]
			}

			return printSyntax(cmd.OutOrStdout(), lex, section, filter, opts.format)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: table, json or yaml")
	cmd.Flags().BoolVar(&opts.check, "check", false, "report broken references instead of listing")

	return cmd
}

func checkReferences(out io.Writer, lex *lexer.Lexer) error {
	broken := lex.Validate()
	if broken == nil {
		fmt.Fprintln(out, "no broken references")

		return nil
	}

	for _, name := range broken.Types {
		fmt.Fprintf(out, "type <%s>\n", name)
	}

	for _, name := range broken.Properties {
		fmt.Fprintf(out, "property %s\n", name)
	}

	return ErrBrokenReferences
}

func printSyntax(out io.Writer, lex *lexer.Lexer, section, filter, format string) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(lex.Dump(false))
		if err != nil {
			return fmt.Errorf("encode dictionary: %w", err)
		}

		return nil
	case formatYAML:
		encoder := yaml.NewEncoder(out)
		defer encoder.Close()

		err := encoder.Encode(lex.Dump(false))
		if err != nil {
			return fmt.Errorf("encode dictionary: %w", err)
		}

		return nil
	}

	rows, err := syntaxRows(lex, section, filter)
	if err != nil {
		return err
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"Name", "Syntax"})

	for _, row := range rows {
		tbl.AppendRow(table.Row{row[0], row[1]})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d %s", len(rows), section)})

	fmt.Fprintln(out, tbl.Render())

	return nil
}

// syntaxRows returns name and syntax pairs of a section, sorted by name.
func syntaxRows(lex *lexer.Lexer, section, filter string) ([][2]string, error) {
	var (
		all      []string
		name     func(string) string
		syntaxOf func(string) string
	)

	switch section {
	case sectionProperties:
		all = lex.Properties()
		name = func(n string) string { return n }
		syntaxOf = func(n string) string { return lex.GetProperty(n, false).Source }
	case sectionTypes:
		all = lex.Types()
		name = func(n string) string { return "<" + n + ">" }
		syntaxOf = func(n string) string {
			if source := lex.GetType(n).Source; source != "" {
				return source
			}

			return "(generic)"
		}
	case sectionAtrules:
		all = lex.Atrules()
		name = func(n string) string { return "@" + n }
		syntaxOf = func(n string) string { return atruleSummary(lex.GetAtrule(n, false)) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}

	all = slices.DeleteFunc(all, func(n string) bool { return !strings.Contains(n, filter) })

	rows := make([][2]string, 0, len(all))
	for _, n := range all {
		rows = append(rows, [2]string{name(n), syntaxOf(n)})
	}

	return rows, nil
}

func atruleSummary(atrule *lexer.Atrule) string {
	var parts []string

	if atrule.Prelude != nil {
		parts = append(parts, atrule.Prelude.Source)
	}

	if len(atrule.Descriptors) > 0 {
		descriptors := make([]string, 0, len(atrule.Descriptors))
		for descriptor := range atrule.Descriptors {
			descriptors = append(descriptors, descriptor)
		}

		slices.Sort(descriptors)
		parts = append(parts, "{ "+strings.Join(descriptors, ", ")+" }")
	}

	return strings.Join(parts, " ")
}
