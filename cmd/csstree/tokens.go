package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/pkg/tokenizer"
)

// tokenRow is one token in JSON output.
type tokenRow struct {
	Type   string `json:"type"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Value  string `json:"value"`
}

func tokensCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream of CSS",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, flags, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			source, _, err := readInput(cmd.InOrStdin(), firstArg(args), a.maxInput())
			if err != nil {
				return err
			}

			return printTokens(cmd.OutOrStdout(), source, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")

	return cmd
}

func tokenRows(source string) []tokenRow {
	locator := tokenizer.NewOffsetToLocation(source, 0, 1, 1)

	var rows []tokenRow

	for tok := range tokenizer.All(source) {
		pos := locator.GetLocation(tok.Start)

		rows = append(rows, tokenRow{
			Type:   tok.Type.Name(),
			Start:  tok.Start,
			End:    tok.End,
			Line:   pos.Line,
			Column: pos.Column,
			Value:  tok.Value(source),
		})
	}

	return rows
}

func printTokens(out io.Writer, source, format string) error {
	rows := tokenRows(source)

	if format == formatJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(rows)
		if err != nil {
			return fmt.Errorf("encode tokens: %w", err)
		}

		return nil
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"#", "Type", "Range", "Line:Col", "Value"})

	for i, row := range rows {
		tbl.AppendRow(table.Row{
			i,
			row.Type,
			fmt.Sprintf("%d-%d", row.Start, row.End),
			fmt.Sprintf("%d:%d", row.Line, row.Column),
			sanitizeForTerminal(row.Value),
		})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d tokens", len(rows))})

	fmt.Fprintln(out, tbl.Render())

	return nil
}
