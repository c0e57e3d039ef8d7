package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/internal/api"
	"github.com/Sumatoshi-tech/csstree/internal/observability"
)

// ErrNoMatch indicates the value does not match.
var ErrNoMatch = errors.New("value does not match")

func matchCmd(flags *globalFlags) *cobra.Command {
	var (
		req    api.MatchRequest
		format string
		tree   bool
	)

	cmd := &cobra.Command{
		Use:   "match <value>",
		Short: "Match a value against a property, a type or a syntax",
		Example: `  csstree match "1px solid red" --property border
  csstree match "12.5%" --type length-percentage
  csstree match "a b" --syntax "a && b"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, flags, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			req.Value = args[0]

			resp, err := api.NewService(a.syntax, a.maxInput()).Match(req)
			if err != nil {
				return err
			}

			if format == formatJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				encoder.SetEscapeHTML(false)

				err = encoder.Encode(resp)
				if err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
			} else {
				err = printMatch(cmd.OutOrStdout(), req, resp, tree)
				if err != nil {
					return err
				}
			}

			if !resp.Matched {
				return ErrNoMatch
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&req.Property, "property", "", "property to match against")
	cmd.Flags().StringVar(&req.Type, "type", "", "type to match against, without angle brackets")
	cmd.Flags().StringVar(&req.Syntax, "syntax", "", "value definition syntax to match against")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	cmd.Flags().BoolVar(&tree, "tree", false, "print the match tree of a successful match")
	cmd.MarkFlagsMutuallyExclusive("property", "type", "syntax")
	cmd.MarkFlagsOneRequired("property", "type", "syntax")

	return cmd
}

func matchTarget(req api.MatchRequest) string {
	switch {
	case req.Property != "":
		return req.Property
	case req.Type != "":
		return "<" + req.Type + ">"
	default:
		return req.Syntax
	}
}

func printMatch(out io.Writer, req api.MatchRequest, resp *api.MatchResponse, tree bool) error {
	target := matchTarget(req)

	if !resp.Matched {
		color.New(color.FgRed, color.Bold).Fprintf(out, "%q does not match %s\n", req.Value, target)

		if resp.Error != "" {
			fmt.Fprintln(out, resp.Error)
		}

		return nil
	}

	color.New(color.FgGreen, color.Bold).Fprintf(out, "%q matches %s", req.Value, target)
	fmt.Fprintf(out, " (%d iterations)\n", resp.Iterations)

	if tree && resp.Tree != nil {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)

		err := encoder.Encode(resp.Tree)
		if err != nil {
			return fmt.Errorf("encode match tree: %w", err)
		}
	}

	return nil
}
