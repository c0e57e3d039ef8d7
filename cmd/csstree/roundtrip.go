package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/pkg/generator"
)

// ErrNotIdempotent indicates that printing a reparsed tree changed the output.
var ErrNotIdempotent = errors.New("generated CSS is not stable under reparsing")

// roundtripResult holds the outputs of one round trip.
type roundtripResult struct {
	source    string
	generated string
	second    string
}

func roundtripCmd(flags *globalFlags) *cobra.Command {
	var (
		mode  string
		check bool
	)

	cmd := &cobra.Command{
		Use:   "roundtrip [file]",
		Short: "Parse and regenerate CSS, showing what changed",
		Long: `Parse CSS, print it back and show a diff between the input and the
generated CSS. With --check the generated CSS is parsed and printed again and
the command fails unless both outputs are identical.`,
		Args: cobra.MaximumNArgs(1),
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

			genMode, err := a.generatorMode(mode)
			if err != nil {
				return err
			}

			result, err := roundtrip(a, source, genMode)
			if err != nil {
				return err
			}

			printDiff(cmd.OutOrStdout(), result.source, result.generated)

			if check && result.second != result.generated {
				printDiff(cmd.ErrOrStderr(), result.generated, result.second)

				return ErrNotIdempotent
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "whitespace mode: safe or spec (default from config)")
	cmd.Flags().BoolVar(&check, "check", false, "fail when regenerating the output changes it")

	return cmd
}

func roundtrip(a *app, source string, mode generator.Mode) (roundtripResult, error) {
	result := roundtripResult{source: source}

	pass := func(text string) (string, error) {
		root, err := a.syntax.Parse(text, a.parserOptions()...)
		if err != nil {
			return "", fmt.Errorf("parse: %w", err)
		}

		css, err := a.syntax.Generate(root, generator.WithMode(mode))
		if err != nil {
			return "", fmt.Errorf("generate: %w", err)
		}

		return css, nil
	}

	var err error

	result.generated, err = pass(source)
	if err != nil {
		return result, err
	}

	result.second, err = pass(result.generated)
	if err != nil {
		return result, err
	}

	return result, nil
}

// printDiff writes a character diff from before to after. Colored output
// highlights edits inline; otherwise a patch in unidiff form is written.
func printDiff(out io.Writer, before, after string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	if len(diffs) == 0 || (len(diffs) == 1 && diffs[0].Type == diffmatchpatch.DiffEqual) {
		fmt.Fprintln(out, "no changes")

		return
	}

	if color.NoColor {
		fmt.Fprint(out, dmp.PatchToText(dmp.PatchMake(before, diffs)))
	} else {
		fmt.Fprintln(out, dmp.DiffPrettyText(diffs))
	}

	fmt.Fprintf(out, "%d -> %d bytes, edit distance %d\n", len(before), len(after), dmp.DiffLevenshtein(diffs))
}
