package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/pkg/parser"
	"github.com/Sumatoshi-tech/csstree/pkg/validator"
)

// ErrValidationFailed indicates at least one input has problems of error
// severity, or of any severity with --strict.
var ErrValidationFailed = errors.New("validation failed")

// fileReport is the JSON output for one input.
type fileReport struct {
	File     string              `json:"file"`
	Problems []validator.Problem `json:"problems"`
}

type validateOptions struct {
	format  string
	strict  bool
	details bool
}

func validateCmd(flags *globalFlags) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Check stylesheets against the CSS syntax dictionary",
		Long: `Check that every declaration value and at-rule prelude matches its
syntax. Unknown properties and at-rules are reported as warnings with
suggestions for close names. Without files, stdin is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, flags, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) == 0 {
				args = []string{stdinPath}
			}

			return runValidate(cmd, a, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text or json")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings too")
	cmd.Flags().BoolVar(&opts.details, "details", false, "print match diagnostics under invalid values")

	return cmd
}

func runValidate(cmd *cobra.Command, a *app, paths []string, opts *validateOptions) error {
	reports := make([]fileReport, 0, len(paths))
	failed := false

	for _, path := range paths {
		source, name, err := readInput(cmd.InOrStdin(), path, a.maxInput())
		if err != nil {
			return err
		}

		report, err := validator.Validate(a.syntax, source, append(a.parserOptions(), parser.WithPositions(true))...)
		if err != nil {
			return fmt.Errorf("validate %s: %w", name, err)
		}

		if report.Errors() > 0 || (opts.strict && !report.Valid()) {
			failed = true
		}

		problems := report.Problems
		if problems == nil {
			problems = []validator.Problem{}
		}

		reports = append(reports, fileReport{File: name, Problems: problems})
	}

	if opts.format == formatJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")

		err := encoder.Encode(reports)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		printReports(cmd.OutOrStdout(), reports, opts.details)
	}

	if failed {
		return ErrValidationFailed
	}

	return nil
}

func printReports(out io.Writer, reports []fileReport, details bool) {
	errorColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	hintColor := color.New(color.FgCyan)
	okColor := color.New(color.FgGreen)

	var errorCount, warningCount int

	for _, report := range reports {
		for _, problem := range report.Problems {
			label := warnColor.Sprint("warning")
			if problem.Severity == validator.SeverityError {
				label = errorColor.Sprint("error")
				errorCount++
			} else {
				warningCount++
			}

			fmt.Fprintf(out, "%s:%d:%d: %s: %s [%s]\n",
				report.File, problem.Start.Line, problem.Start.Column, label, problem.Message, problem.Kind)

			if len(problem.Suggestions) > 0 {
				hintColor.Fprintf(out, "  did you mean %s?\n", quoteNames(problem.Suggestions))
			}

			if details && problem.Details != "" {
				for line := range strings.SplitSeq(problem.Details, "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
			}
		}
	}

	if errorCount == 0 && warningCount == 0 {
		okColor.Fprintf(out, "%d file(s) valid\n", len(reports))

		return
	}

	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", errorCount, warningCount)
}

func quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "`" + name + "`"
	}

	return strings.Join(quoted, ", ")
}
