// Package main provides the csstree CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/csstree/pkg/version"
)

// formatJSON is the constant for the "json" output format string.
const formatJSON = "json"

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logJSON    bool
	extensions []string
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "csstree",
		Short: "CSS parser, generator and value syntax matcher",
		Long: `csstree parses CSS into a detailed syntax tree, prints trees back to CSS
and checks declaration values against the CSS value definition syntax.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is ./.csstree.yaml or $HOME/.csstree.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringSliceVar(&flags.extensions, "extension", nil, "syntax extension file (YAML or JSON), repeatable")

	rootCmd.AddCommand(parseCmd(flags))
	rootCmd.AddCommand(tokensCmd(flags))
	rootCmd.AddCommand(generateCmd(flags))
	rootCmd.AddCommand(roundtripCmd(flags))
	rootCmd.AddCommand(validateCmd(flags))
	rootCmd.AddCommand(matchCmd(flags))
	rootCmd.AddCommand(findCmd(flags))
	rootCmd.AddCommand(syntaxCmd(flags))
	rootCmd.AddCommand(lspCmd(flags))
	rootCmd.AddCommand(mcpCmd(flags))
	rootCmd.AddCommand(serverCmd(flags))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "csstree %s\n", version.String())
		},
	}

	return cmd
}
