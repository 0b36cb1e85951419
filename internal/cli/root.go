// Package cli implements the memfsh command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagNoRestore bool
	flagNoSeed    bool
	flagNoChatbot bool
)

var rootCmd = &cobra.Command{
	Use:   "memfsh",
	Short: "Interactive in-memory filesystem shell",
	Long: `memfsh runs a simulated filesystem entirely in memory and exposes it
through an interactive shell: cd, mkdir, ls, touch, cat, rm, rename and
friends, plus a global file index, an operation history and versioned JSON
snapshots.

Lines that match no known command are handed to a natural-language
translator backed by the Gemini API (set GEMINI_API_KEY), with a
rule-based fallback when the API is unreachable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runShell(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flagNoRestore, "no-restore", false, "Skip restoring the latest snapshot on start")
	rootCmd.Flags().BoolVar(&flagNoSeed, "no-seed", false, "Start with an empty tree instead of demo data")
	rootCmd.Flags().BoolVar(&flagNoChatbot, "no-chatbot", false, "Disable the natural-language translator")
}
