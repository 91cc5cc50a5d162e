// ABOUTME: Root CLI command with global flags and subcommand wiring
// ABOUTME: Defines the buddy command tree and shared output settings
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██████╗ ██╗   ██╗██████╗ ██████╗ ██╗   ██╗
██╔══██╗██║   ██║██╔══██╗██╔══██╗╚██╗ ██╔╝
██████╔╝██║   ██║██║  ██║██║  ██║ ╚████╔╝
██╔══██╗██║   ██║██║  ██║██║  ██║  ╚██╔╝
██████╔╝╚██████╔╝██████╔╝██████╔╝   ██║
╚═════╝  ╚═════╝ ╚═════╝ ╚═════╝    ╚═╝
`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "buddy",
		Short: "Personal finance assistant with semantic conversation memory",
		Long: banner + `
Buddy is a conversational finance assistant. It remembers what you
talked about, tracks your expenses, and answers questions about your
money using OpenAI with semantic recall over past conversations.

All data lives in a local SQLite database; the optional sync command
mirrors it to Charm Cloud.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(
		NewChatCmd(),
		NewRecordCmd(),
		NewRecentCmd(),
		NewSearchCmd(),
		NewExpenseCmd(),
		NewIncomeCmd(),
		NewRepairCmd(),
		NewSyncCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
