// ABOUTME: CLI command to reconcile the embedding index with stored turns
// ABOUTME: Re-embeds turns whose index write failed
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRepairCmd creates the repair command
func NewRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Re-embed turns missing from the search index",
		Long: `Re-embed conversation turns whose embedding write failed.

A turn can end up stored without an embedding when the index write
fails after the turn itself was saved. Such turns are invisible to
semantic search until repaired.`,
		RunE: runRepair,
	}
}

func runRepair(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	client, err := rt.openAI()
	if err != nil {
		return err
	}

	repaired, err := rt.memoryService(client).Repair(cmd.Context())
	if err != nil {
		return fmt.Errorf("repairing index: %w", err)
	}

	if !quiet {
		if repaired == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Index is complete, nothing to repair\n")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Re-embedded %d turn(s)\n", repaired)
		}
	}
	return nil
}
