// ABOUTME: CLI command to list recent conversation turns
// ABOUTME: Shows newest turns first with topic and age columns
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	recentUser  int64
	recentLimit int
)

// NewRecentCmd creates the recent command
func NewRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent conversation turns",
		Long: `List the most recently recorded conversation turns, newest first.

Examples:
  buddy recent
  buddy recent --limit 20
  buddy recent --format json`,
		RunE: runRecent,
	}

	cmd.Flags().Int64Var(&recentUser, "user", 0, "User id (defaults to BUDDY_DEFAULT_USER)")
	cmd.Flags().IntVar(&recentLimit, "limit", 10, "Maximum turns to show")

	return cmd
}

func runRecent(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(recentLimit, "limit"); err != nil {
		return err
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	userID := recentUser
	if userID == 0 {
		userID = rt.cfg.DefaultUserID
	}

	turns, err := rt.turns.GetRecent(userID, recentLimit)
	if err != nil {
		return fmt.Errorf("fetching recent turns: %w", err)
	}

	if len(turns) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No conversation turns found\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(turns, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tROLE\tTOPIC\tWHEN\tCONTENT\n")
	fmt.Fprintf(w, "--\t----\t-----\t----\t-------\n")

	for _, turn := range turns {
		topic := turn.TopicSummary
		if topic == "" {
			topic = "(no topic)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			turn.ID,
			turn.Role,
			truncate(topic, 20),
			formatTime(turn.CreatedAt),
			truncate(turn.Content, 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d turn(s)\n", len(turns))
	}
	return nil
}
