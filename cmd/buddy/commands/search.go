// ABOUTME: CLI command to search conversation memory semantically
// ABOUTME: Supports plain, recency-windowed, and topic-filtered similarity search
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

var (
	searchUser   int64
	searchLimit  int
	searchDays   int
	searchTopics []string
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search conversation memory",
		Long: `Search past conversation turns by semantic similarity.

By default the whole history is searched. With --days only turns from
the last N days are considered; with --topics only turns whose topic
summary contains one of the keywords.

Examples:
  buddy search "grocery spending"
  buddy search --days 7 "rent"
  buddy search --topics groceries,food "how much did I spend"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().Int64Var(&searchUser, "user", 0, "User id (defaults to BUDDY_DEFAULT_USER)")
	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")
	cmd.Flags().IntVar(&searchDays, "days", 0, "Only consider turns from the last N days")
	cmd.Flags().StringSliceVar(&searchTopics, "topics", nil, "Topic keywords to filter by (comma-separated)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}
	if searchDays > 0 && len(searchTopics) > 0 {
		return fmt.Errorf("--days and --topics cannot be combined")
	}

	query := args[0]

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	client, err := rt.openAI()
	if err != nil {
		return err
	}
	mem := rt.memoryService(client)

	userID := searchUser
	if userID == 0 {
		userID = rt.cfg.DefaultUserID
	}

	ctx := cmd.Context()

	turns, err := func() ([]models.ConversationTurn, error) {
		switch {
		case searchDays > 0:
			return mem.SimilarRecentForUser(ctx, query, userID, searchLimit, searchDays)
		case len(searchTopics) > 0:
			return mem.SimilarByTopic(ctx, query, searchTopics, userID, searchLimit)
		default:
			return mem.SimilarForUser(ctx, query, userID, searchLimit)
		}
	}()
	if err != nil {
		return fmt.Errorf("searching memory: %w", err)
	}

	if len(turns) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No matches for query: %s\n", query)
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
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(turns))
	}
	return nil
}
