// ABOUTME: CLI command to record a conversation turn into memory
// ABOUTME: Embeds the text and stores it with an optional topic summary
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jvsazevedo/open-finance-buddy/internal/memory"
	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

var (
	recordUser  int64
	recordRole  string
	recordTopic string
)

// NewRecordCmd creates the record command
func NewRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [text]",
		Short: "Record a conversation turn into memory",
		Long: `Record one conversation turn into semantic memory.

The text is embedded and stored so later searches can find it. When no
topic is given, one is generated with the chat model.

Examples:
  buddy record "I spent 300 on groceries this week"
  buddy record --role assistant "Your grocery budget is 400 per month"
  buddy record --topic groceries "Groceries keep getting more expensive"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRecord,
	}

	cmd.Flags().Int64Var(&recordUser, "user", 0, "User id (defaults to BUDDY_DEFAULT_USER)")
	cmd.Flags().StringVar(&recordRole, "role", "user", "Turn role: user or assistant")
	cmd.Flags().StringVar(&recordTopic, "topic", "", "Topic summary (generated when empty)")

	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) > 0 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("no text provided")
	}

	role := models.Role(recordRole)
	if !role.Valid() {
		return fmt.Errorf("role must be user or assistant, got %q", recordRole)
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	client, err := rt.openAI()
	if err != nil {
		return err
	}

	userID := recordUser
	if userID == 0 {
		userID = rt.cfg.DefaultUserID
	}

	ctx := cmd.Context()

	topic := recordTopic
	if topic == "" {
		summary, err := client.SummarizeTopic(ctx, text)
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "Warning: could not summarize topic: %v\n", err)
			}
		} else {
			topic = summary
		}
	}

	messageID, err := rt.memoryService(client).RecordTurn(ctx, userID, role, text, topic)
	if err != nil {
		var partial *memory.PartialWriteError
		if errors.As(err, &partial) {
			fmt.Fprintf(os.Stderr, "Warning: turn %d stored without embedding; run buddy repair\n", partial.MessageID)
		} else {
			return fmt.Errorf("recording turn: %w", err)
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded turn %d\n", messageID)
	}
	return nil
}
