// ABOUTME: CLI command for conversing with the finance assistant
// ABOUTME: Supports one-shot questions and an interactive REPL loop
package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatUser int64

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the finance assistant",
		Long: `Talk to the finance assistant.

With a message argument the assistant answers once and exits. Without
arguments an interactive session starts; exit with "quit" or Ctrl-D.

Both sides of the conversation are recorded into semantic memory, so
follow-up questions can build on earlier ones.

Examples:
  buddy chat "how much did I spend on rent this year?"
  buddy chat`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}

	cmd.Flags().Int64Var(&chatUser, "user", 0, "User id (defaults to BUDDY_DEFAULT_USER)")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	assistant, err := rt.buildAgent()
	if err != nil {
		return err
	}

	userID := chatUser
	if userID == 0 {
		userID = rt.cfg.DefaultUserID
	}

	ctx := cmd.Context()

	// One-shot mode
	if len(args) > 0 {
		reply, err := assistant.Respond(ctx, userID, args[0])
		if err != nil {
			return fmt.Errorf("getting response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	}

	// Interactive mode
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Talking to buddy. Type quit to exit.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			break
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "quit" || message == "exit" {
			break
		}

		reply, err := assistant.Respond(ctx, userID, message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", reply)
	}

	return scanner.Err()
}
