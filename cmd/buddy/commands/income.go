// ABOUTME: CLI commands for the monthly income parameter
// ABOUTME: Sets and shows the income the assistant budgets against
package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

var incomeUser int64

// NewIncomeCmd creates the income command group
func NewIncomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Manage monthly income",
		Long: `Manage the monthly income the assistant budgets against.

Examples:
  buddy income set 5200.50
  buddy income get`,
	}

	cmd.PersistentFlags().Int64Var(&incomeUser, "user", 0, "User id (defaults to BUDDY_DEFAULT_USER)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <value>",
			Short: "Set monthly income",
			Args:  cobra.ExactArgs(1),
			RunE:  runIncomeSet,
		},
		&cobra.Command{
			Use:   "get",
			Short: "Show monthly income",
			RunE:  runIncomeGet,
		},
	)

	return cmd
}

func runIncomeSet(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil || value < 0 {
		return fmt.Errorf("income must be a non-negative number, got %q", args[0])
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	userID := incomeUser
	if userID == 0 {
		userID = rt.cfg.DefaultUserID
	}

	if _, err := rt.users.AddParam(userID, models.ParamMonthlyIncome, args[0]); err != nil {
		return fmt.Errorf("storing income: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Monthly income set to %.2f\n", value)
	}
	return nil
}

func runIncomeGet(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	userID := incomeUser
	if userID == 0 {
		userID = rt.cfg.DefaultUserID
	}

	income, found, err := rt.users.GetMonthlyIncome(userID)
	if err != nil {
		return fmt.Errorf("fetching income: %w", err)
	}
	if !found {
		fmt.Fprintf(cmd.OutOrStdout(), "No monthly income recorded\n")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", income)
	return nil
}
