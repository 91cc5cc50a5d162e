// ABOUTME: CLI commands for the expense ledger
// ABOUTME: Adds expenses and lists them by recency or month
package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

var (
	expenseUser         int64
	expenseCurrency     string
	expenseRecurrent    bool
	expenseInstallments int
	expenseExpiring     string
	expenseMonth        int
)

// NewExpenseCmd creates the expense command group
func NewExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Manage the expense ledger",
		Long: `Manage the expense ledger.

Examples:
  buddy expense add "Rent" 1800 --recurrent
  buddy expense add "New phone" 2400 --installments 12
  buddy expense list
  buddy expense list --month 9`,
	}

	cmd.PersistentFlags().Int64Var(&expenseUser, "user", 0, "User id (defaults to BUDDY_DEFAULT_USER)")

	cmd.AddCommand(newExpenseAddCmd(), newExpenseListCmd())
	return cmd
}

func newExpenseAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <label> <value>",
		Short: "Add an expense",
		Args:  cobra.ExactArgs(2),
		RunE:  runExpenseAdd,
	}

	cmd.Flags().StringVar(&expenseCurrency, "currency", "BRL", "Currency code")
	cmd.Flags().BoolVar(&expenseRecurrent, "recurrent", false, "Repeats every month")
	cmd.Flags().IntVar(&expenseInstallments, "installments", 0, "Number of installments")
	cmd.Flags().StringVar(&expenseExpiring, "due", "", "Due date as YYYY-MM-DD")

	return cmd
}

func newExpenseListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent expenses",
		RunE:  runExpenseList,
	}

	cmd.Flags().IntVar(&expenseMonth, "month", 0, "Filter by month of the year (1-12)")

	return cmd
}

func runExpenseAdd(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("value must be a number, got %q", args[1])
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	userID := expenseUser
	if userID == 0 {
		userID = rt.cfg.DefaultUserID
	}

	expense := &models.Expense{
		UserID:       userID,
		Label:        args[0],
		Value:        value,
		Currency:     expenseCurrency,
		Recurrent:    expenseRecurrent,
		Installments: expenseInstallments,
	}

	if expenseExpiring != "" {
		parsed, err := time.Parse("2006-01-02", expenseExpiring)
		if err != nil {
			return fmt.Errorf("due date must be formatted as YYYY-MM-DD, got %q", expenseExpiring)
		}
		expense.ExpiringDate = parsed
	}

	expenseID, err := rt.expenses.Add(expense)
	if err != nil {
		return fmt.Errorf("adding expense: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added expense %d: %s %s\n",
			expenseID, expense.Label, formatMoney(expense.Value, expense.Currency))
	}
	return nil
}

func runExpenseList(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	userID := expenseUser
	if userID == 0 {
		userID = rt.cfg.DefaultUserID
	}

	var expenses []models.Expense
	if expenseMonth > 0 {
		expenses, err = rt.expenses.GetByMonth(userID, expenseMonth)
	} else {
		expenses, err = rt.expenses.GetRecent(userID)
	}
	if err != nil {
		return fmt.Errorf("listing expenses: %w", err)
	}

	if len(expenses) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No expenses found\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(expenses, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tLABEL\tVALUE\tDUE\tRECURRENT\tINSTALLMENTS\n")
	fmt.Fprintf(w, "--\t-----\t-----\t---\t---------\t------------\n")

	var total float64
	for _, e := range expenses {
		recurrent := ""
		if e.Recurrent {
			recurrent = "yes"
		}
		installments := ""
		if e.Installments > 0 {
			installments = strconv.Itoa(e.Installments)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			truncate(e.Label, 30),
			formatMoney(e.Value, e.Currency),
			e.ExpiringDate.Format("2006-01-02"),
			recurrent,
			installments)
		total += e.Value
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d expense(s), total %.2f\n", len(expenses), total)
	}
	return nil
}
