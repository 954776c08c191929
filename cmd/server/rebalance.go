package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/simaogato/seflow-backend/internal/usecase/allocator"
)

var (
	flagSavings  int
	flagDeFi     int
	flagSpending int
	flagTotal    string
)

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance <field> <value>",
	Short: "Set one allocation field and print the rebalanced split",
	Example: `  seflow rebalance savings 70 --savings 40 --defi 30 --spending 30
  seflow rebalance lp 55 --total 1200`,
	Args: cobra.ExactArgs(2),
	RunE: runRebalance,
}

func runRebalance(cmd *cobra.Command, args []string) error {
	field, err := domain.ParseField(args[0])
	if err != nil {
		return err
	}

	current := domain.Allocation{Savings: flagSavings, DeFi: flagDeFi, Spending: flagSpending}
	next := allocator.Rebalance(current, field, domain.ParsePercent(args[1]))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "savings   %3d%%\n", next.Savings)
	fmt.Fprintf(out, "deFi      %3d%%\n", next.DeFi)
	fmt.Fprintf(out, "spending  %3d%%\n", next.Spending)

	if err := next.Validate(); err != nil {
		fmt.Fprintf(out, "\n%v\n", err)
	}

	if flagTotal == "" {
		return nil
	}
	total, err := decimal.NewFromString(flagTotal)
	if err != nil {
		return fmt.Errorf("invalid --total: %w", err)
	}

	fmt.Fprintln(out)
	for _, f := range domain.Fields {
		fmt.Fprintf(out, "%-9s %s\n", f, allocator.MonetaryAmount(total, next.Get(f)).StringFixed(2))
	}
	return nil
}

func init() {
	rebalanceCmd.Flags().IntVar(&flagSavings, "savings", 40, "Current savings percentage")
	rebalanceCmd.Flags().IntVar(&flagDeFi, "defi", 30, "Current DeFi percentage")
	rebalanceCmd.Flags().IntVar(&flagSpending, "spending", 30, "Current spending percentage")
	rebalanceCmd.Flags().StringVar(&flagTotal, "total", "", "Salary amount to split (prints per-bucket amounts)")
}
