package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/budget"
)

func reconcileCmd(open opener) *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check stored balances against the operation history",
		Long: `Rebuild every account balance from its opening balance and the stored
operations and list the accounts whose stored balance disagrees. With --fix the
drifted balances are rewritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			report, err := a.accounts.Reconcile(cmd.Context(), fix)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Drifts) == 0 {
				fmt.Fprintf(out, "%d accounts checked, all balances consistent\n", report.Checked)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tSTORED\tEXPECTED\tDELTA")
			for _, d := range report.Drifts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, a.format(d.Stored), a.format(d.Expected), a.format(d.Delta()))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if report.Fixed {
				fmt.Fprintf(out, "%d of %d balances restated\n", len(report.Drifts), report.Checked)
				return nil
			}
			return fmt.Errorf("%d of %d balances drifted; rerun with --fix to restate them", len(report.Drifts), report.Checked)
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "rewrite drifted balances")
	return cmd
}

func progressCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <YYYY-MM>",
		Short: "Show budget progress for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			progress, err := a.budgets.GetProgress(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(progress) == 0 {
				fmt.Fprintf(out, "No budgets for %s\n", args[0])
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tLIMIT\tSPENT\tREMAINING\tUSED\tSTATUS")
			for _, p := range progress {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\t%s\n",
					p.Category.Name,
					a.format(p.Budget.Limit),
					a.format(p.Spent),
					a.format(p.Remaining),
					p.Percentage,
					budget.StatusOf(p),
				)
			}
			return w.Flush()
		},
	}
}

func summaryCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <YYYY-MM>",
		Short: "Show balances, income and expenses for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			s, err := a.budgets.GetSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Month\t%s\n", s.Month)
			fmt.Fprintf(w, "Active accounts\t%d\n", s.ActiveAccounts)
			fmt.Fprintf(w, "Total balance\t%s\n", a.format(s.TotalBalance))
			fmt.Fprintf(w, "Income\t%s\n", a.format(s.Income))
			fmt.Fprintf(w, "Expenses\t%s\n", a.format(s.Expenses))
			fmt.Fprintf(w, "Net\t%s\n", a.format(s.Net))
			return w.Flush()
		},
	}
}
