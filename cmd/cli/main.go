package main

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/finsight/pkg/analytics"
	"github.com/yurifrl/finsight/pkg/csv"
	"github.com/yurifrl/finsight/pkg/models"
	"github.com/yurifrl/finsight/pkg/plan"
	"github.com/yurifrl/finsight/pkg/report"
)

var (
	cliFilters filters
	cfgFile    string
	stateFile  string
	dump       bool
)

var rootCmd = &cobra.Command{
	Use:           "finsight",
	Short:         "Personal finance ledger analytics",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <ledger_file>",
	Short: "Summarize a ledger and print notifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := cliFilters.toPeriodFilter()
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		store, err := a.load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		session, st, err := a.session()
		if err != nil {
			return err
		}

		ops := store.Filter(filter)
		analyzePeriod(report.New(cmd.OutOrStdout(), a.format), session, args[0], ops)
		return a.saveSession(session, st)
	},
}

var operationsCmd = &cobra.Command{
	Use:   "operations [flags] <ledger_file>",
	Short: "List the operations matching the filters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := cliFilters.toPeriodFilter()
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		store, err := a.load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		ops := analytics.SortByDate(store.Filter(filter))
		r := report.New(cmd.OutOrStdout(), a.format)
		r.Operations(ops)
		r.Totals(analytics.PeriodTotals(ops))
		if dump {
			pp.Println(ops)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [flags] <ledger_file>",
	Short: "Write the filtered operations as CSV to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, err := cliFilters.toFilterFunc()
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		store, err := a.load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out, err := csv.Create(models.OperationCSVHeader, analytics.SortByDate(store.All()), keep)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories <ledger_file>",
	Short: "List the distinct categories of a ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		store, err := a.load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report.New(cmd.OutOrStdout(), a.format).Categories(store.Categories())
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <plan_file>",
	Short: "Analyze each period of a YAML plan in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		if p.Ledger == "" {
			return fmt.Errorf("plan %s has no ledger", args[0])
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		store, err := a.load(cmd.Context(), p.Ledger)
		if err != nil {
			return err
		}
		session, st, err := a.session()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Plan preview for %s\n", args[0])
		p.Print(out)

		r := report.New(out, a.format)
		for _, period := range p.Periods {
			fmt.Fprintln(out)
			analyzePeriod(r, session, period.Label(), store.Filter(period.Filter()))
		}
		return a.saveSession(session, st)
	},
}

func analyzePeriod(r *report.Renderer, session *analytics.Session, title string, ops []models.Operation) {
	summary := session.Summarize(ops)
	notes := session.Notify(ops)

	r.Title(title)
	r.Summary(summary)
	r.Chart(analytics.Aggregate(ops))
	r.Notifications(notes)
	if dump {
		pp.Println(summary)
		pp.Println(notes)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is finsight.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state", "", "State file carrying the cushion between runs")
	rootCmd.PersistentFlags().BoolVar(&dump, "dump", false, "Dump derived records")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("locale", "", "Number formatting locale")
	rootCmd.PersistentFlags().String("currency", "", "Currency suffix")
	rootCmd.PersistentFlags().Int("months", 0, "Period length in months (0 infers it)")
	rootCmd.PersistentFlags().Float64("threshold", 0, "Anomaly withdrawal threshold")
	rootCmd.PersistentFlags().String("categorizer-url", "", "Category prediction service base URL")
	rootCmd.PersistentFlags().Bool("require-category", false, "Reject rows without a meaningful category")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.startDate, "start", "", "Start date")
	rootCmd.PersistentFlags().StringVar(&cliFilters.endDate, "end", "", "End date")
	rootCmd.PersistentFlags().StringVar(&cliFilters.category, "category", "", "Filter by category (case insensitive)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(operationsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(planCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
