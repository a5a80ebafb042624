// Package runs implements the runs subcommand: list persisted monitoring
// runs with per-month sample counts, and show the indicator records of one
// run.
package runs

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/herdwatch/herdwatch-go/internal/conf"
	"github.com/herdwatch/herdwatch-go/internal/datastore"
)

// Command returns the runs subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List persisted monitoring runs",
		Long: `Runs lists recent monitoring runs and per-month persisted sample counts
from the configured output database. Given a run id it prints that run's
indicator records instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no output database configured, enable sqlite or mysql output")
			}
			if err := store.Open(); err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			if len(args) == 1 {
				runID, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("bad run id %q: %w", args[0], err)
				}
				return printRunIndicators(cmd.OutOrStdout(), store, uint(runID))
			}
			return printRuns(cmd.OutOrStdout(), store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to list")

	return cmd
}

func printRuns(out io.Writer, store datastore.Interface, limit int) error {
	runs, err := store.GetRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No monitoring runs persisted yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTHRESHOLD\tSYSTEM\tMONTHS\tCONTINUOUS")
	for _, run := range runs {
		continuous := "yes"
		if !run.IsContinuous {
			continuous = "no, missing " + run.MissingMonths
		}
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%s\t%s\t%s\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04"),
			run.Threshold, run.SystemType, run.Months, continuous)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return printSampleCounts(out, store)
}

func printSampleCounts(out io.Writer, store datastore.Interface) error {
	counts, err := store.GetMonthlySampleCounts()
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "\nMONTH\tSAMPLES")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Month, c.Count)
	}
	return w.Flush()
}

func printRunIndicators(out io.Writer, store datastore.Interface, runID uint) error {
	records, err := store.GetRunIndicators(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "Run %d has no indicator records\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tINDICATOR\tVALUE\tDETAIL")
	for _, r := range records {
		value := "n/a (" + r.Diagnosis + ")"
		if r.Value != nil {
			value = fmt.Sprintf("%.2f%%", *r.Value)
			if r.Warning != "" {
				value += " !"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Month, r.Name, value, r.Formula)
	}
	return w.Flush()
}
