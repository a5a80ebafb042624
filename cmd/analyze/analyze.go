// Package analyze implements the analyze subcommand: load herd-test exports,
// optionally a herd-master roster, compute all indicators and print them.
package analyze

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/herdwatch/herdwatch-go/internal/conf"
	"github.com/herdwatch/herdwatch-go/internal/datastore"
	"github.com/herdwatch/herdwatch-go/internal/ingest"
	"github.com/herdwatch/herdwatch-go/internal/monitor"
	"github.com/herdwatch/herdwatch-go/internal/observability/metrics"
)

// Command returns the analyze subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var herdMasterPath string

	cmd := &cobra.Command{
		Use:   "analyze [test-day files]",
		Short: "Compute udder health indicators from herd-test CSV exports",
		Long: `Analyze loads one or more monthly herd-test CSV exports, deduplicates them
into monthly cohorts and computes the six udder health indicators. An
optional herd-master roster enables pre-dry-off prevalence for the latest
month.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(settings, args, herdMasterPath)
		},
	}

	cmd.Flags().StringVar(&herdMasterPath, "herd-master", "", "Path to a herd-master roster CSV export")

	return cmd
}

func runAnalyze(settings *conf.Settings, testFiles []string, herdMasterPath string) error {
	session, err := monitor.NewSession(settings)
	if err != nil {
		return err
	}

	herdMetrics, err := metrics.NewHerdMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	session.SetMetrics(herdMetrics)

	for _, path := range testFiles {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		rows, err := ingest.ReadTestRows(f)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if closeErr != nil {
			return closeErr
		}

		summary, err := session.IngestTestRows(rows)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		fmt.Printf("Loaded %s: %d rows (%d skipped), months %v\n",
			path, summary.RowsAdded, summary.RowsSkipped, summary.Months)
	}

	if herdMasterPath != "" {
		f, err := os.Open(herdMasterPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", herdMasterPath, err)
		}
		rows, err := ingest.ReadMasterRows(f)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", herdMasterPath, err)
		}
		if closeErr != nil {
			return closeErr
		}

		size, err := session.LoadHerdMaster(rows)
		if err != nil {
			return fmt.Errorf("failed to load herd-master %s: %w", herdMasterPath, err)
		}
		fmt.Printf("Loaded herd-master roster: %d animals\n", size)
	}

	result, err := session.ComputeAll()
	if err != nil {
		return err
	}

	printResult(result)

	return persistResult(settings, session, result)
}

// printResult renders the monitoring result as a plain table.
func printResult(result *monitor.Result) {
	fmt.Printf("\nMonths: %v (SCC threshold %.1f)\n", result.Months, result.Threshold)
	if result.Continuity.IsContinuous {
		fmt.Println("Monthly sequence is continuous")
	} else {
		fmt.Printf("Monthly sequence has gaps, missing: %v\n", result.Continuity.Missing)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "\nMONTH\tINDICATOR\tVALUE\tDETAIL")
	for _, month := range result.Months {
		indicators := result.Indicators[month]
		names := make([]string, 0, len(indicators))
		for name := range indicators {
			names = append(names, string(name))
		}
		sort.Strings(names)

		for _, name := range names {
			r := indicators[monitor.Indicator(name)]
			value := "n/a (" + string(r.Diagnosis) + ")"
			if r.Available() {
				value = fmt.Sprintf("%.2f%%", *r.Value)
				if r.Warning != "" {
					value += " !"
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", month, name, value, r.Formula)
		}
	}
	w.Flush()
}

// persistResult saves the deduplicated samples and the run when an output
// database is configured.
func persistResult(settings *conf.Settings, session *monitor.Session, result *monitor.Result) error {
	store := datastore.New(settings)
	if store == nil {
		return nil
	}
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	var samples []datastore.TestSample
	for _, month := range result.Months {
		cohort := session.Cohort(month)
		for _, id := range cohort.IDs() {
			samples = append(samples, datastore.SampleFromRecord(cohort.Records[id]))
		}
	}
	if err := store.SaveSamples(samples); err != nil {
		return err
	}

	run := datastore.RunFromResult(result, settings.Monitor.SystemType)
	if err := store.SaveRun(run); err != nil {
		return err
	}

	fmt.Printf("Saved %d samples and run %d\n", len(samples), run.ID)
	return nil
}
