package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/tracker"
)

// =============================================================================
// evaluate
// =============================================================================

func newEvaluateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Print the eligibility verdict for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf := calendar.Today(time.Now())
			if v, _ := cmd.Flags().GetString("as-of"); v != "" {
				d, err := calendar.ParseDate(v)
				if err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
				asOf = d
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := tracker.NewService(store, nil).Evaluate(cmd.Context(), asOf)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), asOf, result)
			return nil
		},
	}
	cmd.Flags().String("as-of", "", "Evaluate as of this date (YYYY-MM-DD, default today)")
	return cmd
}

func printResult(w io.Writer, asOf calendar.Date, r eligibility.Result) {
	verdict := "NOT ELIGIBLE"
	if r.Eligible {
		verdict = "ELIGIBLE"
	}
	fmt.Fprintf(w, "As of %s: %s\n", asOf, verdict)

	for _, msg := range r.BlockerMessages() {
		fmt.Fprintf(w, "  blocker: %s\n", msg)
	}
	for _, msg := range r.WarningMessages() {
		fmt.Fprintf(w, "  warning: %s\n", msg)
	}
	if r.Metrics != nil {
		p := r.Metrics.PhysicalPresence
		fmt.Fprintf(w, "Physical presence: %d/%d days in the last %d years (%s%%)\n",
			p.DaysInUS, p.RequiredDays, p.WindowYears, p.PercentOfRequirement.StringFixed(2))
	}
	if r.EarliestFilingDate != nil {
		fmt.Fprintf(w, "Earliest filing date: %s\n", r.EarliestFilingDate)
	}
	if r.LowerRiskFilingDate != nil {
		fmt.Fprintf(w, "Lower-risk filing date: %s\n", r.LowerRiskFilingDate)
	}
}

// =============================================================================
// import
// =============================================================================

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE.csv",
		Short: "Append trips from a CSV file (startDate,endDate,destination,countAsAbsence)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := tracker.NewService(store, nil).ImportCSV(cmd.Context(), f)
			if err != nil {
				return err
			}
			for _, rowErr := range report.Skipped {
				log.WithError(rowErr.Err).WithField("line", rowErr.Line).Warn("skipped row")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d trips, skipped %d rows\n",
				len(report.Imported), len(report.Skipped))
			return nil
		},
	}
}

// =============================================================================
// export
// =============================================================================

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the data pack (profile, trips, current verdict) as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			now := time.Now()
			pack, err := tracker.NewService(store, nil).Export(cmd.Context(), now, calendar.Today(now))
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("out")
			if out == "-" {
				_, err = pack.WriteTo(cmd.OutOrStdout())
				return err
			}
			if out == "" {
				out = pack.FileName()
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if _, err := pack.WriteTo(f); err != nil {
				f.Close()
				return err
			}
			log.WithField("file", out).Info("data pack written")
			return f.Close()
		},
	}
	cmd.Flags().StringP("out", "o", "", `Output file ("-" for stdout, default naturalization-data-<date>.json)`)
	return cmd
}
