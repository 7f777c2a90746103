// Command settle computes family settlements for a trip snapshot file.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/tripsplit/internal/currency"
	"github.com/mmynk/tripsplit/internal/report"
	"github.com/mmynk/tripsplit/pkg/logging"
)

const defaultRatesURL = "https://api.exchangerate-api.com/v4/latest"

type options struct {
	input      string
	format     string
	balances   bool
	strict     bool
	fetchRates bool
	ratesURL   string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle a trip snapshot between families",
		Long: `settle reads a trip snapshot (YAML or JSON) with participants, families
and expenses, and prints who pays whom so every family ends up even.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "trip snapshot file (YAML or JSON)")
	flags.StringVarP(&opts.format, "format", "f", "table", "output format: table or csv")
	flags.BoolVarP(&opts.balances, "balances", "b", false, "include participant and family balances")
	flags.BoolVar(&opts.strict, "strict", false, "fail when balances do not sum to zero or expenses were skipped")
	flags.BoolVar(&opts.fetchRates, "fetch-rates", false, "look up missing exchange rates online")
	flags.StringVar(&opts.ratesURL, "rates-url", defaultRatesURL, "exchange rate API base URL")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	logger, err := logging.Setup(cmd.ErrOrStderr(), opts.logLevel, logging.FormatText)
	if err != nil {
		return err
	}
	if opts.format != "table" && opts.format != "csv" {
		return fmt.Errorf("unknown format %q, want table or csv", opts.format)
	}

	snap, err := report.LoadFile(opts.input)
	if err != nil {
		return err
	}

	var rates currency.RateSource
	if opts.fetchRates {
		rates = currency.NewClient(opts.ratesURL, currency.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	}
	data, err := snap.TripData(cmd.Context(), rates)
	if err != nil {
		return err
	}
	logger.Debug("Snapshot loaded",
		"trip", data.Trip.Name,
		"participants", len(data.Participants),
		"families", len(data.Families),
		"expenses", len(data.Expenses),
	)

	r := report.Build(data)
	out := cmd.OutOrStdout()
	if opts.format == "csv" {
		err = r.WriteCSV(out, opts.balances)
	} else {
		err = r.WriteTable(out, opts.balances)
	}
	if err != nil {
		return err
	}

	if ids := r.Summary.EmptySplitExpenseIDs; len(ids) > 0 {
		logger.Warn("Skipped expenses with no split targets", "expense_ids", ids)
	}
	if opts.strict {
		if !r.Summary.Validation.Valid {
			return fmt.Errorf("balances do not sum to zero: %s", r.Summary.Validation.Message)
		}
		if n := len(r.Summary.EmptySplitExpenseIDs); n > 0 {
			return fmt.Errorf("%d expense(s) have no split targets", n)
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "settle:", err)
		os.Exit(1)
	}
}
