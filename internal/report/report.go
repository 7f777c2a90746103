package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/currency"
	"github.com/mmynk/tripsplit/internal/models"
)

// Report is the settlement picture of one trip, ready to render.
type Report struct {
	Trip         string
	BaseCurrency string
	Roster       calculator.Roster
	Summary      calculator.Summary
	Duplicates   []calculator.DuplicatePair
}

// Build runs the settlement pipeline over data.
func Build(data *models.TripData) *Report {
	roster := calculator.Roster{Participants: data.Participants, Families: data.Families}
	return &Report{
		Trip:         data.Trip.Name,
		BaseCurrency: data.Trip.BaseCurrency,
		Roster:       roster,
		Summary:      calculator.Summarize(roster, data.Expenses),
		Duplicates:   calculator.DetectDuplicates(data.Expenses, data.Trip.CreatedAt),
	}
}

type settlementRow struct {
	From     string `csv:"from"`
	To       string `csv:"to"`
	Amount   string `csv:"amount"`
	Currency string `csv:"currency"`
}

type balanceRow struct {
	Kind     string `csv:"kind"`
	ID       string `csv:"id"`
	Name     string `csv:"name"`
	Amount   string `csv:"amount"`
	Currency string `csv:"currency"`
}

func money(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

func (r *Report) settlementRows() []settlementRow {
	rows := make([]settlementRow, len(r.Summary.Settlements))
	for i, s := range r.Summary.Settlements {
		rows[i] = settlementRow{
			From:     r.Roster.FamilyName(s.FromFamily),
			To:       r.Roster.FamilyName(s.ToFamily),
			Amount:   money(s.Amount),
			Currency: r.BaseCurrency,
		}
	}
	return rows
}

// balanceRows lists participants in roster order, then families, then
// unaffiliated participants.
func (r *Report) balanceRows() []balanceRow {
	var rows []balanceRow
	for _, p := range r.Roster.Participants {
		rows = append(rows, balanceRow{"participant", p.ID, p.Name, money(r.Summary.ParticipantBalances[p.ID]), r.BaseCurrency})
	}
	for _, f := range r.Roster.Families {
		if b, ok := r.Summary.FamilyBalances[f.ID]; ok {
			rows = append(rows, balanceRow{"family", f.ID, f.Name, money(b), r.BaseCurrency})
		}
	}
	for _, id := range r.Summary.UnaffiliatedBalances.IDs() {
		rows = append(rows, balanceRow{"unaffiliated", id, r.Roster.ParticipantName(id), money(r.Summary.UnaffiliatedBalances[id]), r.BaseCurrency})
	}
	return rows
}

// WriteCSV writes the settlements, or the balances when balances is set,
// as CSV with a header row.
func (r *Report) WriteCSV(w io.Writer, balances bool) error {
	var err error
	if balances {
		err = gocsv.Marshal(r.balanceRows(), w)
	} else {
		err = gocsv.Marshal(r.settlementRows(), w)
	}
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteTable writes a human readable report. Balances are included when
// balances is set.
func (r *Report) WriteTable(w io.Writer, balances bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	symbol := currency.Symbol(r.BaseCurrency)

	fmt.Fprintf(tw, "Trip:\t%s\n", r.Trip)
	fmt.Fprintf(tw, "Total spent:\t%s%s\n", symbol, money(r.Summary.TotalSpent))
	fmt.Fprintf(tw, "To transfer:\t%s%s\n", symbol, money(r.Summary.TotalToTransfer))
	fmt.Fprintf(tw, "Check:\t%s\n", r.Summary.Validation.Message)

	if balances {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "KIND\tNAME\tBALANCE")
		for _, row := range r.balanceRows() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Kind, row.Name, row.Amount)
		}
	}

	fmt.Fprintln(tw)
	if len(r.Summary.Settlements) == 0 {
		fmt.Fprintln(tw, "Nothing to settle.")
	} else {
		fmt.Fprintln(tw, "FROM\tTO\tAMOUNT")
		for _, row := range r.settlementRows() {
			fmt.Fprintf(tw, "%s\t%s\t%s%s\n", row.From, row.To, symbol, row.Amount)
		}
	}

	if ids := r.Summary.EmptySplitExpenseIDs; len(ids) > 0 {
		fmt.Fprintf(tw, "\nSkipped %d expense(s) with no split targets: %v\n", len(ids), ids)
	}
	for _, d := range r.Duplicates {
		fmt.Fprintf(tw, "\nPossible duplicate: %s and %s (%q)\n", d.First.ID, d.Second.ID, d.First.Description)
	}
	return tw.Flush()
}
