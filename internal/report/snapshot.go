// Package report loads offline trip snapshots and renders settlement reports.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/currency"
	"github.com/mmynk/tripsplit/internal/models"
)

// Snapshot is a whole trip written by hand or exported from the server.
// YAML and JSON files decode the same way.
type Snapshot struct {
	Name         string                `yaml:"name"`
	BaseCurrency string                `yaml:"base_currency"`
	Participants []SnapshotParticipant `yaml:"participants"`
	Families     []SnapshotFamily      `yaml:"families"`
	Expenses     []SnapshotExpense     `yaml:"expenses"`
}

// SnapshotParticipant is one traveler. ID defaults to Name.
type SnapshotParticipant struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Family string `yaml:"family"`
}

// SnapshotFamily is one household. ID defaults to Name.
type SnapshotFamily struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// SnapshotExpense is one payment. A zero ExchangeRate means unknown.
type SnapshotExpense struct {
	ID           string    `yaml:"id"`
	Payer        string    `yaml:"payer"`
	Amount       float64   `yaml:"amount"`
	Currency     string    `yaml:"currency"`
	ExchangeRate float64   `yaml:"exchange_rate"`
	Description  string    `yaml:"description"`
	Category     string    `yaml:"category"`
	Date         time.Time `yaml:"date"`
	Split        string    `yaml:"split"`
	Families     []string  `yaml:"families"`
	Participants []string  `yaml:"participants"`
}

// ErrMissingRate is returned for a foreign-currency expense without an
// exchange rate when no rate source is available.
var ErrMissingRate = errors.New("missing exchange rate")

// Decode reads a YAML or JSON snapshot. Unknown keys are rejected.
func Decode(r io.Reader) (*Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty snapshot")
		}
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// LoadFile decodes the snapshot at path.
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// TripData resolves the snapshot into domain models. Expenses in a foreign
// currency with no rate are priced through rates; with rates nil they fail
// with ErrMissingRate.
func (s *Snapshot) TripData(ctx context.Context, rates currency.RateSource) (*models.TripData, error) {
	base := currency.Normalize(s.BaseCurrency)
	if base == "" {
		base = "CNY"
	}
	data := &models.TripData{
		Trip: &models.Trip{ID: s.Name, Name: s.Name, BaseCurrency: base},
	}

	families := make(map[string]bool, len(s.Families))
	for _, f := range s.Families {
		id := firstNonEmpty(f.ID, f.Name)
		if id == "" {
			return nil, errors.New("family without id or name")
		}
		if families[id] {
			return nil, fmt.Errorf("duplicate family %q", id)
		}
		families[id] = true
		data.Families = append(data.Families, models.Family{ID: id, TripID: s.Name, Name: firstNonEmpty(f.Name, id)})
	}

	participants := make(map[string]bool, len(s.Participants))
	for _, p := range s.Participants {
		id := firstNonEmpty(p.ID, p.Name)
		if id == "" {
			return nil, errors.New("participant without id or name")
		}
		if participants[id] {
			return nil, fmt.Errorf("duplicate participant %q", id)
		}
		if p.Family != "" && !families[p.Family] {
			return nil, fmt.Errorf("participant %q: unknown family %q", id, p.Family)
		}
		participants[id] = true
		data.Participants = append(data.Participants, models.Participant{
			ID: id, TripID: s.Name, Name: firstNonEmpty(p.Name, id), FamilyID: p.Family,
		})
	}

	roster := calculator.Roster{Participants: data.Participants, Families: data.Families}
	for i := range data.Families {
		data.Families[i].Members = roster.Members(data.Families[i].ID)
	}

	for i, e := range s.Expenses {
		id := firstNonEmpty(e.ID, fmt.Sprintf("expense-%d", i+1))
		if !calculator.IsFinite(e.Amount) || e.Amount <= 0 {
			return nil, fmt.Errorf("expense %s: amount must be a positive number", id)
		}
		if !participants[e.Payer] {
			return nil, fmt.Errorf("expense %s: unknown payer %q", id, e.Payer)
		}
		split, err := models.ParseSplitType(strings.ToLower(e.Split))
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", id, err)
		}

		code := firstNonEmpty(currency.Normalize(e.Currency), base)
		rate := e.ExchangeRate
		switch {
		case !calculator.IsFinite(rate) || rate < 0:
			return nil, fmt.Errorf("expense %s: exchange rate must be a positive number", id)
		case rate == 0 && code == base:
			rate = 1
		case rate == 0 && rates == nil:
			return nil, fmt.Errorf("expense %s: %s to %s: %w", id, code, base, ErrMissingRate)
		case rate == 0:
			rate = currency.AutoRate(ctx, rates, code, base)
		}

		amountInBase := e.Amount * rate
		if !calculator.IsFinite(amountInBase) || amountInBase <= 0 {
			return nil, fmt.Errorf("expense %s: %w", id, calculator.ErrInvalidAmount)
		}

		expense := models.Expense{
			ID:           id,
			TripID:       s.Name,
			PayerID:      e.Payer,
			Amount:       e.Amount,
			Currency:     code,
			ExchangeRate: rate,
			AmountInBase: amountInBase,
			Description:  e.Description,
			Category:     models.Category(firstNonEmpty(strings.ToLower(e.Category), string(models.CategoryOther))),
			ExpenseDate:  e.Date,
			SplitType:    split,
		}
		switch split {
		case models.SplitFamilies:
			expense.TargetFamilyIDs = e.Families
		case models.SplitParticipants:
			expense.TargetParticipantIDs = e.Participants
		}
		data.Expenses = append(data.Expenses, expense)
	}
	return data, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
