package calculator

import (
	"testing"
	"time"

	"github.com/mmynk/tripsplit/internal/models"
)

func TestFindDuplicate(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base.Add(time.Hour)

	existing := []models.Expense{
		{ID: "e1", PayerID: "A", AmountInBase: 42.5, Description: "Dinner", ExpenseDate: base},
		{ID: "e2", PayerID: "A", AmountInBase: 42.5, Description: "Dinner", ExpenseDate: base.Add(20 * time.Second)},
	}

	tests := []struct {
		name      string
		candidate models.Expense
		wantID    string
	}{
		{
			name:      "ten seconds apart matches the first",
			candidate: models.Expense{PayerID: "A", AmountInBase: 42.5, Description: "Dinner", ExpenseDate: base.Add(10 * time.Second)},
			wantID:    "e1",
		},
		{
			name:      "amount within a cent",
			candidate: models.Expense{PayerID: "A", AmountInBase: 42.51, Description: "Dinner", ExpenseDate: base},
			wantID:    "e1",
		},
		{
			name:      "exactly one minute apart",
			candidate: models.Expense{PayerID: "A", AmountInBase: 42.5, Description: "Dinner", ExpenseDate: base.Add(-time.Minute)},
			wantID:    "e1",
		},
		{
			name:      "five minutes apart",
			candidate: models.Expense{PayerID: "A", AmountInBase: 42.5, Description: "Dinner", ExpenseDate: base.Add(5 * time.Minute)},
		},
		{
			name:      "different payer",
			candidate: models.Expense{PayerID: "B", AmountInBase: 42.5, Description: "Dinner", ExpenseDate: base},
		},
		{
			name:      "description is case sensitive",
			candidate: models.Expense{PayerID: "A", AmountInBase: 42.5, Description: "dinner", ExpenseDate: base},
		},
		{
			name:      "amount differs by more than a cent",
			candidate: models.Expense{PayerID: "A", AmountInBase: 42.6, Description: "Dinner", ExpenseDate: base},
		},
		{
			name:      "candidate without date is compared at now",
			candidate: models.Expense{PayerID: "A", AmountInBase: 42.5, Description: "Dinner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindDuplicate(existing, tt.candidate, now)
			if tt.wantID == "" {
				if ok {
					t.Errorf("unexpected duplicate %s", got.ID)
				}
				return
			}
			if !ok {
				t.Fatalf("expected duplicate %s, got none", tt.wantID)
			}
			if got.ID != tt.wantID {
				t.Errorf("duplicate = %s, want %s", got.ID, tt.wantID)
			}
		})
	}
}

func TestFindDuplicateFallsBackToCreatedAt(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	existing := []models.Expense{
		{ID: "e1", PayerID: "A", AmountInBase: 10, Description: "Taxi", CreatedAt: now.Add(-30 * time.Second)},
	}
	candidate := models.Expense{PayerID: "A", AmountInBase: 10, Description: "Taxi"}

	if _, ok := FindDuplicate(existing, candidate, now); !ok {
		t.Error("expected creation time within a minute of now to match")
	}
	if _, ok := FindDuplicate(nil, candidate, now); ok {
		t.Error("no existing expenses should never match")
	}
}

func TestDetectDuplicates(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	expenses := []models.Expense{
		{ID: "e1", PayerID: "A", AmountInBase: 5, Description: "Coffee", ExpenseDate: base},
		{ID: "e2", PayerID: "A", AmountInBase: 5, Description: "Coffee", ExpenseDate: base.Add(10 * time.Second)},
		{ID: "e3", PayerID: "A", AmountInBase: 5, Description: "Coffee", ExpenseDate: base.Add(5 * time.Minute)},
		{ID: "e4", PayerID: "B", AmountInBase: 5, Description: "Coffee", ExpenseDate: base},
	}

	pairs := DetectDuplicates(expenses, base)

	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1: %+v", len(pairs), pairs)
	}
	if pairs[0].First.ID != "e1" || pairs[0].Second.ID != "e2" {
		t.Errorf("pair = (%s, %s), want (e1, e2)", pairs[0].First.ID, pairs[0].Second.ID)
	}
	if pairs[0].Gap != 10*time.Second {
		t.Errorf("gap = %v, want 10s", pairs[0].Gap)
	}
}

func TestValidate(t *testing.T) {
	participants := []models.Participant{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	expenses := []models.Expense{
		{ID: "e1", PayerID: "A", AmountInBase: 100, SplitType: models.SplitAll},
		{ID: "e2", PayerID: "B", AmountInBase: 10, SplitType: models.SplitParticipants, TargetParticipantIDs: []string{"C"}},
		{ID: "e3", PayerID: "C", AmountInBase: 7, SplitType: models.SplitFamilies},
	}

	got := Validate(participants, expenses)
	if !got.Valid {
		t.Errorf("Validate() = %+v, want valid", got)
	}
	if got.Message != "balanced" {
		t.Errorf("message = %q", got.Message)
	}

	bad := validateBalances(Balances{"A": 10, "B": -9.5})
	if bad.Valid {
		t.Error("expected residual 0.5 to be invalid")
	}
	if bad.Message != "unbalanced, residual 0.50" {
		t.Errorf("message = %q", bad.Message)
	}
}
