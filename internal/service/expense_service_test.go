package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/tripsplit/internal/api"
	"github.com/mmynk/tripsplit/internal/models"
)

func TestAddExpense(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	f := createFixture(t, c)

	t.Run("base currency needs no rate", func(t *testing.T) {
		got := addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.a, Amount: 90, Description: "Dinner"})
		e := got.Expense
		if e.Currency != "CNY" || e.ExchangeRate != 1 || e.AmountInBase != 90 {
			t.Errorf("expense = %+v", e)
		}
		if e.SplitType != "all" || e.Category != "other" {
			t.Errorf("defaults: split %q, category %q", e.SplitType, e.Category)
		}
		if got.Duplicate != nil {
			t.Errorf("unexpected duplicate %+v", got.Duplicate)
		}
	})

	t.Run("foreign currency looks up the rate", func(t *testing.T) {
		got := addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.b, Amount: 12.5, Currency: "usd", Description: "Museum", Category: "Tickets"})
		if got.Expense.ExchangeRate != 7.2 || math.Abs(got.Expense.AmountInBase-90) > 0.01 {
			t.Errorf("expense = %+v", got.Expense)
		}
		if got.Expense.Category != "tickets" {
			t.Errorf("category = %q", got.Expense.Category)
		}
	})

	t.Run("explicit rate wins", func(t *testing.T) {
		got := addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.b, Amount: 10, Currency: "USD", ExchangeRate: 7, Description: "Taxi"})
		if got.Expense.ExchangeRate != 7 || got.Expense.AmountInBase != 70 {
			t.Errorf("expense = %+v", got.Expense)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			in   api.ExpenseInput
			want connect.Code
		}{
			{"zero amount", api.ExpenseInput{PayerID: f.a, Amount: 0, Description: "x"}, connect.CodeInvalidArgument},
			{"negative amount", api.ExpenseInput{PayerID: f.a, Amount: -5, Description: "x"}, connect.CodeInvalidArgument},
			{"blank description", api.ExpenseInput{PayerID: f.a, Amount: 5, Description: " "}, connect.CodeInvalidArgument},
			{"payer not on trip", api.ExpenseInput{PayerID: "ghost", Amount: 5, Description: "x"}, connect.CodeInvalidArgument},
			{"unknown split type", api.ExpenseInput{PayerID: f.a, Amount: 5, Description: "x", SplitType: "halves"}, connect.CodeInvalidArgument},
			{"families without targets", api.ExpenseInput{PayerID: f.a, Amount: 5, Description: "x", SplitType: "families"}, connect.CodeInvalidArgument},
			{"unknown target family", api.ExpenseInput{PayerID: f.a, Amount: 5, Description: "x", SplitType: "families", TargetFamilyIDs: []string{"nope"}}, connect.CodeInvalidArgument},
			{"participants without targets", api.ExpenseInput{PayerID: f.a, Amount: 5, Description: "x", SplitType: "participants"}, connect.CodeInvalidArgument},
			{"unknown category", api.ExpenseInput{PayerID: f.a, Amount: 5, Description: "x", Category: "gifts"}, connect.CodeInvalidArgument},
			{"negative rate", api.ExpenseInput{PayerID: f.a, Amount: 5, Description: "x", Currency: "USD", ExchangeRate: -1}, connect.CodeInvalidArgument},
			{"rate unavailable", api.ExpenseInput{PayerID: f.a, Amount: 5, Description: "x", Currency: "EUR"}, connect.CodeUnavailable},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := c.expenses.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{TripID: f.tripID, ExpenseInput: tt.in}))
				if connect.CodeOf(err) != tt.want {
					t.Errorf("code = %v, want %v (%v)", connect.CodeOf(err), tt.want, err)
				}
			})
		}
	})

	t.Run("unknown trip", func(t *testing.T) {
		_, err := c.expenses.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
			TripID:       "nonexistent",
			ExpenseInput: api.ExpenseInput{PayerID: f.a, Amount: 5, Description: "x"},
		}))
		if connect.CodeOf(err) != connect.CodeNotFound {
			t.Errorf("code = %v, want NotFound", connect.CodeOf(err))
		}
	})
}

func TestAddExpenseDuplicateWarning(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	f := createFixture(t, c)
	at := time.Date(2026, 7, 3, 19, 30, 0, 0, time.UTC)

	first := addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.a, Amount: 42.5, Description: "Dinner", ExpenseDate: at})
	second := addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.a, Amount: 42.5, Description: "Dinner", ExpenseDate: at.Add(10 * time.Second)})

	if second.Duplicate == nil || second.Duplicate.ID != first.Expense.ID {
		t.Fatalf("duplicate = %+v, want %s", second.Duplicate, first.Expense.ID)
	}
	if second.Warning == "" {
		t.Error("expected a warning message")
	}
	if second.Expense.ID == "" || second.Expense.ID == first.Expense.ID {
		t.Error("duplicate must still be stored as a new expense")
	}

	later := addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.a, Amount: 42.5, Description: "Dinner", ExpenseDate: at.Add(5 * time.Minute)})
	if later.Duplicate != nil {
		t.Errorf("five minutes later flagged as duplicate of %s", later.Duplicate.ID)
	}

	list, err := c.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{TripID: f.tripID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 3 {
		t.Errorf("got %d expenses, want 3", len(list.Msg.Expenses))
	}

	dups, err := c.expenses.ListDuplicates(ctx, connect.NewRequest(&api.ListDuplicatesRequest{TripID: f.tripID}))
	if err != nil {
		t.Fatalf("ListDuplicates failed: %v", err)
	}
	if len(dups.Msg.Pairs) != 1 || dups.Msg.Pairs[0].GapSeconds != 10 {
		t.Errorf("pairs = %+v", dups.Msg.Pairs)
	}

	want := `
# HELP tripsplit_duplicate_expense_warnings_total Expenses stored while resembling an existing one.
# TYPE tripsplit_duplicate_expense_warnings_total counter
tripsplit_duplicate_expense_warnings_total 1
`
	if err := testutil.GatherAndCompare(c.metrics.Registry(), strings.NewReader(want), "tripsplit_duplicate_expense_warnings_total"); err != nil {
		t.Error(err)
	}
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	f := createFixture(t, c)

	added := addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.a, Amount: 30, Description: "Snacks"})

	updated, err := c.expenses.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		TripID:    f.tripID,
		ExpenseID: added.Expense.ID,
		ExpenseInput: api.ExpenseInput{
			PayerID: f.b, Amount: 45, Description: "Snacks and water",
			SplitType: "participants", TargetParticipantIDs: []string{f.a, f.b},
		},
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	e := updated.Msg.Expense
	if e.ID != added.Expense.ID || e.PayerID != f.b || e.AmountInBase != 45 || e.UpdatedAt.IsZero() {
		t.Errorf("updated = %+v", e)
	}

	split, err := c.expenses.GetExpenseSplit(ctx, connect.NewRequest(&api.GetExpenseSplitRequest{TripID: f.tripID, ExpenseID: e.ID}))
	if err != nil {
		t.Fatalf("GetExpenseSplit failed: %v", err)
	}
	if len(split.Msg.Shares) != 2 || split.Msg.Shares[0].Amount != 22.5 || split.Msg.Shares[0].Name != "A" {
		t.Errorf("shares = %+v", split.Msg.Shares)
	}

	if _, err := c.expenses.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{TripID: f.tripID, ExpenseID: e.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	_, err = c.expenses.UpdateExpense(ctx, connect.NewRequest(&api.UpdateExpenseRequest{
		TripID: f.tripID, ExpenseID: e.ID,
		ExpenseInput: api.ExpenseInput{PayerID: f.a, Amount: 1, Description: "gone"},
	}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("update after delete code = %v, want NotFound", connect.CodeOf(err))
	}
	_, err = c.expenses.GetExpenseSplit(ctx, connect.NewRequest(&api.GetExpenseSplitRequest{TripID: f.tripID, ExpenseID: e.ID}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("split after delete code = %v, want NotFound", connect.CodeOf(err))
	}
}

func TestGetExpenseSplitEmptyFamily(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	f := createFixture(t, c)

	empty, err := c.trips.AddFamily(ctx, connect.NewRequest(&api.AddFamilyRequest{TripID: f.tripID, Name: "Nobody"}))
	if err != nil {
		t.Fatalf("AddFamily failed: %v", err)
	}
	added := addExpense(t, c, f.tripID, api.ExpenseInput{
		PayerID: f.a, Amount: 20, Description: "Gift",
		SplitType: "families", TargetFamilyIDs: []string{empty.Msg.Family.ID},
	})

	_, err = c.expenses.GetExpenseSplit(ctx, connect.NewRequest(&api.GetExpenseSplitRequest{TripID: f.tripID, ExpenseID: added.Expense.ID}))
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("code = %v, want FailedPrecondition", connect.CodeOf(err))
	}
}

func TestAddExpenseRejectsOverflowingBaseAmount(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	f := createFixture(t, c)

	_, err := c.expenses.AddExpense(ctx, connect.NewRequest(&api.AddExpenseRequest{
		TripID: f.tripID,
		ExpenseInput: api.ExpenseInput{
			PayerID: f.a, Amount: 1e200, Currency: "USD", ExchangeRate: 1e200, Description: "Overflow",
		},
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument (%v)", connect.CodeOf(err), err)
	}

	list, err := c.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{TripID: f.tripID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 0 {
		t.Errorf("rejected expense was stored: %+v", list.Msg.Expenses)
	}
}

func TestStoredNonFiniteExpenseIsSkipped(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	f := createFixture(t, c)

	addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.a, Amount: 90, Description: "Dinner"})
	bad := &models.Expense{
		TripID: f.tripID, PayerID: f.b, Amount: 1, Currency: "CNY", ExchangeRate: 1,
		AmountInBase: math.Inf(1), Description: "Corrupt", Category: models.CategoryOther,
		SplitType: models.SplitAll,
	}
	if err := c.store.CreateExpense(ctx, bad); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	resp, err := c.settlement.GetSettlements(ctx, connect.NewRequest(&api.GetSettlementsRequest{TripID: f.tripID}))
	if err != nil {
		t.Fatalf("GetSettlements failed: %v", err)
	}
	if ids := resp.Msg.InvalidAmountExpenseIDs; len(ids) != 1 || ids[0] != bad.ID {
		t.Errorf("invalid ids = %v, want [%s]", ids, bad.ID)
	}
	if len(resp.Msg.Settlements) != 1 || math.Abs(resp.Msg.Settlements[0].Amount-60) > 0.01 {
		t.Errorf("settlements = %+v", resp.Msg.Settlements)
	}
	if resp.Msg.TotalSpent != 90 || !resp.Msg.Validation.Valid {
		t.Errorf("total = %v, validation = %+v", resp.Msg.TotalSpent, resp.Msg.Validation)
	}

	_, err = c.expenses.GetExpenseSplit(ctx, connect.NewRequest(&api.GetExpenseSplitRequest{TripID: f.tripID, ExpenseID: bad.ID}))
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("split code = %v, want FailedPrecondition", connect.CodeOf(err))
	}
}
