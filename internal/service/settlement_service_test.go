package service

import (
	"context"
	"math"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/api"
)

func TestGetSettlements(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	f := createFixture(t, c)

	// A (family X) pays 90 for everyone
	addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.a, Amount: 90, Description: "Dinner"})

	resp, err := c.settlement.GetSettlements(ctx, connect.NewRequest(&api.GetSettlementsRequest{TripID: f.tripID}))
	if err != nil {
		t.Fatalf("GetSettlements failed: %v", err)
	}
	msg := resp.Msg

	if len(msg.Settlements) != 1 {
		t.Fatalf("settlements = %+v, want one", msg.Settlements)
	}
	s := msg.Settlements[0]
	if s.FromFamilyID != f.y || s.ToFamilyID != f.x || s.FromFamily != "Y" || s.ToFamily != "X" {
		t.Errorf("settlement = %+v, want Y -> X", s)
	}
	if math.Abs(s.Amount-60) > 0.01 {
		t.Errorf("amount = %v, want 60", s.Amount)
	}
	if msg.TotalSpent != 90 || math.Abs(msg.TotalToTransfer-60) > 0.01 {
		t.Errorf("totals = %v / %v", msg.TotalSpent, msg.TotalToTransfer)
	}
	if !msg.Validation.Valid || msg.BaseCurrency != "CNY" {
		t.Errorf("validation = %+v, base = %q", msg.Validation, msg.BaseCurrency)
	}
	if len(msg.UnaffiliatedBalances) != 0 {
		t.Errorf("unaffiliated = %+v", msg.UnaffiliatedBalances)
	}
}

func TestGetBalances(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	f := createFixture(t, c)

	// D travels without a family
	d, err := c.trips.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{TripID: f.tripID, Name: "D"}))
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	empty, err := c.trips.AddFamily(ctx, connect.NewRequest(&api.AddFamilyRequest{TripID: f.tripID, Name: "Empty"}))
	if err != nil {
		t.Fatalf("AddFamily failed: %v", err)
	}

	addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.a, Amount: 40, Description: "Tea", SplitType: "families", TargetFamilyIDs: []string{f.y}})
	addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: d.Msg.Participant.ID, Amount: 10, Description: "Water", SplitType: "participants", TargetParticipantIDs: []string{f.a}})
	skipped := addExpense(t, c, f.tripID, api.ExpenseInput{PayerID: f.b, Amount: 99, Description: "Lost", SplitType: "families", TargetFamilyIDs: []string{empty.Msg.Family.ID}})

	resp, err := c.settlement.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{TripID: f.tripID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}

	want := map[string]float64{f.a: 30, f.b: -20, f.c: -20, d.Msg.Participant.ID: 10}
	if len(resp.Msg.ParticipantBalances) != len(want) {
		t.Fatalf("balances = %+v", resp.Msg.ParticipantBalances)
	}
	for _, b := range resp.Msg.ParticipantBalances {
		if math.Abs(b.Amount-want[b.ID]) > 0.01 {
			t.Errorf("balance[%s] = %v, want %v", b.Name, b.Amount, want[b.ID])
		}
	}
	if resp.Msg.ParticipantBalances[0].Name != "A" {
		t.Errorf("first balance = %+v, want roster order", resp.Msg.ParticipantBalances[0])
	}

	if len(resp.Msg.FamilyBalances) != 2 {
		t.Errorf("family balances = %+v, want X and Y only", resp.Msg.FamilyBalances)
	}
	if !resp.Msg.Validation.Valid {
		t.Errorf("validation = %+v", resp.Msg.Validation)
	}
	if len(resp.Msg.EmptySplitExpenseIDs) != 1 || resp.Msg.EmptySplitExpenseIDs[0] != skipped.Expense.ID {
		t.Errorf("empty splits = %v, want [%s]", resp.Msg.EmptySplitExpenseIDs, skipped.Expense.ID)
	}

	settlements, err := c.settlement.GetSettlements(ctx, connect.NewRequest(&api.GetSettlementsRequest{TripID: f.tripID}))
	if err != nil {
		t.Fatalf("GetSettlements failed: %v", err)
	}
	if u := settlements.Msg.UnaffiliatedBalances; len(u) != 1 || u[0].Name != "D" || math.Abs(u[0].Amount-10) > 0.01 {
		t.Errorf("unaffiliated = %+v", u)
	}
}

func TestSettlementUnknownTrip(t *testing.T) {
	c := setupTestServer(t)
	_, err := c.settlement.GetBalances(context.Background(), connect.NewRequest(&api.GetBalancesRequest{TripID: "nonexistent"}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("code = %v, want NotFound", connect.CodeOf(err))
	}
}
