package calculator

import (
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/mmynk/tripsplit/internal/models"
)

func TestComputeSettlements(t *testing.T) {
	tests := []struct {
		name     string
		balances Balances
		want     []Settlement
	}{
		{
			name:     "two families",
			balances: Balances{"X": 60, "Y": -60},
			want:     []Settlement{{FromFamily: "Y", ToFamily: "X", Amount: 60}},
		},
		{
			name:     "one debtor pays two creditors",
			balances: Balances{"X": 50, "Y": 30, "Z": -80},
			want: []Settlement{
				{FromFamily: "Z", ToFamily: "X", Amount: 50},
				{FromFamily: "Z", ToFamily: "Y", Amount: 30},
			},
		},
		{
			name:     "two debtors one creditor",
			balances: Balances{"X": 100, "Y": -70, "Z": -30},
			want: []Settlement{
				{FromFamily: "Y", ToFamily: "X", Amount: 70},
				{FromFamily: "Z", ToFamily: "X", Amount: 30},
			},
		},
		{
			name:     "equal amounts advance both sides",
			balances: Balances{"A": 40, "B": 40, "C": -40, "D": -40},
			want: []Settlement{
				{FromFamily: "C", ToFamily: "A", Amount: 40},
				{FromFamily: "D", ToFamily: "B", Amount: 40},
			},
		},
		{
			name:     "amounts are rounded to cents",
			balances: Balances{"X": 33.333333, "Y": -33.333333},
			want:     []Settlement{{FromFamily: "Y", ToFamily: "X", Amount: 33.33}},
		},
		{
			name:     "floating point noise yields nothing",
			balances: Balances{"X": 0.004, "Y": -0.004},
			want:     nil,
		},
		{
			name:     "all zero",
			balances: Balances{"X": 0, "Y": 0},
			want:     nil,
		},
		{
			name:     "empty input",
			balances: Balances{},
			want:     nil,
		},
		{
			name:     "nil input",
			balances: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSettlements(tt.balances)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ComputeSettlements() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestThreeFamilyTotal(t *testing.T) {
	got := ComputeSettlements(Balances{"X": 50, "Y": 30, "Z": -80})
	if len(got) != 2 {
		t.Fatalf("got %d settlements, want 2", len(got))
	}
	var total float64
	for _, s := range got {
		total += s.Amount
	}
	if math.Abs(total-80) > 0.01 {
		t.Errorf("total transferred = %v, want 80", total)
	}
}

func TestFamilySettlementPipeline(t *testing.T) {
	roster := Roster{
		Participants: []models.Participant{
			{ID: "A", FamilyID: "X"},
			{ID: "B", FamilyID: "Y"},
			{ID: "C", FamilyID: "Y"},
		},
		Families: []models.Family{{ID: "X", Name: "X"}, {ID: "Y", Name: "Y"}},
	}
	expenses := []models.Expense{
		{ID: "e1", PayerID: "A", AmountInBase: 90, SplitType: models.SplitAll},
	}

	summary := Summarize(roster, expenses)

	want := []Settlement{{FromFamily: "Y", ToFamily: "X", Amount: 60}}
	if !reflect.DeepEqual(summary.Settlements, want) {
		t.Errorf("settlements = %+v, want %+v", summary.Settlements, want)
	}
	if math.Abs(summary.FamilyBalances["X"]-60) > 0.01 || math.Abs(summary.FamilyBalances["Y"]+60) > 0.01 {
		t.Errorf("family balances = %v, want {X: 60, Y: -60}", summary.FamilyBalances)
	}
	if !summary.Validation.Valid {
		t.Errorf("validation = %+v, want valid", summary.Validation)
	}
	if summary.TotalSpent != 90 {
		t.Errorf("total spent = %v, want 90", summary.TotalSpent)
	}
	if math.Abs(summary.TotalToTransfer-60) > 0.01 {
		t.Errorf("total to transfer = %v, want 60", summary.TotalToTransfer)
	}
	if len(summary.EmptySplitExpenseIDs) != 0 {
		t.Errorf("unexpected empty splits: %v", summary.EmptySplitExpenseIDs)
	}

	// Same inputs, same output
	if again := Summarize(roster, expenses); !reflect.DeepEqual(summary, again) {
		t.Error("Summarize is not idempotent")
	}
}

func TestSettlementProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for run := range 200 {
		participants, expenses := randomTrip(r)
		// Only a closed set of families nets to zero
		for i := range participants {
			if !participants[i].HasFamily() {
				participants[i].FamilyID = "F1"
			}
		}
		balances, _ := ParticipantBalances(participants, expenses)
		families := AggregateByFamily(participants, balances)

		settlements := ComputeSettlements(families)

		var creditors, debtors int
		for _, b := range families {
			if b > 0 {
				creditors++
			} else if b < 0 {
				debtors++
			}
		}
		if n := creditors + debtors - 1; n >= 0 && len(settlements) > n {
			t.Fatalf("run %d: %d settlements exceed bound %d", run, len(settlements), n)
		}

		net := make(map[string]float64)
		for _, s := range settlements {
			if s.Amount <= 0 {
				t.Fatalf("run %d: non-positive settlement %+v", run, s)
			}
			if s.FromFamily == s.ToFamily {
				t.Fatalf("run %d: self transfer %+v", run, s)
			}
			net[s.ToFamily] += s.Amount
			net[s.FromFamily] -= s.Amount
		}
		// Conservation, allowing a rounding cent per transfer
		slack := 0.01 * float64(len(settlements)+1)
		for id, got := range net {
			if math.Abs(got-families[id]) > slack {
				t.Fatalf("run %d: family %s receives %v net, balance was %v", run, id, got, families[id])
			}
		}

		if again := ComputeSettlements(families); !reflect.DeepEqual(settlements, again) {
			t.Fatalf("run %d: second run differs", run)
		}
	}
}
