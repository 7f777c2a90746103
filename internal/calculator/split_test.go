package calculator

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/mmynk/tripsplit/internal/models"
)

func testRoster() Roster {
	return Roster{
		Participants: []models.Participant{
			{ID: "alice", Name: "Alice", FamilyID: "fx"},
			{ID: "bob", Name: "Bob", FamilyID: "fy"},
			{ID: "carol", Name: "Carol", FamilyID: "fy"},
			{ID: "dave", Name: "Dave"},
		},
		Families: []models.Family{
			{ID: "fx", Name: "X"},
			{ID: "fy", Name: "Y"},
		},
	}
}

func TestResolveTargets(t *testing.T) {
	roster := testRoster()

	tests := []struct {
		name    string
		expense models.Expense
		want    []string
	}{
		{
			name:    "all includes payer and unaffiliated",
			expense: models.Expense{PayerID: "alice", SplitType: models.SplitAll},
			want:    []string{"alice", "bob", "carol", "dave"},
		},
		{
			name: "families picks members of targeted families",
			expense: models.Expense{
				PayerID:         "alice",
				SplitType:       models.SplitFamilies,
				TargetFamilyIDs: []string{"fy"},
			},
			want: []string{"bob", "carol"},
		},
		{
			name: "families never includes unaffiliated",
			expense: models.Expense{
				SplitType:       models.SplitFamilies,
				TargetFamilyIDs: []string{"fx", "fy", ""},
			},
			want: []string{"alice", "bob", "carol"},
		},
		{
			name: "participants taken verbatim",
			expense: models.Expense{
				SplitType:            models.SplitParticipants,
				TargetParticipantIDs: []string{"dave", "ghost"},
			},
			want: []string{"dave", "ghost"},
		},
		{
			name:    "families with no targets",
			expense: models.Expense{SplitType: models.SplitFamilies},
			want:    nil,
		},
		{
			name:    "unknown split type",
			expense: models.Expense{SplitType: "weighted"},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTargets(tt.expense, roster)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ResolveTargets() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpenseSplit(t *testing.T) {
	roster := testRoster()

	tests := []struct {
		name      string
		expense   models.Expense
		wantErr   error
		wantCount int
		wantShare float64
	}{
		{
			name:      "equal split among everyone",
			expense:   models.Expense{ID: "e1", AmountInBase: 100, SplitType: models.SplitAll},
			wantCount: 4,
			wantShare: 25,
		},
		{
			name:      "thirds are rounded per share",
			expense:   models.Expense{ID: "e2", AmountInBase: 100, SplitType: models.SplitFamilies, TargetFamilyIDs: []string{"fx", "fy"}},
			wantCount: 3,
			wantShare: 33.33,
		},
		{
			name:    "empty split is an error",
			expense: models.Expense{ID: "e3", AmountInBase: 100, SplitType: models.SplitParticipants},
			wantErr: ErrEmptySplit,
		},
		{
			name:    "unknown split type is an error",
			expense: models.Expense{ID: "e4", AmountInBase: 100, SplitType: "by-weight"},
			wantErr: ErrUnknownSplitType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := ExpenseSplit(tt.expense, roster)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ExpenseSplit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpenseSplit() unexpected error: %v", err)
			}
			if len(shares) != tt.wantCount {
				t.Fatalf("got %d shares, want %d", len(shares), tt.wantCount)
			}
			var total float64
			for _, s := range shares {
				if s.Amount != tt.wantShare {
					t.Errorf("%s share = %v, want %v", s.ParticipantID, s.Amount, tt.wantShare)
				}
				total += s.Amount
			}
			// Per-share rounding drifts by at most half a cent per target
			if drift := math.Abs(total - tt.expense.AmountInBase); drift > float64(len(shares))*0.005 {
				t.Errorf("rounding drift = %v, too large for %d shares", drift, len(shares))
			}
		})
	}
}

func TestRosterMembers(t *testing.T) {
	roster := testRoster()

	if got := roster.Members("fy"); !slices.Equal(got, []string{"bob", "carol"}) {
		t.Errorf("Members(fy) = %v", got)
	}
	if got := roster.Members(""); got != nil {
		t.Errorf("Members(\"\") = %v, want nil", got)
	}
	if got := roster.FamilyName("fx"); got != "X" {
		t.Errorf("FamilyName(fx) = %q", got)
	}
	if got := roster.FamilyName("nope"); got != "nope" {
		t.Errorf("FamilyName(nope) = %q, want fallback to ID", got)
	}
	if got := roster.ParticipantName("dave"); got != "Dave" {
		t.Errorf("ParticipantName(dave) = %q", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{33.333333, 33.33},
		{66.666666, 66.67},
		{0.005, 0.01},
		{-0.005, -0.01},
		{1.005, 1.01},
		{60, 60},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
