package calculator

import (
	"errors"

	"github.com/mmynk/tripsplit/internal/models"
)

// Summary is the full settlement picture for one trip.
type Summary struct {
	ParticipantBalances Balances
	FamilyBalances      Balances
	// UnaffiliatedBalances holds participants who settle outside families.
	UnaffiliatedBalances Balances
	Settlements          []Settlement
	Validation           Validation

	// TotalSpent is the sum of AmountInBase over all expenses.
	TotalSpent float64
	// TotalToTransfer is the sum of positive family balances.
	TotalToTransfer float64

	// EmptySplitExpenseIDs lists expenses skipped for having no targets.
	EmptySplitExpenseIDs []string
	// InvalidAmountExpenseIDs lists expenses skipped for a NaN or infinite
	// AmountInBase.
	InvalidAmountExpenseIDs []string
}

// Summarize runs the whole pipeline: participant balances, family
// aggregation, settlement matching and validation.
func Summarize(roster Roster, expenses []models.Expense) Summary {
	var summary Summary

	balances, err := ParticipantBalances(roster.Participants, expenses)
	var emptySplit *EmptySplitError
	if errors.As(err, &emptySplit) {
		summary.EmptySplitExpenseIDs = emptySplit.ExpenseIDs
	}
	var invalid *InvalidAmountError
	if errors.As(err, &invalid) {
		summary.InvalidAmountExpenseIDs = invalid.ExpenseIDs
	}

	summary.ParticipantBalances = balances
	summary.FamilyBalances = AggregateByFamily(roster.Participants, balances)
	summary.UnaffiliatedBalances = Unaffiliated(roster.Participants, balances)
	summary.Settlements = ComputeSettlements(summary.FamilyBalances)
	summary.Validation = validateBalances(balances)

	for _, e := range expenses {
		if IsFinite(e.AmountInBase) {
			summary.TotalSpent += e.AmountInBase
		}
	}
	for _, b := range summary.FamilyBalances {
		if b > 0 {
			summary.TotalToTransfer += b
		}
	}
	return summary
}
