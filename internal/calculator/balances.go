package calculator

import (
	"errors"
	"sort"

	"github.com/mmynk/tripsplit/internal/models"
)

// Balances maps a participant or family ID to a signed net position.
// Positive = owed money, Negative = owes money.
type Balances map[string]float64

// Sum returns the total of all balances.
func (b Balances) Sum() float64 {
	var total float64
	for _, v := range b {
		total += v
	}
	return total
}

// IDs returns the keys in ascending order.
func (b Balances) IDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ParticipantBalances computes each participant's net balance across expenses.
//
// Algorithm:
//   - every roster participant starts at 0
//   - for each expense: payer += AmountInBase, each target -= AmountInBase / len(targets)
//
// A payer or target missing from the roster still gets an entry, so the
// balances always sum to zero. Expenses that resolve to no targets are
// skipped entirely; their IDs are reported in an *EmptySplitError, and the
// returned balances remain valid for every other expense. Expenses whose
// AmountInBase is NaN or infinite are skipped the same way and reported in
// an *InvalidAmountError.
func ParticipantBalances(participants []models.Participant, expenses []models.Expense) (Balances, error) {
	roster := Roster{Participants: participants}
	balances := make(Balances, len(participants))
	for _, p := range participants {
		balances[p.ID] = 0
	}

	var skipped, invalid []string
	for _, expense := range expenses {
		if !IsFinite(expense.AmountInBase) {
			invalid = append(invalid, expense.ID)
			continue
		}
		targets := ResolveTargets(expense, roster)
		if len(targets) == 0 {
			skipped = append(skipped, expense.ID)
			continue
		}

		// Payer fronted the full amount
		balances[expense.PayerID] += expense.AmountInBase

		// Each target owes an equal share
		share := expense.AmountInBase / float64(len(targets))
		for _, id := range targets {
			balances[id] -= share
		}
	}

	var errs []error
	if len(skipped) > 0 {
		errs = append(errs, &EmptySplitError{ExpenseIDs: skipped})
	}
	if len(invalid) > 0 {
		errs = append(errs, &InvalidAmountError{ExpenseIDs: invalid})
	}
	return balances, errors.Join(errs...)
}

// AggregateByFamily sums participant balances per family.
// Unaffiliated participants are left out of every family total.
func AggregateByFamily(participants []models.Participant, participantBalances Balances) Balances {
	families := make(Balances)
	for _, p := range participants {
		if !p.HasFamily() {
			continue
		}
		families[p.FamilyID] += participantBalances[p.ID]
	}
	return families
}

// Unaffiliated returns the balances of participants without a family.
func Unaffiliated(participants []models.Participant, participantBalances Balances) Balances {
	out := make(Balances)
	for _, p := range participants {
		if !p.HasFamily() {
			out[p.ID] = participantBalances[p.ID]
		}
	}
	return out
}
