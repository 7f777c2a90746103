package calculator

import (
	"cmp"
	"slices"
)

// Settlement is one transfer from a debtor family to a creditor family.
type Settlement struct {
	FromFamily string  // Family that owes
	ToFamily   string  // Family that is owed
	Amount     float64 // Always positive, rounded to cents
}

type position struct {
	id        string
	remaining float64
}

// ComputeSettlements turns family balances into a list of transfers that
// zeroes them out.
//
// Algorithm: greedy largest-first matching. Creditors and debtors are each
// sorted by amount descending (ties by ID), then swept with two pointers;
// every step moves min(creditor, debtor) and advances whichever side
// reaches zero. The result has at most creditors+debtors-1 transfers,
// which is not always the minimum possible.
func ComputeSettlements(familyBalances Balances) []Settlement {
	var creditors, debtors []position
	for id, balance := range familyBalances {
		if balance > 0 {
			creditors = append(creditors, position{id: id, remaining: balance})
		} else if balance < 0 {
			debtors = append(debtors, position{id: id, remaining: -balance})
		}
	}
	byAmountDesc := func(a, b position) int {
		if c := cmp.Compare(b.remaining, a.remaining); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	}
	slices.SortFunc(creditors, byAmountDesc)
	slices.SortFunc(debtors, byAmountDesc)

	var settlements []Settlement
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		amount := min(creditor.remaining, debtor.remaining)
		if !IsZero(amount) { // Skip floating point noise
			settlements = append(settlements, Settlement{
				FromFamily: debtor.id,
				ToFamily:   creditor.id,
				Amount:     Round2(amount),
			})
		}

		creditor.remaining -= amount
		debtor.remaining -= amount

		if IsZero(creditor.remaining) {
			i++
		}
		if IsZero(debtor.remaining) {
			j++
		}
	}
	return settlements
}
