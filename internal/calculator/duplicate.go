package calculator

import (
	"math"
	"time"

	"github.com/mmynk/tripsplit/internal/models"
)

const (
	// DuplicateAmountTolerance is the largest AmountInBase difference
	// between two expenses still considered the same amount.
	DuplicateAmountTolerance = 0.01
	// DuplicateWindow is the largest time gap between two duplicates.
	DuplicateWindow = time.Minute
)

// isDuplicate reports whether a and b look like the same expense entered
// twice: same payer, same description (exact), same amount within
// DuplicateAmountTolerance, and at most DuplicateWindow apart.
func isDuplicate(a, b models.Expense, now time.Time) (time.Duration, bool) {
	if math.Abs(a.AmountInBase-b.AmountInBase) > DuplicateAmountTolerance {
		return 0, false
	}
	if a.Description != b.Description || a.PayerID != b.PayerID {
		return 0, false
	}
	gap := a.OccurredAt(now).Sub(b.OccurredAt(now)).Abs()
	return gap, gap <= DuplicateWindow
}

// FindDuplicate returns the first existing expense that candidate duplicates.
// A match is advisory; callers decide whether to warn or block.
func FindDuplicate(existing []models.Expense, candidate models.Expense, now time.Time) (models.Expense, bool) {
	for _, e := range existing {
		if _, ok := isDuplicate(e, candidate, now); ok {
			return e, true
		}
	}
	return models.Expense{}, false
}

// DuplicatePair is two expenses that look like the same entry.
type DuplicatePair struct {
	First  models.Expense
	Second models.Expense
	Gap    time.Duration
}

// DetectDuplicates scans every pair of expenses, in list order, and returns
// each pair FindDuplicate would flag.
func DetectDuplicates(expenses []models.Expense, now time.Time) []DuplicatePair {
	var pairs []DuplicatePair
	for i := range expenses {
		for j := i + 1; j < len(expenses); j++ {
			if gap, ok := isDuplicate(expenses[i], expenses[j], now); ok {
				pairs = append(pairs, DuplicatePair{First: expenses[i], Second: expenses[j], Gap: gap})
			}
		}
	}
	return pairs
}
