package models

import (
	"fmt"
	"time"
)

// SplitType selects which participants share an expense.
type SplitType string

const (
	// SplitAll shares the expense among every participant on the trip.
	SplitAll SplitType = "all"
	// SplitFamilies shares it among members of Expense.TargetFamilyIDs.
	SplitFamilies SplitType = "families"
	// SplitParticipants shares it among Expense.TargetParticipantIDs.
	SplitParticipants SplitType = "participants"
)

// Valid reports whether t is one of the known split types.
func (t SplitType) Valid() bool {
	switch t {
	case SplitAll, SplitFamilies, SplitParticipants:
		return true
	}
	return false
}

// ParseSplitType converts a wire value into a SplitType.
func ParseSplitType(s string) (SplitType, error) {
	if s == "" {
		return SplitAll, nil
	}
	if t := SplitType(s); t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown split type %q", s)
}

// Category is a coarse expense classification.
type Category string

const (
	CategoryFood      Category = "food"
	CategoryTransport Category = "transport"
	CategoryLodging   Category = "lodging"
	CategoryTickets   Category = "tickets"
	CategoryShopping  Category = "shopping"
	CategoryOther     Category = "other"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryFood, CategoryTransport, CategoryLodging,
	CategoryTickets, CategoryShopping, CategoryOther,
}

// Expense is money fronted by one participant and shared by a split rule.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	TripID string

	// PayerID is the participant who paid.
	PayerID string

	// Amount is the price in Currency.
	Amount float64

	Currency string

	// ExchangeRate converts Currency into the trip's base currency.
	ExchangeRate float64

	// AmountInBase is Amount × ExchangeRate. It is the only amount the
	// settlement engine reads.
	AmountInBase float64

	Description string
	Category    Category

	// ExpenseDate is when the money was spent. Zero when unknown.
	ExpenseDate time.Time

	SplitType SplitType

	// TargetFamilyIDs is read only when SplitType is SplitFamilies.
	TargetFamilyIDs []string

	// TargetParticipantIDs is read only when SplitType is SplitParticipants.
	TargetParticipantIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccurredAt returns the time used to compare expenses: the expense date
// if set, else the creation time, else now.
func (e Expense) OccurredAt(now time.Time) time.Time {
	if !e.ExpenseDate.IsZero() {
		return e.ExpenseDate
	}
	if !e.CreatedAt.IsZero() {
		return e.CreatedAt
	}
	return now
}
