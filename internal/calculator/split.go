package calculator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mmynk/tripsplit/internal/models"
)

var (
	// ErrEmptySplit is returned when an expense resolves to no split targets.
	ErrEmptySplit = errors.New("expense has no split targets")
	// ErrUnknownSplitType is returned for a split type outside all/families/participants.
	ErrUnknownSplitType = errors.New("unknown split type")
	// ErrInvalidAmount is returned when an expense's base amount is NaN or infinite.
	ErrInvalidAmount = errors.New("expense amount is not a finite number")
)

// EmptySplitError lists expenses skipped because they resolved to no targets.
// It matches ErrEmptySplit with errors.Is.
type EmptySplitError struct {
	ExpenseIDs []string
}

func (e *EmptySplitError) Error() string {
	return fmt.Sprintf("%d expense(s) with no split targets: %s",
		len(e.ExpenseIDs), strings.Join(e.ExpenseIDs, ", "))
}

func (e *EmptySplitError) Is(target error) bool {
	return target == ErrEmptySplit
}

// InvalidAmountError lists expenses skipped because AmountInBase is not
// finite. It matches ErrInvalidAmount with errors.Is.
type InvalidAmountError struct {
	ExpenseIDs []string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%d expense(s) with a non-finite amount: %s",
		len(e.ExpenseIDs), strings.Join(e.ExpenseIDs, ", "))
}

func (e *InvalidAmountError) Is(target error) bool {
	return target == ErrInvalidAmount
}

// Roster is the participant and family list of one trip.
type Roster struct {
	Participants []models.Participant
	Families     []models.Family
}

// Members returns the IDs of participants whose FamilyID is familyID,
// in roster order.
func (r Roster) Members(familyID string) []string {
	var ids []string
	for _, p := range r.Participants {
		if p.HasFamily() && p.FamilyID == familyID {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// FamilyName returns the display name of a family, or the ID if unknown.
func (r Roster) FamilyName(familyID string) string {
	for _, f := range r.Families {
		if f.ID == familyID {
			return f.Name
		}
	}
	return familyID
}

// ParticipantName returns the display name of a participant, or the ID if unknown.
func (r Roster) ParticipantName(participantID string) string {
	for _, p := range r.Participants {
		if p.ID == participantID {
			return p.Name
		}
	}
	return participantID
}

// ResolveTargets returns the participant IDs that share an expense.
//
//   - all: every participant in the roster, payer included
//   - families: participants whose family is targeted; unaffiliated ones never match
//   - participants: TargetParticipantIDs verbatim, without a roster check
//
// An unknown split type resolves to no targets.
func ResolveTargets(expense models.Expense, roster Roster) []string {
	var targets []string
	switch expense.SplitType {
	case models.SplitAll:
		for _, p := range roster.Participants {
			targets = append(targets, p.ID)
		}
	case models.SplitFamilies:
		for _, p := range roster.Participants {
			if p.HasFamily() && slices.Contains(expense.TargetFamilyIDs, p.FamilyID) {
				targets = append(targets, p.ID)
			}
		}
	case models.SplitParticipants:
		targets = append(targets, expense.TargetParticipantIDs...)
	}
	return targets
}

// Share is one participant's portion of an expense.
type Share struct {
	ParticipantID string
	Amount        float64
}

// ExpenseSplit computes the itemized shares of one expense for display.
// Each share is rounded to cents independently, so the shares may differ
// from AmountInBase by up to half a cent per target.
func ExpenseSplit(expense models.Expense, roster Roster) ([]Share, error) {
	if !expense.SplitType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitType, expense.SplitType)
	}
	if !IsFinite(expense.AmountInBase) {
		return nil, fmt.Errorf("expense %s: %w", expense.ID, ErrInvalidAmount)
	}
	targets := ResolveTargets(expense, roster)
	if len(targets) == 0 {
		return nil, fmt.Errorf("expense %s: %w", expense.ID, ErrEmptySplit)
	}

	perPerson := expense.AmountInBase / float64(len(targets))
	shares := make([]Share, len(targets))
	for i, id := range targets {
		shares[i] = Share{ParticipantID: id, Amount: Round2(perPerson)}
	}
	return shares, nil
}
