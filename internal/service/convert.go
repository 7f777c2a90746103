package service

import (
	"time"

	"github.com/mmynk/tripsplit/internal/api"
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func toAPITrip(t *models.Trip) api.Trip {
	return api.Trip{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		BaseCurrency: t.BaseCurrency,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
	}
}

func toAPIParticipant(p models.Participant) api.Participant {
	return api.Participant{
		ID:       p.ID,
		Name:     p.Name,
		FamilyID: p.FamilyID,
		IsAdmin:  p.IsAdmin,
	}
}

func toAPIParticipants(participants []models.Participant) []api.Participant {
	out := make([]api.Participant, len(participants))
	for i, p := range participants {
		out[i] = toAPIParticipant(p)
	}
	return out
}

func toAPIFamily(f models.Family) api.Family {
	members := f.Members
	if members == nil {
		members = []string{}
	}
	return api.Family{ID: f.ID, Name: f.Name, MemberIDs: members}
}

func toAPIFamilies(families []models.Family) []api.Family {
	out := make([]api.Family, len(families))
	for i, f := range families {
		out[i] = toAPIFamily(f)
	}
	return out
}

func toAPIExpense(e models.Expense) api.Expense {
	return api.Expense{
		ID:                   e.ID,
		TripID:               e.TripID,
		PayerID:              e.PayerID,
		Amount:               e.Amount,
		Currency:             e.Currency,
		ExchangeRate:         e.ExchangeRate,
		AmountInBase:         e.AmountInBase,
		Description:          e.Description,
		Category:             string(e.Category),
		ExpenseDate:          e.ExpenseDate,
		SplitType:            string(e.SplitType),
		TargetFamilyIDs:      e.TargetFamilyIDs,
		TargetParticipantIDs: e.TargetParticipantIDs,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func toAPIExpenses(expenses []models.Expense) []api.Expense {
	out := make([]api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

// participantBalances lists roster participants in roster order, then any
// IDs outside the roster (unknown payers or targets) in ascending order.
func participantBalances(roster calculator.Roster, balances calculator.Balances) []api.Balance {
	out := make([]api.Balance, 0, len(balances))
	seen := make(map[string]bool, len(roster.Participants))
	for _, p := range roster.Participants {
		seen[p.ID] = true
		out = append(out, api.Balance{ID: p.ID, Name: p.Name, Amount: calculator.Round2(balances[p.ID])})
	}
	for _, id := range balances.IDs() {
		if !seen[id] {
			out = append(out, api.Balance{ID: id, Name: id, Amount: calculator.Round2(balances[id])})
		}
	}
	return out
}

// familyBalances lists families in roster order. Families with no members
// have no balance and are skipped.
func familyBalances(roster calculator.Roster, balances calculator.Balances) []api.Balance {
	out := make([]api.Balance, 0, len(balances))
	for _, f := range roster.Families {
		if b, ok := balances[f.ID]; ok {
			out = append(out, api.Balance{ID: f.ID, Name: f.Name, Amount: calculator.Round2(b)})
		}
	}
	return out
}

func unaffiliatedBalances(roster calculator.Roster, balances calculator.Balances) []api.Balance {
	out := make([]api.Balance, 0, len(balances))
	for _, id := range balances.IDs() {
		out = append(out, api.Balance{ID: id, Name: roster.ParticipantName(id), Amount: calculator.Round2(balances[id])})
	}
	return out
}

func toAPIValidation(v calculator.Validation) api.Validation {
	return api.Validation{Valid: v.Valid, Residual: calculator.Round2(v.Residual), Message: v.Message}
}

func toAPISettlements(roster calculator.Roster, settlements []calculator.Settlement) []api.Settlement {
	out := make([]api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = api.Settlement{
			FromFamilyID: s.FromFamily,
			FromFamily:   roster.FamilyName(s.FromFamily),
			ToFamilyID:   s.ToFamily,
			ToFamily:     roster.FamilyName(s.ToFamily),
			Amount:       s.Amount,
		}
	}
	return out
}
