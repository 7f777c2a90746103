package api

import "time"

// User is the public view of an account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// Trip is a shared-expense trip. Amounts on the trip settle in BaseCurrency.
type Trip struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	BaseCurrency string    `json:"baseCurrency"`
	StartDate    time.Time `json:"startDate,omitzero"`
	EndDate      time.Time `json:"endDate,omitzero"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}

// Participant is a traveler on a trip, optionally belonging to one family.
type Participant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FamilyID string `json:"familyId,omitempty"`
	IsAdmin  bool   `json:"isAdmin,omitempty"`
}

// Family groups participants for family-weighted splits. MemberIDs is
// derived from the participants' FamilyID.
type Family struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

// Expense is one payment by PayerID. AmountInBase is Amount converted at
// ExchangeRate into the trip's base currency.
type Expense struct {
	ID                   string    `json:"id"`
	TripID               string    `json:"tripId"`
	PayerID              string    `json:"payerId"`
	Amount               float64   `json:"amount"`
	Currency             string    `json:"currency"`
	ExchangeRate         float64   `json:"exchangeRate"`
	AmountInBase         float64   `json:"amountInBase"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	ExpenseDate          time.Time `json:"expenseDate,omitzero"`
	SplitType            string    `json:"splitType"`
	TargetFamilyIDs      []string  `json:"targetFamilyIds,omitempty"`
	TargetParticipantIDs []string  `json:"targetParticipantIds,omitempty"`
	CreatedAt            time.Time `json:"createdAt,omitzero"`
	UpdatedAt            time.Time `json:"updatedAt,omitzero"`
}

// Balance is a signed amount in base currency; positive means owed money.
type Balance struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Settlement struct {
	FromFamilyID string  `json:"fromFamilyId"`
	FromFamily   string  `json:"fromFamily"`
	ToFamilyID   string  `json:"toFamilyId"`
	ToFamily     string  `json:"toFamily"`
	Amount       float64 `json:"amount"`
}

type Validation struct {
	Valid    bool    `json:"valid"`
	Residual float64 `json:"residual"`
	Message  string  `json:"message"`
}

type Share struct {
	ParticipantID string  `json:"participantId"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
}

type DuplicatePair struct {
	First      Expense `json:"first"`
	Second     Expense `json:"second"`
	GapSeconds float64 `json:"gapSeconds"`
}

type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}
