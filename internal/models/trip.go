package models

import "time"

// Trip groups participants, families and expenses that are settled together.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Kyoto 2026").
	Name string

	Description string

	// BaseCurrency is the ISO 4217 code all settlement math is done in.
	BaseCurrency string

	StartDate time.Time
	EndDate   time.Time

	// CreatedBy is the user ID that created the trip.
	CreatedBy string

	CreatedAt time.Time
}

// TripData is a full snapshot of one trip, as loaded from the record store.
type TripData struct {
	Trip         *Trip
	Participants []Participant
	Families     []Family
	Expenses     []Expense
}
