package models

// Participant is one traveler on a trip.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	TripID string

	Name string

	// FamilyID references the Family this participant settles with.
	// Empty means the participant is unaffiliated and settles outside
	// the family mechanism.
	FamilyID string

	// IsAdmin marks the trip creator.
	IsAdmin bool
}

// HasFamily reports whether the participant belongs to a family.
func (p Participant) HasFamily() bool {
	return p.FamilyID != ""
}

// Family is a household whose members' balances are settled as one unit.
type Family struct {
	// ID is the unique identifier for the family (UUID format).
	ID string

	TripID string

	// Name is the display name of the family (e.g., "The Wangs").
	Name string

	// Members lists the IDs of participants whose FamilyID points here.
	// It is derived from participants and never written back.
	Members []string
}
