// Package models defines the core domain models for tripsplit.
//
// # Models
//
//   - Trip: a journey whose expenses are settled together, in one base currency
//   - Participant: a traveler on a trip, optionally belonging to a Family
//   - Family: a household whose members settle as a single unit
//   - Expense: money fronted by one participant and shared by a split rule
//   - User: a registered account that owns trips
//
// # Design Principles
//
//  1. Relationships are ID strings, never pointers (Participant.FamilyID, Expense.PayerID)
//  2. Family membership is owned by Participant.FamilyID; Family.Members is a projection
//  3. Amounts are float64 in the trip's base currency; rounding happens at the edges
package models
