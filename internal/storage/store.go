// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/tripsplit/internal/models"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a unique key is taken.
var ErrAlreadyExists = errors.New("already exists")

// Store defines the record store for trips and their contents.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateTrip persists a new trip. ID and CreatedAt are filled in when empty.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip by its ID.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTrips returns the trips created by a user, newest first.
	ListTrips(ctx context.Context, createdBy string) ([]*models.Trip, error)

	// DeleteTrip removes a trip with its participants, families and expenses.
	DeleteTrip(ctx context.Context, tripID string) error

	// AddParticipant adds a traveler to a trip. ID is filled in when empty.
	AddParticipant(ctx context.Context, participant *models.Participant) error

	// ListParticipants returns a trip's participants in insertion order.
	ListParticipants(ctx context.Context, tripID string) ([]models.Participant, error)

	// SetParticipantFamily moves a participant into a family.
	// An empty familyID makes the participant unaffiliated.
	SetParticipantFamily(ctx context.Context, tripID, participantID, familyID string) error

	// AddFamily adds a family to a trip and assigns its Members to it in one
	// transaction. ID is filled in when empty. An unknown member yields
	// ErrNotFound and leaves the trip unchanged.
	AddFamily(ctx context.Context, family *models.Family) error

	// ListFamilies returns a trip's families with Members derived from participants.
	ListFamilies(ctx context.Context, tripID string) ([]models.Family, error)

	// CreateExpense persists a new expense. ID and CreatedAt are filled in when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves one expense of a trip.
	GetExpense(ctx context.Context, tripID, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces an existing expense and sets UpdatedAt.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes one expense of a trip.
	DeleteExpense(ctx context.Context, tripID, expenseID string) error

	// ListExpenses returns a trip's expenses in creation order.
	ListExpenses(ctx context.Context, tripID string) ([]models.Expense, error)

	// CreateUser inserts a registered user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}

// LoadTrip reads a full trip snapshot from the store.
func LoadTrip(ctx context.Context, s Store, tripID string) (*models.TripData, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	participants, err := s.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	families, err := s.ListFamilies(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load families: %w", err)
	}
	expenses, err := s.ListExpenses(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return &models.TripData{
		Trip:         trip,
		Participants: participants,
		Families:     families,
		Expenses:     expenses,
	}, nil
}
