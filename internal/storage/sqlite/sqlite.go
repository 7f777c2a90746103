// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Foreign keys are per connection, so enable them in the DSN
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateTrip persists a new trip to the database.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (id, name, description, base_currency, start_date, end_date, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.ID, trip.Name, trip.Description, trip.BaseCurrency,
		toMillis(trip.StartDate), toMillis(trip.EndDate), trip.CreatedBy, trip.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by ID.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, base_currency, start_date, end_date, created_by, created_at
		 FROM trips WHERE id = ?`,
		tripID,
	)
	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// ListTrips retrieves all trips created by a user, newest first.
func (s *SQLiteStore) ListTrips(ctx context.Context, createdBy string) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, base_currency, start_date, end_date, created_by, created_at
		 FROM trips WHERE created_by = ? ORDER BY created_at DESC, rowid DESC`,
		createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// DeleteTrip removes a trip; participants, families and expenses cascade.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, tripID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return expectAffected(res, "trip", tripID)
}

// AddParticipant adds a traveler to a trip.
func (s *SQLiteStore) AddParticipant(ctx context.Context, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO participants (id, trip_id, name, family_id, is_admin) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.TripID, p.Name, nullString(p.FamilyID), p.IsAdmin,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// ListParticipants returns a trip's participants in insertion order.
func (s *SQLiteStore) ListParticipants(ctx context.Context, tripID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, trip_id, name, family_id, is_admin FROM participants WHERE trip_id = ? ORDER BY rowid",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		var familyID sql.NullString
		if err := rows.Scan(&p.ID, &p.TripID, &p.Name, &familyID, &p.IsAdmin); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.FamilyID = familyID.String
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// SetParticipantFamily moves a participant into a family, or out of any family.
func (s *SQLiteStore) SetParticipantFamily(ctx context.Context, tripID, participantID, familyID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET family_id = ? WHERE trip_id = ? AND id = ?",
		nullString(familyID), tripID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant family: %w", err)
	}
	return expectAffected(res, "participant", participantID)
}

// AddFamily adds a family to a trip and moves its Members into it.
// Nothing is written unless every member exists in the trip.
func (s *SQLiteStore) AddFamily(ctx context.Context, f *models.Family) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO families (id, trip_id, name) VALUES (?, ?, ?)",
		f.ID, f.TripID, f.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}

	for _, memberID := range f.Members {
		res, err := tx.ExecContext(ctx,
			"UPDATE participants SET family_id = ? WHERE trip_id = ? AND id = ?",
			f.ID, f.TripID, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to update participant family: %w", err)
		}
		if err := expectAffected(res, "participant", memberID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit family: %w", err)
	}
	return nil
}

// ListFamilies returns a trip's families with their member projection.
func (s *SQLiteStore) ListFamilies(ctx context.Context, tripID string) ([]models.Family, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, trip_id, name FROM families WHERE trip_id = ? ORDER BY rowid",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	index := make(map[string]int)
	for rows.Next() {
		var f models.Family
		if err := rows.Scan(&f.ID, &f.TripID, &f.Name); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		index[f.ID] = len(families)
		families = append(families, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate families: %w", err)
	}

	// Members come from participants.family_id
	memberRows, err := s.db.QueryContext(ctx,
		"SELECT id, family_id FROM participants WHERE trip_id = ? AND family_id IS NOT NULL ORDER BY rowid",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var participantID, familyID string
		if err := memberRows.Scan(&participantID, &familyID); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		if i, ok := index[familyID]; ok {
			families[i].Members = append(families[i].Members, participantID)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family members: %w", err)
	}
	return families, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(row scanner) (*models.Trip, error) {
	trip := &models.Trip{}
	var start, end sql.NullInt64
	var createdAt int64
	if err := row.Scan(&trip.ID, &trip.Name, &trip.Description, &trip.BaseCurrency,
		&start, &end, &trip.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	trip.StartDate = fromMillis(start)
	trip.EndDate = fromMillis(end)
	trip.CreatedAt = time.UnixMilli(createdAt)
	return trip, nil
}

// toMillis stores zero times as NULL.
func toMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

func fromMillis(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMilli(v.Int64)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func expectAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
