package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

const (
	targetFamily      = "family"
	targetParticipant = "participant"
)

const expenseColumns = `id, trip_id, payer_id, amount, currency, exchange_rate, amount_in_base,
	description, category, expense_date, split_type, created_at, updated_at`

// CreateExpense persists a new expense with its split targets.
func (s *SQLiteStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TripID, e.PayerID, e.Amount, e.Currency, e.ExchangeRate, e.AmountInBase,
		e.Description, string(e.Category), toMillis(e.ExpenseDate), string(e.SplitType),
		e.CreatedAt.UnixMilli(), toMillis(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertTargets(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves one expense of a trip with its targets.
func (s *SQLiteStore) GetExpense(ctx context.Context, tripID, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE trip_id = ? AND id = ?`,
		tripID, expenseID,
	)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	targets, err := s.loadTargets(ctx, "WHERE expense_id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	applyTargets(e, targets[e.ID])
	return e, nil
}

// UpdateExpense replaces an expense and its targets, stamping UpdatedAt.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, e *models.Expense) error {
	e.UpdatedAt = time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET payer_id = ?, amount = ?, currency = ?, exchange_rate = ?,
		 amount_in_base = ?, description = ?, category = ?, expense_date = ?, split_type = ?, updated_at = ?
		 WHERE trip_id = ? AND id = ?`,
		e.PayerID, e.Amount, e.Currency, e.ExchangeRate, e.AmountInBase,
		e.Description, string(e.Category), toMillis(e.ExpenseDate), string(e.SplitType),
		e.UpdatedAt.UnixMilli(), e.TripID, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := expectAffected(res, "expense", e.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_targets WHERE expense_id = ?", e.ID); err != nil {
		return fmt.Errorf("failed to clear expense targets: %w", err)
	}
	if err := insertTargets(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes one expense; its targets cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, tripID, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE trip_id = ? AND id = ?", tripID, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectAffected(res, "expense", expenseID)
}

// ListExpenses returns a trip's expenses in creation order.
func (s *SQLiteStore) ListExpenses(ctx context.Context, tripID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE trip_id = ? ORDER BY created_at, rowid`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	targets, err := s.loadTargets(ctx,
		"WHERE expense_id IN (SELECT id FROM expenses WHERE trip_id = ?)", tripID)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		applyTargets(&expenses[i], targets[expenses[i].ID])
	}
	return expenses, nil
}

type target struct {
	kind string
	id   string
}

func insertTargets(ctx context.Context, tx *sql.Tx, e *models.Expense) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO expense_targets (expense_id, kind, target_id, position) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare target insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range e.TargetFamilyIDs {
		if _, err := stmt.ExecContext(ctx, e.ID, targetFamily, id, i); err != nil {
			return fmt.Errorf("failed to insert family target: %w", err)
		}
	}
	for i, id := range e.TargetParticipantIDs {
		if _, err := stmt.ExecContext(ctx, e.ID, targetParticipant, id, i); err != nil {
			return fmt.Errorf("failed to insert participant target: %w", err)
		}
	}
	return nil
}

// loadTargets groups targets by expense ID, each list in stored position order.
func (s *SQLiteStore) loadTargets(ctx context.Context, where string, args ...any) (map[string][]target, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, kind, target_id FROM expense_targets "+where+" ORDER BY expense_id, kind, position",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense targets: %w", err)
	}
	defer rows.Close()

	targets := make(map[string][]target)
	for rows.Next() {
		var expenseID string
		var t target
		if err := rows.Scan(&expenseID, &t.kind, &t.id); err != nil {
			return nil, fmt.Errorf("failed to scan expense target: %w", err)
		}
		targets[expenseID] = append(targets[expenseID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense targets: %w", err)
	}
	return targets, nil
}

func applyTargets(e *models.Expense, targets []target) {
	for _, t := range targets {
		switch t.kind {
		case targetFamily:
			e.TargetFamilyIDs = append(e.TargetFamilyIDs, t.id)
		case targetParticipant:
			e.TargetParticipantIDs = append(e.TargetParticipantIDs, t.id)
		}
	}
}

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	var category, splitType string
	var expenseDate, updatedAt sql.NullInt64
	var createdAt int64
	if err := row.Scan(&e.ID, &e.TripID, &e.PayerID, &e.Amount, &e.Currency, &e.ExchangeRate,
		&e.AmountInBase, &e.Description, &category, &expenseDate, &splitType,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Category = models.Category(category)
	e.SplitType = models.SplitType(splitType)
	e.ExpenseDate = fromMillis(expenseDate)
	e.CreatedAt = time.UnixMilli(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return e, nil
}
