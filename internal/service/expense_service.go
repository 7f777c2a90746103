package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/api"
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/currency"
	"github.com/mmynk/tripsplit/internal/metrics"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService records expenses and answers per-expense questions.
type ExpenseService struct {
	store   storage.Store
	rates   currency.RateSource
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewExpenseService creates an ExpenseService. rates resolves exchange
// rates for expenses submitted without one; m may be nil.
func NewExpenseService(store storage.Store, rates currency.RateSource, m *metrics.Metrics, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{
		store:   store,
		rates:   rates,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// buildExpense validates input against the trip and fills in currency,
// rate and base amount.
func (s *ExpenseService) buildExpense(ctx context.Context, data *models.TripData, in api.ExpenseInput) (*models.Expense, error) {
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return nil, invalidArgument("amount must be positive")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, invalidArgument("description is required")
	}
	if !hasParticipant(data.Participants, in.PayerID) {
		return nil, invalidArgument("payer %q is not on this trip", in.PayerID)
	}

	splitType, err := models.ParseSplitType(in.SplitType)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %v", calculator.ErrUnknownSplitType, err))
	}
	switch splitType {
	case models.SplitFamilies:
		if len(in.TargetFamilyIDs) == 0 {
			return nil, invalidArgument("families split needs at least one target family")
		}
		for _, id := range in.TargetFamilyIDs {
			if !hasFamily(data.Families, id) {
				return nil, invalidArgument("family %s is not on this trip", id)
			}
		}
	case models.SplitParticipants:
		if len(in.TargetParticipantIDs) == 0 {
			return nil, invalidArgument("participants split needs at least one target participant")
		}
		for _, id := range in.TargetParticipantIDs {
			if !hasParticipant(data.Participants, id) {
				return nil, invalidArgument("participant %s is not on this trip", id)
			}
		}
	}

	category := models.Category(strings.ToLower(strings.TrimSpace(in.Category)))
	if category == "" {
		category = models.CategoryOther
	}
	if !slices.Contains(models.Categories, category) {
		return nil, invalidArgument("unknown category %q", in.Category)
	}

	base := data.Trip.BaseCurrency
	code := currency.Normalize(in.Currency)
	if code == "" {
		code = base
	}
	if !validCurrencyCode(code) {
		return nil, invalidArgument("invalid currency %q", in.Currency)
	}

	rate := in.ExchangeRate
	switch {
	case math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0:
		return nil, invalidArgument("exchange rate must be positive")
	case rate == 0 && code == base:
		rate = 1
	case rate == 0:
		rate, err = s.rates.Rate(ctx, code, base)
		if err != nil {
			return nil, fmt.Errorf("look up %s to %s rate: %w", code, base, err)
		}
	}

	amountInBase := in.Amount * rate
	if !calculator.IsFinite(amountInBase) || amountInBase <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("%w: %g %s at rate %g", calculator.ErrInvalidAmount, in.Amount, code, rate))
	}

	e := &models.Expense{
		TripID:       data.Trip.ID,
		PayerID:      in.PayerID,
		Amount:       in.Amount,
		Currency:     code,
		ExchangeRate: rate,
		AmountInBase: amountInBase,
		Description:  description,
		Category:     category,
		ExpenseDate:  in.ExpenseDate,
		SplitType:    splitType,
	}
	// Only the list matching the split type is stored
	switch splitType {
	case models.SplitFamilies:
		e.TargetFamilyIDs = in.TargetFamilyIDs
	case models.SplitParticipants:
		e.TargetParticipantIDs = in.TargetParticipantIDs
	}
	return e, nil
}

// AddExpense records an expense. A likely duplicate of an existing expense
// is reported in the response but never blocks the write.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	s.logger.Info("AddExpense request received",
		"trip_id", req.Msg.TripID,
		"payer_id", req.Msg.PayerID,
		"amount", req.Msg.Amount,
		"currency", req.Msg.Currency,
	)

	data, err := storage.LoadTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		s.logger.Error("AddExpense failed to load trip", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	expense, err := s.buildExpense(ctx, data, req.Msg.ExpenseInput)
	if err != nil {
		s.logger.Error("AddExpense validation failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	now := s.now()
	expense.CreatedAt = now
	duplicate, isDuplicate := calculator.FindDuplicate(data.Expenses, *expense, now)

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("AddExpense failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	resp := &api.AddExpenseResponse{Expense: toAPIExpense(*expense)}
	if isDuplicate {
		s.metrics.DuplicateWarning()
		s.logger.Warn("Possible duplicate expense",
			"trip_id", expense.TripID,
			"expense_id", expense.ID,
			"duplicate_of", duplicate.ID,
		)
		dup := toAPIExpense(duplicate)
		resp.Duplicate = &dup
		resp.Warning = fmt.Sprintf("looks like %q recorded at %s", duplicate.Description,
			duplicate.OccurredAt(now).Format(time.RFC3339))
	}

	s.logger.Info("Expense added", "trip_id", expense.TripID, "expense_id", expense.ID, "amount_in_base", expense.AmountInBase)
	return connect.NewResponse(resp), nil
}

// UpdateExpense replaces the editable fields of an expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	s.logger.Info("UpdateExpense request received", "trip_id", req.Msg.TripID, "expense_id", req.Msg.ExpenseID)

	existing, err := s.store.GetExpense(ctx, req.Msg.TripID, req.Msg.ExpenseID)
	if err != nil {
		s.logger.Error("UpdateExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, connectError(err)
	}
	data, err := storage.LoadTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		s.logger.Error("UpdateExpense failed to load trip", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	expense, err := s.buildExpense(ctx, data, req.Msg.ExpenseInput)
	if err != nil {
		s.logger.Error("UpdateExpense validation failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, connectError(err)
	}
	expense.ID = existing.ID
	expense.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		s.logger.Error("UpdateExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Expense updated", "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(*expense)}), nil
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	s.logger.Info("DeleteExpense request received", "trip_id", req.Msg.TripID, "expense_id", req.Msg.ExpenseID)

	if err := s.store.DeleteExpense(ctx, req.Msg.TripID, req.Msg.ExpenseID); err != nil {
		s.logger.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns a trip's expenses in creation order.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if _, err := s.store.GetTrip(ctx, req.Msg.TripID); err != nil {
		s.logger.Error("ListExpenses failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	expenses, err := s.store.ListExpenses(ctx, req.Msg.TripID)
	if err != nil {
		s.logger.Error("ListExpenses failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// GetExpenseSplit returns the per-participant shares of one expense.
func (s *ExpenseService) GetExpenseSplit(ctx context.Context, req *connect.Request[api.GetExpenseSplitRequest]) (*connect.Response[api.GetExpenseSplitResponse], error) {
	data, err := storage.LoadTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		s.logger.Error("GetExpenseSplit failed to load trip", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	idx := slices.IndexFunc(data.Expenses, func(e models.Expense) bool { return e.ID == req.Msg.ExpenseID })
	if idx < 0 {
		return nil, connectError(fmt.Errorf("expense %s: %w", req.Msg.ExpenseID, storage.ErrNotFound))
	}

	roster := calculator.Roster{Participants: data.Participants, Families: data.Families}
	shares, err := calculator.ExpenseSplit(data.Expenses[idx], roster)
	if err != nil {
		if errors.Is(err, calculator.ErrEmptySplit) {
			s.metrics.EmptySplits(1)
			s.logger.Warn("Expense has no split targets", "expense_id", req.Msg.ExpenseID)
		}
		return nil, connectError(err)
	}

	out := make([]api.Share, len(shares))
	for i, sh := range shares {
		out[i] = api.Share{ParticipantID: sh.ParticipantID, Name: roster.ParticipantName(sh.ParticipantID), Amount: sh.Amount}
	}
	return connect.NewResponse(&api.GetExpenseSplitResponse{ExpenseID: req.Msg.ExpenseID, Shares: out}), nil
}

// ListDuplicates returns every pair of expenses on the trip that look like
// the same entry.
func (s *ExpenseService) ListDuplicates(ctx context.Context, req *connect.Request[api.ListDuplicatesRequest]) (*connect.Response[api.ListDuplicatesResponse], error) {
	if _, err := s.store.GetTrip(ctx, req.Msg.TripID); err != nil {
		s.logger.Error("ListDuplicates failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}
	expenses, err := s.store.ListExpenses(ctx, req.Msg.TripID)
	if err != nil {
		s.logger.Error("ListDuplicates failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	pairs := calculator.DetectDuplicates(expenses, s.now())
	out := make([]api.DuplicatePair, len(pairs))
	for i, p := range pairs {
		out[i] = api.DuplicatePair{
			First:      toAPIExpense(p.First),
			Second:     toAPIExpense(p.Second),
			GapSeconds: p.Gap.Seconds(),
		}
	}
	return connect.NewResponse(&api.ListDuplicatesResponse{Pairs: out}), nil
}
