package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/api"
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/metrics"
	"github.com/mmynk/tripsplit/internal/storage"
)

var _ api.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService computes balances and the family settlement plan.
type SettlementService struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSettlementService creates a SettlementService; m may be nil.
func NewSettlementService(store storage.Store, m *metrics.Metrics, logger *slog.Logger) *SettlementService {
	return &SettlementService{store: store, metrics: m, logger: logger}
}

// summarize loads a trip and runs the settlement pipeline over it.
func (s *SettlementService) summarize(ctx context.Context, tripID string) (string, calculator.Roster, calculator.Summary, error) {
	data, err := storage.LoadTrip(ctx, s.store, tripID)
	if err != nil {
		return "", calculator.Roster{}, calculator.Summary{}, err
	}

	roster := calculator.Roster{Participants: data.Participants, Families: data.Families}
	summary := calculator.Summarize(roster, data.Expenses)

	if n := len(summary.EmptySplitExpenseIDs); n > 0 {
		s.metrics.EmptySplits(n)
		s.logger.Warn("Skipped expenses with no split targets",
			"trip_id", tripID,
			"expense_ids", summary.EmptySplitExpenseIDs,
		)
	}
	if n := len(summary.InvalidAmountExpenseIDs); n > 0 {
		s.logger.Warn("Skipped expenses with a non-finite amount",
			"trip_id", tripID,
			"expense_ids", summary.InvalidAmountExpenseIDs,
		)
	}
	if !summary.Validation.Valid {
		s.logger.Warn("Balances do not sum to zero",
			"trip_id", tripID,
			"residual", summary.Validation.Residual,
		)
	}
	return data.Trip.BaseCurrency, roster, summary, nil
}

// GetBalances returns participant and family balances with a zero-sum check.
func (s *SettlementService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	s.logger.Info("GetBalances request received", "trip_id", req.Msg.TripID)

	base, roster, summary, err := s.summarize(ctx, req.Msg.TripID)
	if err != nil {
		s.logger.Error("GetBalances failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetBalancesResponse{
		BaseCurrency:            base,
		ParticipantBalances:     participantBalances(roster, summary.ParticipantBalances),
		FamilyBalances:          familyBalances(roster, summary.FamilyBalances),
		Validation:              toAPIValidation(summary.Validation),
		EmptySplitExpenseIDs:    summary.EmptySplitExpenseIDs,
		InvalidAmountExpenseIDs: summary.InvalidAmountExpenseIDs,
	}), nil
}

// GetSettlements returns the transfers that settle all family balances.
func (s *SettlementService) GetSettlements(ctx context.Context, req *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error) {
	s.logger.Info("GetSettlements request received", "trip_id", req.Msg.TripID)

	base, roster, summary, err := s.summarize(ctx, req.Msg.TripID)
	if err != nil {
		s.logger.Error("GetSettlements failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}
	s.metrics.SettlementTransfers(len(summary.Settlements))

	s.logger.Info("Settlements computed",
		"trip_id", req.Msg.TripID,
		"transfers", len(summary.Settlements),
		"total_to_transfer", calculator.Round2(summary.TotalToTransfer),
	)

	return connect.NewResponse(&api.GetSettlementsResponse{
		BaseCurrency:            base,
		Settlements:             toAPISettlements(roster, summary.Settlements),
		ParticipantBalances:     participantBalances(roster, summary.ParticipantBalances),
		FamilyBalances:          familyBalances(roster, summary.FamilyBalances),
		UnaffiliatedBalances:    unaffiliatedBalances(roster, summary.UnaffiliatedBalances),
		Validation:              toAPIValidation(summary.Validation),
		TotalSpent:              calculator.Round2(summary.TotalSpent),
		TotalToTransfer:         calculator.Round2(summary.TotalToTransfer),
		EmptySplitExpenseIDs:    summary.EmptySplitExpenseIDs,
		InvalidAmountExpenseIDs: summary.InvalidAmountExpenseIDs,
	}), nil
}
