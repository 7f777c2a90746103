package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/api"
	"github.com/mmynk/tripsplit/internal/currency"
	"github.com/mmynk/tripsplit/internal/middleware"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

var _ api.TripServiceHandler = (*TripService)(nil)

// TripService manages trips and their rosters.
type TripService struct {
	store        storage.Store
	baseCurrency string
	logger       *slog.Logger
}

// NewTripService creates a TripService. baseCurrency applies to trips
// created without one.
func NewTripService(store storage.Store, baseCurrency string, logger *slog.Logger) *TripService {
	return &TripService{
		store:        store,
		baseCurrency: currency.Normalize(baseCurrency),
		logger:       logger,
	}
}

// validCurrencyCode accepts three ASCII letters.
func validCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// CreateTrip creates a trip owned by the caller. When JoinAsName is set the
// caller also joins as an admin participant.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	s.logger.Info("CreateTrip request received", "name", req.Msg.Name, "user_id", userID)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("trip name is required")
	}
	base := currency.Normalize(req.Msg.BaseCurrency)
	if base == "" {
		base = s.baseCurrency
	}
	if !validCurrencyCode(base) {
		return nil, invalidArgument("invalid base currency %q", req.Msg.BaseCurrency)
	}
	if !req.Msg.StartDate.IsZero() && !req.Msg.EndDate.IsZero() && req.Msg.EndDate.Before(req.Msg.StartDate) {
		return nil, invalidArgument("end date is before start date")
	}

	trip := &models.Trip{
		Name:         name,
		Description:  strings.TrimSpace(req.Msg.Description),
		BaseCurrency: base,
		StartDate:    req.Msg.StartDate,
		EndDate:      req.Msg.EndDate,
		CreatedBy:    userID,
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		s.logger.Error("CreateTrip failed", "error", err)
		return nil, connectError(err)
	}

	participants := []api.Participant{}
	if joinAs := strings.TrimSpace(req.Msg.JoinAsName); joinAs != "" {
		p := &models.Participant{TripID: trip.ID, Name: joinAs, IsAdmin: true}
		if err := s.store.AddParticipant(ctx, p); err != nil {
			s.logger.Error("CreateTrip failed to add creator", "trip_id", trip.ID, "error", err)
			return nil, connectError(err)
		}
		participants = append(participants, toAPIParticipant(*p))
	}

	s.logger.Info("Trip created", "trip_id", trip.ID, "base_currency", trip.BaseCurrency)

	return connect.NewResponse(&api.CreateTripResponse{
		Trip:         toAPITrip(trip),
		Participants: participants,
	}), nil
}

// GetTrip returns a trip with its roster and expenses.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	s.logger.Info("GetTrip request received", "trip_id", req.Msg.TripID)

	data, err := storage.LoadTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		s.logger.Error("GetTrip failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetTripResponse{
		Trip:         toAPITrip(data.Trip),
		Participants: toAPIParticipants(data.Participants),
		Families:     toAPIFamilies(data.Families),
		Expenses:     toAPIExpenses(data.Expenses),
	}), nil
}

// ListTrips returns the trips created by the caller, newest first.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	trips, err := s.store.ListTrips(ctx, userID)
	if err != nil {
		s.logger.Error("ListTrips failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	out := make([]api.Trip, len(trips))
	for i, t := range trips {
		out[i] = toAPITrip(t)
	}

	s.logger.Debug("ListTrips", "user_id", userID, "count", len(out))
	return connect.NewResponse(&api.ListTripsResponse{Trips: out}), nil
}

// DeleteTrip removes a trip and everything recorded on it.
func (s *TripService) DeleteTrip(ctx context.Context, req *connect.Request[api.DeleteTripRequest]) (*connect.Response[api.DeleteTripResponse], error) {
	s.logger.Info("DeleteTrip request received", "trip_id", req.Msg.TripID)

	if err := s.store.DeleteTrip(ctx, req.Msg.TripID); err != nil {
		s.logger.Error("DeleteTrip failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Trip deleted", "trip_id", req.Msg.TripID)
	return connect.NewResponse(&api.DeleteTripResponse{}), nil
}

// AddParticipant adds a traveler. Names are unique within a trip, ignoring case.
func (s *TripService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	s.logger.Info("AddParticipant request received", "trip_id", req.Msg.TripID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("participant name is required")
	}

	data, err := storage.LoadTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		s.logger.Error("AddParticipant failed to load trip", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}
	for _, p := range data.Participants {
		if strings.EqualFold(p.Name, name) {
			return nil, connect.NewError(connect.CodeAlreadyExists, fmt.Errorf("participant %q already on this trip", name))
		}
	}
	if req.Msg.FamilyID != "" && !hasFamily(data.Families, req.Msg.FamilyID) {
		return nil, invalidArgument("family %s is not on this trip", req.Msg.FamilyID)
	}

	p := &models.Participant{TripID: req.Msg.TripID, Name: name, FamilyID: req.Msg.FamilyID}
	if err := s.store.AddParticipant(ctx, p); err != nil {
		s.logger.Error("AddParticipant failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Participant added", "trip_id", p.TripID, "participant_id", p.ID)
	return connect.NewResponse(&api.AddParticipantResponse{Participant: toAPIParticipant(*p)}), nil
}

// AddFamily creates a family and moves MemberIDs into it.
func (s *TripService) AddFamily(ctx context.Context, req *connect.Request[api.AddFamilyRequest]) (*connect.Response[api.AddFamilyResponse], error) {
	s.logger.Info("AddFamily request received",
		"trip_id", req.Msg.TripID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("family name is required")
	}

	data, err := storage.LoadTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		s.logger.Error("AddFamily failed to load trip", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}
	var members []string
	seen := make(map[string]bool, len(req.Msg.MemberIDs))
	for _, id := range req.Msg.MemberIDs {
		if seen[id] {
			continue
		}
		if !hasParticipant(data.Participants, id) {
			return nil, invalidArgument("participant %s is not on this trip", id)
		}
		seen[id] = true
		members = append(members, id)
	}

	family := &models.Family{TripID: req.Msg.TripID, Name: name, Members: members}
	if err := s.store.AddFamily(ctx, family); err != nil {
		s.logger.Error("AddFamily failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Family created", "trip_id", family.TripID, "family_id", family.ID)
	return connect.NewResponse(&api.AddFamilyResponse{Family: toAPIFamily(*family)}), nil
}

// AssignFamily moves a participant into a family, or out of any family
// when FamilyID is empty.
func (s *TripService) AssignFamily(ctx context.Context, req *connect.Request[api.AssignFamilyRequest]) (*connect.Response[api.AssignFamilyResponse], error) {
	s.logger.Info("AssignFamily request received",
		"trip_id", req.Msg.TripID,
		"participant_id", req.Msg.ParticipantID,
		"family_id", req.Msg.FamilyID,
	)

	data, err := storage.LoadTrip(ctx, s.store, req.Msg.TripID)
	if err != nil {
		s.logger.Error("AssignFamily failed to load trip", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}
	if req.Msg.FamilyID != "" && !hasFamily(data.Families, req.Msg.FamilyID) {
		return nil, invalidArgument("family %s is not on this trip", req.Msg.FamilyID)
	}

	if err := s.store.SetParticipantFamily(ctx, req.Msg.TripID, req.Msg.ParticipantID, req.Msg.FamilyID); err != nil {
		s.logger.Error("AssignFamily failed", "participant_id", req.Msg.ParticipantID, "error", err)
		return nil, connectError(err)
	}

	var updated models.Participant
	for _, p := range data.Participants {
		if p.ID == req.Msg.ParticipantID {
			updated = p
		}
	}
	updated.FamilyID = req.Msg.FamilyID

	return connect.NewResponse(&api.AssignFamilyResponse{Participant: toAPIParticipant(updated)}), nil
}

func hasFamily(families []models.Family, id string) bool {
	for _, f := range families {
		if f.ID == id {
			return true
		}
	}
	return false
}

func hasParticipant(participants []models.Participant, id string) bool {
	for _, p := range participants {
		if p.ID == id {
			return true
		}
	}
	return false
}
