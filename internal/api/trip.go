package api

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
)

// TripServiceName is the fully-qualified name of the TripService.
const TripServiceName = "tripsplit.v1.TripService"

const (
	TripServiceCreateTripProcedure     = "/tripsplit.v1.TripService/CreateTrip"
	TripServiceGetTripProcedure        = "/tripsplit.v1.TripService/GetTrip"
	TripServiceListTripsProcedure      = "/tripsplit.v1.TripService/ListTrips"
	TripServiceDeleteTripProcedure     = "/tripsplit.v1.TripService/DeleteTrip"
	TripServiceAddParticipantProcedure = "/tripsplit.v1.TripService/AddParticipant"
	TripServiceAddFamilyProcedure      = "/tripsplit.v1.TripService/AddFamily"
	TripServiceAssignFamilyProcedure   = "/tripsplit.v1.TripService/AssignFamily"
)

type CreateTripRequest struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	BaseCurrency string    `json:"baseCurrency,omitempty"`
	StartDate    time.Time `json:"startDate,omitzero"`
	EndDate      time.Time `json:"endDate,omitzero"`
	// JoinAsName adds the caller as an admin participant under this name.
	JoinAsName string `json:"joinAsName,omitempty"`
}

type CreateTripResponse struct {
	Trip         Trip          `json:"trip"`
	Participants []Participant `json:"participants"`
}

type GetTripRequest struct {
	TripID string `json:"tripId"`
}

type GetTripResponse struct {
	Trip         Trip          `json:"trip"`
	Participants []Participant `json:"participants"`
	Families     []Family      `json:"families"`
	Expenses     []Expense     `json:"expenses"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []Trip `json:"trips"`
}

type DeleteTripRequest struct {
	TripID string `json:"tripId"`
}

type DeleteTripResponse struct{}

type AddParticipantRequest struct {
	TripID   string `json:"tripId"`
	Name     string `json:"name"`
	FamilyID string `json:"familyId,omitempty"`
}

type AddParticipantResponse struct {
	Participant Participant `json:"participant"`
}

type AddFamilyRequest struct {
	TripID    string   `json:"tripId"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds,omitempty"`
}

type AddFamilyResponse struct {
	Family Family `json:"family"`
}

// AssignFamilyRequest moves a participant into a family. An empty
// FamilyID makes the participant unaffiliated.
type AssignFamilyRequest struct {
	TripID        string `json:"tripId"`
	ParticipantID string `json:"participantId"`
	FamilyID      string `json:"familyId"`
}

type AssignFamilyResponse struct {
	Participant Participant `json:"participant"`
}

// TripServiceHandler is implemented by the server side of the TripService.
type TripServiceHandler interface {
	CreateTrip(context.Context, *connect.Request[CreateTripRequest]) (*connect.Response[CreateTripResponse], error)
	GetTrip(context.Context, *connect.Request[GetTripRequest]) (*connect.Response[GetTripResponse], error)
	ListTrips(context.Context, *connect.Request[ListTripsRequest]) (*connect.Response[ListTripsResponse], error)
	DeleteTrip(context.Context, *connect.Request[DeleteTripRequest]) (*connect.Response[DeleteTripResponse], error)
	AddParticipant(context.Context, *connect.Request[AddParticipantRequest]) (*connect.Response[AddParticipantResponse], error)
	AddFamily(context.Context, *connect.Request[AddFamilyRequest]) (*connect.Response[AddFamilyResponse], error)
	AssignFamily(context.Context, *connect.Request[AssignFamilyRequest]) (*connect.Response[AssignFamilyResponse], error)
}

// NewTripServiceHandler builds an HTTP handler from the service implementation.
func NewTripServiceHandler(svc TripServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + TripServiceName + "/", router(map[string]http.Handler{
		TripServiceCreateTripProcedure:     unary(TripServiceCreateTripProcedure, svc.CreateTrip, opts),
		TripServiceGetTripProcedure:        unary(TripServiceGetTripProcedure, svc.GetTrip, opts),
		TripServiceListTripsProcedure:      unary(TripServiceListTripsProcedure, svc.ListTrips, opts),
		TripServiceDeleteTripProcedure:     unary(TripServiceDeleteTripProcedure, svc.DeleteTrip, opts),
		TripServiceAddParticipantProcedure: unary(TripServiceAddParticipantProcedure, svc.AddParticipant, opts),
		TripServiceAddFamilyProcedure:      unary(TripServiceAddFamilyProcedure, svc.AddFamily, opts),
		TripServiceAssignFamilyProcedure:   unary(TripServiceAssignFamilyProcedure, svc.AssignFamily, opts),
	})
}

// TripServiceClient is a client for the TripService.
type TripServiceClient struct {
	createTrip     *connect.Client[CreateTripRequest, CreateTripResponse]
	getTrip        *connect.Client[GetTripRequest, GetTripResponse]
	listTrips      *connect.Client[ListTripsRequest, ListTripsResponse]
	deleteTrip     *connect.Client[DeleteTripRequest, DeleteTripResponse]
	addParticipant *connect.Client[AddParticipantRequest, AddParticipantResponse]
	addFamily      *connect.Client[AddFamilyRequest, AddFamilyResponse]
	assignFamily   *connect.Client[AssignFamilyRequest, AssignFamilyResponse]
}

// NewTripServiceClient constructs a client for the TripService at baseURL.
func NewTripServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TripServiceClient {
	return &TripServiceClient{
		createTrip:     newClient[CreateTripRequest, CreateTripResponse](httpClient, baseURL, TripServiceCreateTripProcedure, opts),
		getTrip:        newClient[GetTripRequest, GetTripResponse](httpClient, baseURL, TripServiceGetTripProcedure, opts),
		listTrips:      newClient[ListTripsRequest, ListTripsResponse](httpClient, baseURL, TripServiceListTripsProcedure, opts),
		deleteTrip:     newClient[DeleteTripRequest, DeleteTripResponse](httpClient, baseURL, TripServiceDeleteTripProcedure, opts),
		addParticipant: newClient[AddParticipantRequest, AddParticipantResponse](httpClient, baseURL, TripServiceAddParticipantProcedure, opts),
		addFamily:      newClient[AddFamilyRequest, AddFamilyResponse](httpClient, baseURL, TripServiceAddFamilyProcedure, opts),
		assignFamily:   newClient[AssignFamilyRequest, AssignFamilyResponse](httpClient, baseURL, TripServiceAssignFamilyProcedure, opts),
	}
}

func (c *TripServiceClient) CreateTrip(ctx context.Context, req *connect.Request[CreateTripRequest]) (*connect.Response[CreateTripResponse], error) {
	return c.createTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetTrip(ctx context.Context, req *connect.Request[GetTripRequest]) (*connect.Response[GetTripResponse], error) {
	return c.getTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) ListTrips(ctx context.Context, req *connect.Request[ListTripsRequest]) (*connect.Response[ListTripsResponse], error) {
	return c.listTrips.CallUnary(ctx, req)
}

func (c *TripServiceClient) DeleteTrip(ctx context.Context, req *connect.Request[DeleteTripRequest]) (*connect.Response[DeleteTripResponse], error) {
	return c.deleteTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddParticipant(ctx context.Context, req *connect.Request[AddParticipantRequest]) (*connect.Response[AddParticipantResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddFamily(ctx context.Context, req *connect.Request[AddFamilyRequest]) (*connect.Response[AddFamilyResponse], error) {
	return c.addFamily.CallUnary(ctx, req)
}

func (c *TripServiceClient) AssignFamily(ctx context.Context, req *connect.Request[AssignFamilyRequest]) (*connect.Response[AssignFamilyResponse], error) {
	return c.assignFamily.CallUnary(ctx, req)
}
