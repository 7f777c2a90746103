package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "tripsplit.v1.SettlementService"

const (
	SettlementServiceGetBalancesProcedure    = "/tripsplit.v1.SettlementService/GetBalances"
	SettlementServiceGetSettlementsProcedure = "/tripsplit.v1.SettlementService/GetSettlements"
)

type GetBalancesRequest struct {
	TripID string `json:"tripId"`
}

type GetBalancesResponse struct {
	BaseCurrency         string     `json:"baseCurrency"`
	ParticipantBalances  []Balance  `json:"participantBalances"`
	FamilyBalances       []Balance  `json:"familyBalances"`
	Validation           Validation `json:"validation"`
	EmptySplitExpenseIDs []string   `json:"emptySplitExpenseIds,omitempty"`

	// InvalidAmountExpenseIDs lists stored expenses left out of the balances
	// because their base amount is not a finite number.
	InvalidAmountExpenseIDs []string `json:"invalidAmountExpenseIds,omitempty"`
}

type GetSettlementsRequest struct {
	TripID string `json:"tripId"`
}

type GetSettlementsResponse struct {
	BaseCurrency            string       `json:"baseCurrency"`
	Settlements             []Settlement `json:"settlements"`
	ParticipantBalances     []Balance    `json:"participantBalances"`
	FamilyBalances          []Balance    `json:"familyBalances"`
	UnaffiliatedBalances    []Balance    `json:"unaffiliatedBalances"`
	Validation              Validation   `json:"validation"`
	TotalSpent              float64      `json:"totalSpent"`
	TotalToTransfer         float64      `json:"totalToTransfer"`
	EmptySplitExpenseIDs    []string     `json:"emptySplitExpenseIds,omitempty"`
	InvalidAmountExpenseIDs []string     `json:"invalidAmountExpenseIds,omitempty"`
}

// SettlementServiceHandler is implemented by the server side of the SettlementService.
type SettlementServiceHandler interface {
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetSettlements(context.Context, *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + SettlementServiceName + "/", router(map[string]http.Handler{
		SettlementServiceGetBalancesProcedure:    unary(SettlementServiceGetBalancesProcedure, svc.GetBalances, opts),
		SettlementServiceGetSettlementsProcedure: unary(SettlementServiceGetSettlementsProcedure, svc.GetSettlements, opts),
	})
}

// SettlementServiceClient is a client for the SettlementService.
type SettlementServiceClient struct {
	getBalances    *connect.Client[GetBalancesRequest, GetBalancesResponse]
	getSettlements *connect.Client[GetSettlementsRequest, GetSettlementsResponse]
}

// NewSettlementServiceClient constructs a client for the SettlementService at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	return &SettlementServiceClient{
		getBalances:    newClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL, SettlementServiceGetBalancesProcedure, opts),
		getSettlements: newClient[GetSettlementsRequest, GetSettlementsResponse](httpClient, baseURL, SettlementServiceGetSettlementsProcedure, opts),
	}
}

func (c *SettlementServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetSettlements(ctx context.Context, req *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error) {
	return c.getSettlements.CallUnary(ctx, req)
}
