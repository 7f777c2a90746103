package api

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "tripsplit.v1.ExpenseService"

const (
	ExpenseServiceAddExpenseProcedure      = "/tripsplit.v1.ExpenseService/AddExpense"
	ExpenseServiceUpdateExpenseProcedure   = "/tripsplit.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure   = "/tripsplit.v1.ExpenseService/DeleteExpense"
	ExpenseServiceListExpensesProcedure    = "/tripsplit.v1.ExpenseService/ListExpenses"
	ExpenseServiceGetExpenseSplitProcedure = "/tripsplit.v1.ExpenseService/GetExpenseSplit"
	ExpenseServiceListDuplicatesProcedure  = "/tripsplit.v1.ExpenseService/ListDuplicates"
)

// ExpenseInput is the editable part of an expense.
type ExpenseInput struct {
	PayerID  string  `json:"payerId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	// ExchangeRate converts Currency into the trip base currency.
	// Zero asks the server to look it up.
	ExchangeRate         float64   `json:"exchangeRate,omitempty"`
	Description          string    `json:"description"`
	Category             string    `json:"category,omitempty"`
	ExpenseDate          time.Time `json:"expenseDate,omitzero"`
	SplitType            string    `json:"splitType,omitempty"`
	TargetFamilyIDs      []string  `json:"targetFamilyIds,omitempty"`
	TargetParticipantIDs []string  `json:"targetParticipantIds,omitempty"`
}

type AddExpenseRequest struct {
	TripID string `json:"tripId"`
	ExpenseInput
}

// AddExpenseResponse carries the stored expense. Duplicate is set when an
// existing expense looks like the same entry; the new one is stored anyway.
type AddExpenseResponse struct {
	Expense   Expense  `json:"expense"`
	Duplicate *Expense `json:"duplicate,omitempty"`
	Warning   string   `json:"warning,omitempty"`
}

type UpdateExpenseRequest struct {
	TripID    string `json:"tripId"`
	ExpenseID string `json:"expenseId"`
	ExpenseInput
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	TripID    string `json:"tripId"`
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	TripID string `json:"tripId"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type GetExpenseSplitRequest struct {
	TripID    string `json:"tripId"`
	ExpenseID string `json:"expenseId"`
}

type GetExpenseSplitResponse struct {
	ExpenseID string  `json:"expenseId"`
	Shares    []Share `json:"shares"`
}

type ListDuplicatesRequest struct {
	TripID string `json:"tripId"`
}

type ListDuplicatesResponse struct {
	Pairs []DuplicatePair `json:"pairs"`
}

// ExpenseServiceHandler is implemented by the server side of the ExpenseService.
type ExpenseServiceHandler interface {
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	GetExpenseSplit(context.Context, *connect.Request[GetExpenseSplitRequest]) (*connect.Response[GetExpenseSplitResponse], error)
	ListDuplicates(context.Context, *connect.Request[ListDuplicatesRequest]) (*connect.Response[ListDuplicatesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + ExpenseServiceName + "/", router(map[string]http.Handler{
		ExpenseServiceAddExpenseProcedure:      unary(ExpenseServiceAddExpenseProcedure, svc.AddExpense, opts),
		ExpenseServiceUpdateExpenseProcedure:   unary(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts),
		ExpenseServiceDeleteExpenseProcedure:   unary(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts),
		ExpenseServiceListExpensesProcedure:    unary(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts),
		ExpenseServiceGetExpenseSplitProcedure: unary(ExpenseServiceGetExpenseSplitProcedure, svc.GetExpenseSplit, opts),
		ExpenseServiceListDuplicatesProcedure:  unary(ExpenseServiceListDuplicatesProcedure, svc.ListDuplicates, opts),
	})
}

// ExpenseServiceClient is a client for the ExpenseService.
type ExpenseServiceClient struct {
	addExpense      *connect.Client[AddExpenseRequest, AddExpenseResponse]
	updateExpense   *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	deleteExpense   *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	listExpenses    *connect.Client[ListExpensesRequest, ListExpensesResponse]
	getExpenseSplit *connect.Client[GetExpenseSplitRequest, GetExpenseSplitResponse]
	listDuplicates  *connect.Client[ListDuplicatesRequest, ListDuplicatesResponse]
}

// NewExpenseServiceClient constructs a client for the ExpenseService at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	return &ExpenseServiceClient{
		addExpense:      newClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL, ExpenseServiceAddExpenseProcedure, opts),
		updateExpense:   newClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL, ExpenseServiceUpdateExpenseProcedure, opts),
		deleteExpense:   newClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL, ExpenseServiceDeleteExpenseProcedure, opts),
		listExpenses:    newClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL, ExpenseServiceListExpensesProcedure, opts),
		getExpenseSplit: newClient[GetExpenseSplitRequest, GetExpenseSplitResponse](httpClient, baseURL, ExpenseServiceGetExpenseSplitProcedure, opts),
		listDuplicates:  newClient[ListDuplicatesRequest, ListDuplicatesResponse](httpClient, baseURL, ExpenseServiceListDuplicatesProcedure, opts),
	}
}

func (c *ExpenseServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpenseSplit(ctx context.Context, req *connect.Request[GetExpenseSplitRequest]) (*connect.Response[GetExpenseSplitResponse], error) {
	return c.getExpenseSplit.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListDuplicates(ctx context.Context, req *connect.Request[ListDuplicatesRequest]) (*connect.Response[ListDuplicatesResponse], error) {
	return c.listDuplicates.CallUnary(ctx, req)
}
