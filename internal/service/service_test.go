package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tripsplit/internal/api"
	"github.com/mmynk/tripsplit/internal/auth"
	"github.com/mmynk/tripsplit/internal/currency"
	"github.com/mmynk/tripsplit/internal/metrics"
	"github.com/mmynk/tripsplit/internal/middleware"
	"github.com/mmynk/tripsplit/internal/storage/sqlite"
)

const testUserID = "user-1"

// testAuthInterceptor returns a Connect interceptor that sets a test user ID in the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx = context.WithValue(ctx, middleware.UserIDKey, testUserID)
			return next(ctx, req)
		}
	}
}

// stubRates serves fixed rates keyed "FROM_TO".
type stubRates map[string]float64

func (r stubRates) Rate(_ context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	if rate, ok := r[from+"_"+to]; ok {
		return rate, nil
	}
	return 0, currency.ErrRateUnavailable
}

type testClients struct {
	auth       *api.AuthServiceClient
	trips      *api.TripServiceClient
	expenses   *api.ExpenseServiceClient
	settlement *api.SettlementServiceClient
	currency   *api.CurrencyServiceClient

	expenseSvc *ExpenseService
	metrics    *metrics.Metrics
	store      *sqlite.SQLiteStore
}

// setupTestServer serves every service over a temp-file SQLite store.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rates := stubRates{"USD_CNY": 7.2, "JPY_CNY": 0.05}
	m := metrics.New()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	authInterceptor := connect.WithInterceptors(testAuthInterceptor())
	expenseSvc := NewExpenseService(store, rates, m, logger)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, store, jwtManager, logger),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager))))
	mux.Handle(api.NewTripServiceHandler(NewTripService(store, "CNY", logger), authInterceptor))
	mux.Handle(api.NewExpenseServiceHandler(expenseSvc, authInterceptor))
	mux.Handle(api.NewSettlementServiceHandler(NewSettlementService(store, m, logger), authInterceptor))
	mux.Handle(api.NewCurrencyServiceHandler(NewCurrencyService(rates, logger), authInterceptor))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testClients{
		auth:       api.NewAuthServiceClient(http.DefaultClient, server.URL),
		trips:      api.NewTripServiceClient(http.DefaultClient, server.URL),
		expenses:   api.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlement: api.NewSettlementServiceClient(http.DefaultClient, server.URL),
		currency:   api.NewCurrencyServiceClient(http.DefaultClient, server.URL),
		expenseSvc: expenseSvc,
		metrics:    m,
		store:      store,
	}
}

// tripFixture is a trip with families X = {A} and Y = {B, C}.
type tripFixture struct {
	tripID  string
	a, b, c string
	x, y    string
}

func createFixture(t *testing.T, c *testClients) tripFixture {
	t.Helper()
	ctx := context.Background()

	trip, err := c.trips.CreateTrip(ctx, connect.NewRequest(&api.CreateTripRequest{Name: "Dali", JoinAsName: "A"}))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	f := tripFixture{tripID: trip.Msg.Trip.ID, a: trip.Msg.Participants[0].ID}

	for _, name := range []string{"B", "C"} {
		resp, err := c.trips.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{TripID: f.tripID, Name: name}))
		if err != nil {
			t.Fatalf("AddParticipant(%s) failed: %v", name, err)
		}
		if name == "B" {
			f.b = resp.Msg.Participant.ID
		} else {
			f.c = resp.Msg.Participant.ID
		}
	}

	x, err := c.trips.AddFamily(ctx, connect.NewRequest(&api.AddFamilyRequest{TripID: f.tripID, Name: "X", MemberIDs: []string{f.a}}))
	if err != nil {
		t.Fatalf("AddFamily(X) failed: %v", err)
	}
	y, err := c.trips.AddFamily(ctx, connect.NewRequest(&api.AddFamilyRequest{TripID: f.tripID, Name: "Y", MemberIDs: []string{f.b, f.c}}))
	if err != nil {
		t.Fatalf("AddFamily(Y) failed: %v", err)
	}
	f.x, f.y = x.Msg.Family.ID, y.Msg.Family.ID
	return f
}

func addExpense(t *testing.T, c *testClients, tripID string, in api.ExpenseInput) *api.AddExpenseResponse {
	t.Helper()
	resp, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{TripID: tripID, ExpenseInput: in}))
	if err != nil {
		t.Fatalf("AddExpense(%s) failed: %v", in.Description, err)
	}
	return resp.Msg
}
