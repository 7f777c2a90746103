package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// CurrencyServiceName is the fully-qualified name of the CurrencyService.
const CurrencyServiceName = "tripsplit.v1.CurrencyService"

const (
	CurrencyServiceGetRateProcedure        = "/tripsplit.v1.CurrencyService/GetRate"
	CurrencyServiceConvertProcedure        = "/tripsplit.v1.CurrencyService/Convert"
	CurrencyServiceListCurrenciesProcedure = "/tripsplit.v1.CurrencyService/ListCurrencies"
)

type GetRateRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type GetRateResponse struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

type ConvertRequest struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
}

type ConvertResponse struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Rate      float64 `json:"rate"`
	Converted float64 `json:"converted"`
}

type ListCurrenciesRequest struct{}

type ListCurrenciesResponse struct {
	Currencies []Currency `json:"currencies"`
}

// CurrencyServiceHandler is implemented by the server side of the CurrencyService.
type CurrencyServiceHandler interface {
	GetRate(context.Context, *connect.Request[GetRateRequest]) (*connect.Response[GetRateResponse], error)
	Convert(context.Context, *connect.Request[ConvertRequest]) (*connect.Response[ConvertResponse], error)
	ListCurrencies(context.Context, *connect.Request[ListCurrenciesRequest]) (*connect.Response[ListCurrenciesResponse], error)
}

// NewCurrencyServiceHandler builds an HTTP handler from the service implementation.
func NewCurrencyServiceHandler(svc CurrencyServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + CurrencyServiceName + "/", router(map[string]http.Handler{
		CurrencyServiceGetRateProcedure:        unary(CurrencyServiceGetRateProcedure, svc.GetRate, opts),
		CurrencyServiceConvertProcedure:        unary(CurrencyServiceConvertProcedure, svc.Convert, opts),
		CurrencyServiceListCurrenciesProcedure: unary(CurrencyServiceListCurrenciesProcedure, svc.ListCurrencies, opts),
	})
}

// CurrencyServiceClient is a client for the CurrencyService.
type CurrencyServiceClient struct {
	getRate        *connect.Client[GetRateRequest, GetRateResponse]
	convert        *connect.Client[ConvertRequest, ConvertResponse]
	listCurrencies *connect.Client[ListCurrenciesRequest, ListCurrenciesResponse]
}

// NewCurrencyServiceClient constructs a client for the CurrencyService at baseURL.
func NewCurrencyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CurrencyServiceClient {
	return &CurrencyServiceClient{
		getRate:        newClient[GetRateRequest, GetRateResponse](httpClient, baseURL, CurrencyServiceGetRateProcedure, opts),
		convert:        newClient[ConvertRequest, ConvertResponse](httpClient, baseURL, CurrencyServiceConvertProcedure, opts),
		listCurrencies: newClient[ListCurrenciesRequest, ListCurrenciesResponse](httpClient, baseURL, CurrencyServiceListCurrenciesProcedure, opts),
	}
}

func (c *CurrencyServiceClient) GetRate(ctx context.Context, req *connect.Request[GetRateRequest]) (*connect.Response[GetRateResponse], error) {
	return c.getRate.CallUnary(ctx, req)
}

func (c *CurrencyServiceClient) Convert(ctx context.Context, req *connect.Request[ConvertRequest]) (*connect.Response[ConvertResponse], error) {
	return c.convert.CallUnary(ctx, req)
}

func (c *CurrencyServiceClient) ListCurrencies(ctx context.Context, req *connect.Request[ListCurrenciesRequest]) (*connect.Response[ListCurrenciesResponse], error) {
	return c.listCurrencies.CallUnary(ctx, req)
}
