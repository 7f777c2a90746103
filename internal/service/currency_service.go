package service

import (
	"context"
	"log/slog"
	"math"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/api"
	"github.com/mmynk/tripsplit/internal/currency"
)

var _ api.CurrencyServiceHandler = (*CurrencyService)(nil)

// CurrencyService exposes exchange rates and the currency catalogue.
type CurrencyService struct {
	rates  currency.RateSource
	logger *slog.Logger
}

// NewCurrencyService creates a CurrencyService backed by rates.
func NewCurrencyService(rates currency.RateSource, logger *slog.Logger) *CurrencyService {
	return &CurrencyService{rates: rates, logger: logger}
}

func currencyPair(from, to string) (string, string, error) {
	from, to = currency.Normalize(from), currency.Normalize(to)
	if !validCurrencyCode(from) || !validCurrencyCode(to) {
		return "", "", invalidArgument("currency codes must be three letters, got %q and %q", from, to)
	}
	return from, to, nil
}

// GetRate returns how many units of To one unit of From buys.
func (s *CurrencyService) GetRate(ctx context.Context, req *connect.Request[api.GetRateRequest]) (*connect.Response[api.GetRateResponse], error) {
	from, to, err := currencyPair(req.Msg.From, req.Msg.To)
	if err != nil {
		return nil, err
	}

	rate, err := s.rates.Rate(ctx, from, to)
	if err != nil {
		s.logger.Error("GetRate failed", "from", from, "to", to, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetRateResponse{From: from, To: to, Rate: rate}), nil
}

// Convert converts an amount at the current rate, rounded to cents.
func (s *CurrencyService) Convert(ctx context.Context, req *connect.Request[api.ConvertRequest]) (*connect.Response[api.ConvertResponse], error) {
	from, to, err := currencyPair(req.Msg.From, req.Msg.To)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(req.Msg.Amount) || math.IsInf(req.Msg.Amount, 0) {
		return nil, invalidArgument("amount must be a finite number")
	}

	rate, err := s.rates.Rate(ctx, from, to)
	if err != nil {
		s.logger.Error("Convert failed", "from", from, "to", to, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.ConvertResponse{
		Amount:    req.Msg.Amount,
		From:      from,
		To:        to,
		Rate:      rate,
		Converted: currency.Convert(req.Msg.Amount, from, to, rate),
	}), nil
}

// ListCurrencies returns the common currency catalogue.
func (s *CurrencyService) ListCurrencies(ctx context.Context, req *connect.Request[api.ListCurrenciesRequest]) (*connect.Response[api.ListCurrenciesResponse], error) {
	out := make([]api.Currency, len(currency.Common))
	for i, c := range currency.Common {
		out[i] = api.Currency{Code: c.Code, Name: c.Name, Symbol: c.Symbol}
	}
	return connect.NewResponse(&api.ListCurrenciesResponse{Currencies: out}), nil
}
