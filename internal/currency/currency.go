// Package currency looks up exchange rates and converts amounts into a
// trip's base currency.
package currency

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// RateSource returns how many units of to one unit of from buys.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// Currency describes a commonly used currency.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}

// Common lists the currencies offered when recording an expense.
var Common = []Currency{
	// Asia
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "KRW", Name: "South Korean Won", Symbol: "₩"},
	{Code: "TWD", Name: "New Taiwan Dollar", Symbol: "NT$"},
	{Code: "HKD", Name: "Hong Kong Dollar", Symbol: "HK$"},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$"},
	{Code: "THB", Name: "Thai Baht", Symbol: "฿"},
	{Code: "AED", Name: "UAE Dirham", Symbol: "د.إ"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{Code: "MYR", Name: "Malaysian Ringgit", Symbol: "RM"},
	{Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp"},
	{Code: "VND", Name: "Vietnamese Dong", Symbol: "₫"},

	// Americas
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	{Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	{Code: "MXN", Name: "Mexican Peso", Symbol: "$"},

	// Europe
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "Fr"},
	{Code: "SEK", Name: "Swedish Krona", Symbol: "kr"},
	{Code: "NOK", Name: "Norwegian Krone", Symbol: "kr"},
	{Code: "DKK", Name: "Danish Krone", Symbol: "kr"},

	// Oceania
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "NZD", Name: "New Zealand Dollar", Symbol: "NZ$"},

	// Other
	{Code: "ZAR", Name: "South African Rand", Symbol: "R"},
	{Code: "RUB", Name: "Russian Ruble", Symbol: "₽"},
	{Code: "TRY", Name: "Turkish Lira", Symbol: "₺"},
}

// Symbol returns the display symbol for code, or code itself if unknown.
func Symbol(code string) string {
	code = strings.ToUpper(code)
	for _, c := range Common {
		if c.Code == code {
			return c.Symbol
		}
	}
	return code
}

// Normalize upper-cases and trims a currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Convert converts amount with rate and rounds to cents.
// Amounts already in the target currency are returned unchanged.
func Convert(amount float64, from, to string, rate float64) float64 {
	if Normalize(from) == Normalize(to) {
		return amount
	}
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		InexactFloat64()
}

// AutoRate returns the rate from src, falling back to 1 for the same
// currency or when no rate can be found.
func AutoRate(ctx context.Context, src RateSource, from, to string) float64 {
	if Normalize(from) == Normalize(to) {
		return 1
	}
	rate, err := src.Rate(ctx, from, to)
	if err != nil || rate <= 0 {
		return 1
	}
	return rate
}
