// Package currency maintains per-day exchange rates. Rates are stored only
// against the base currency (1 unit of base = X units of target) and all
// cross-rates are derived, so no independent per-pair mutation can ever
// desynchronize a round trip.
package currency

import (
	"errors"
	"fmt"

	"fincast/internal/prng"

	"github.com/shopspring/decimal"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency pair")

// DefaultVolatility is the daily rate shock used by the simulation loop.
const DefaultVolatility = 0.01

var defaultBaseRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"PKR": 278.50,
}

type Engine struct {
	base string
	// configured order; daily shock draws are consumed in this order, so
	// it must stay fixed for the life of the engine
	currencies []string
	seed       int64
	rates      map[string]float64
}

func NewEngine(baseCurrency string, supportedCurrencies []string, seed int64) *Engine {
	rates := make(map[string]float64, len(supportedCurrencies))
	for _, c := range supportedCurrencies {
		rate, ok := defaultBaseRates[c]
		if !ok {
			rate = 1.0
		}
		rates[c] = rate
	}
	return &Engine{
		base:       baseCurrency,
		currencies: append([]string{}, supportedCurrencies...),
		seed:       seed,
		rates:      rates,
	}
}

// UpdateRatesDaily applies one deterministic multiplicative shock per
// non-base currency. The generator is re-derived from (seed, day) so any
// day's shocks are reproducible regardless of call order.
func (e *Engine) UpdateRatesDaily(day int, volatility float64) {
	r := prng.ForDay(e.seed, day)
	for _, c := range e.currencies {
		if c == e.base {
			continue
		}
		change := prng.Normal(r, volatility)
		e.rates[c] *= 1 + change
	}
}

// Convert converts an amount between two supported currencies through the
// derived cross-rate, rounding half-up to 2 decimal places. Same-currency
// conversions return the amount unchanged, without rounding.
func (e *Engine) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	cross, err := e.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	converted := amount.InexactFloat64() * cross
	return decimal.NewFromFloat(converted).Round(2), nil
}

// Rate derives the current cross-rate rate(to)/rate(from).
func (e *Engine) Rate(from, to string) (float64, error) {
	fromRate, okFrom := e.rates[from]
	toRate, okTo := e.rates[to]
	if !okFrom || !okTo {
		return 0, fmt.Errorf("%w: %s -> %s", ErrUnsupportedCurrency, from, to)
	}
	return toRate / fromRate, nil
}

// ValidatePrecision reports whether the amount carries at most 2 decimal
// places.
func (e *Engine) ValidatePrecision(amount decimal.Decimal) bool {
	return amount.Exponent() >= -2 || amount.Equal(amount.Round(2))
}
