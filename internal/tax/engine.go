// Package tax implements progressive income taxation and capital-gains
// tracking. Unrealized gains are tracked but never taxed.
package tax

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultCapitalGainsRate is applied to realized gains at annual settlement.
const DefaultCapitalGainsRate = 0.15

// Bracket is one rung of the progressive ladder. Income between this
// threshold and the next bracket's threshold is taxed at Rate.
type Bracket struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Rate      float64 `yaml:"rate" json:"rate"`
}

func DefaultBrackets() []Bracket {
	return []Bracket{
		{Threshold: 0, Rate: 0.0},
		{Threshold: 50000, Rate: 0.10},
		{Threshold: 100000, Rate: 0.20},
		{Threshold: 200000, Rate: 0.30},
	}
}

type Engine struct {
	brackets         []Bracket
	capitalGainsRate float64
	realizedGains    decimal.Decimal
	unrealizedGains  decimal.Decimal
}

// NewEngine builds a taxation engine over the given brackets (defaults used
// when nil), sorted ascending by threshold.
func NewEngine(brackets []Bracket, capitalGainsRate float64) *Engine {
	if len(brackets) == 0 {
		brackets = DefaultBrackets()
	}
	sorted := append([]Bracket{}, brackets...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Threshold < sorted[j].Threshold
	})
	if capitalGainsRate <= 0 {
		capitalGainsRate = DefaultCapitalGainsRate
	}
	return &Engine{
		brackets:         sorted,
		capitalGainsRate: capitalGainsRate,
		realizedGains:    decimal.Zero,
		unrealizedGains:  decimal.Zero,
	}
}

// CalculateIncomeTax fills brackets bottom-up: each bracket taxes the income
// between its threshold and the next, the top bracket takes the remainder,
// and the loop stops early once no income remains.
func (e *Engine) CalculateIncomeTax(annualIncome decimal.Decimal) decimal.Decimal {
	if annualIncome.Sign() <= 0 {
		return decimal.Zero
	}

	taxOwed := decimal.Zero
	remaining := annualIncome

	for i, bracket := range e.brackets {
		rate := decimal.NewFromFloat(bracket.Rate)

		var bracketIncome decimal.Decimal
		if i < len(e.brackets)-1 {
			span := decimal.NewFromFloat(e.brackets[i+1].Threshold - bracket.Threshold)
			bracketIncome = decimal.Min(remaining, span)
		} else {
			bracketIncome = remaining
		}

		if bracketIncome.Sign() > 0 {
			taxOwed = taxOwed.Add(bracketIncome.Mul(rate))
			remaining = remaining.Sub(bracketIncome)
		}
		if remaining.Sign() <= 0 {
			break
		}
	}

	return taxOwed
}

func (e *Engine) RecordRealizedGain(gain decimal.Decimal) {
	e.realizedGains = e.realizedGains.Add(gain)
}

func (e *Engine) RecordUnrealizedGain(gain decimal.Decimal) {
	e.unrealizedGains = e.unrealizedGains.Add(gain)
}

func (e *Engine) RealizedGains() decimal.Decimal {
	return e.realizedGains
}

func (e *Engine) UnrealizedGains() decimal.Decimal {
	return e.unrealizedGains
}

// CapitalGainsTax taxes realized gains only.
func (e *Engine) CapitalGainsTax() decimal.Decimal {
	if e.realizedGains.Sign() <= 0 {
		return decimal.Zero
	}
	return e.realizedGains.Mul(decimal.NewFromFloat(e.capitalGainsRate))
}

// ApplyAnnual returns the total annual liability: progressive income tax
// plus, optionally, capital gains tax. The caller is responsible for the
// once-per-365-day gains reset via ResetAnnualGains.
func (e *Engine) ApplyAnnual(annualIncome decimal.Decimal, includeCapitalGains bool) decimal.Decimal {
	total := e.CalculateIncomeTax(annualIncome)
	if includeCapitalGains {
		total = total.Add(e.CapitalGainsTax())
	}
	return total
}

// ResetAnnualGains zeroes the realized and unrealized accumulators at year
// end.
func (e *Engine) ResetAnnualGains() {
	e.realizedGains = decimal.Zero
	e.unrealizedGains = decimal.Zero
}

// EffectiveRate is income tax over income, as a fraction.
func (e *Engine) EffectiveRate(annualIncome decimal.Decimal) float64 {
	if annualIncome.Sign() <= 0 {
		return 0
	}
	rate, _ := e.CalculateIncomeTax(annualIncome).Div(annualIncome).Float64()
	return rate
}
