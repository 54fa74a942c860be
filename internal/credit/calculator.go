// Package credit evolves the simulated credit score from debt ratios,
// payment punctuality, and balance health.
package credit

import (
	"math"

	"fincast/internal/domain"

	"github.com/shopspring/decimal"
)

// paymentHistoryWindow caps the punctuality window at the most recent 24
// entries; the oldest is dropped on overflow.
const paymentHistoryWindow = 24

const DefaultScore = 650.0

type Calculator struct {
	score          float64
	paymentHistory []bool // true = on time
}

func NewCalculator(initialScore float64) *Calculator {
	return &Calculator{score: initialScore}
}

// DebtRatio is total debt over annualized monthly income. Returns +Inf when
// income is zero and debt is positive.
func (c *Calculator) DebtRatio(totalDebt, monthlyIncome decimal.Decimal) float64 {
	if monthlyIncome.IsZero() {
		if totalDebt.Sign() > 0 {
			return math.Inf(1)
		}
		return 0
	}
	ratio, _ := totalDebt.Div(monthlyIncome.Mul(decimal.NewFromInt(12))).Float64()
	return ratio
}

func (c *Calculator) RecordPayment(onTime bool) {
	c.paymentHistory = append(c.paymentHistory, onTime)
	if len(c.paymentHistory) > paymentHistoryWindow {
		c.paymentHistory = c.paymentHistory[1:]
	}
}

// PunctualityScore is the fraction of on-time payments in the window; an
// empty window scores a neutral 1.0.
func (c *Calculator) PunctualityScore() float64 {
	if len(c.paymentHistory) == 0 {
		return 1.0
	}
	onTime := 0
	for _, ok := range c.paymentHistory {
		if ok {
			onTime++
		}
	}
	return float64(onTime) / float64(len(c.paymentHistory))
}

// UpdateScore applies weighted deltas to the current score and clamps the
// result to [300, 850]. Most components are damped by 0.1 so the score
// drifts gradually; a negative balance and a default hit immediately.
func (c *Calculator) UpdateScore(debtRatio float64, balance, totalAssets decimal.Decimal, hadDefault bool) float64 {
	newScore := c.score

	if debtRatio > 0 {
		debtPenalty := math.Min(200, debtRatio*200)
		newScore -= debtPenalty * 0.1
	}

	punctualityBonus := (c.PunctualityScore() - 0.5) * 50 // -25 to +25
	newScore += punctualityBonus * 0.1

	if totalAssets.Sign() > 0 {
		assetBonus := math.Min(30, totalAssets.InexactFloat64()/10000)
		newScore += assetBonus * 0.1
	}

	if balance.Sign() > 0 {
		balanceBonus := math.Min(20, balance.InexactFloat64()/5000)
		newScore += balanceBonus * 0.1
	} else if balance.Sign() < 0 {
		newScore -= 50
	}

	if hadDefault {
		newScore -= 100
	}

	c.score = math.Max(domain.MinCreditScore, math.Min(domain.MaxCreditScore, newScore))
	return c.score
}

func (c *Calculator) Score() float64 {
	return c.score
}

// Rating maps the score to its five-tier label.
func (c *Calculator) Rating() string {
	switch {
	case c.score >= 750:
		return "Excellent"
	case c.score >= 700:
		return "Good"
	case c.score >= 650:
		return "Fair"
	case c.score >= 600:
		return "Poor"
	default:
		return "Very Poor"
	}
}
