package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Liability is an outstanding debt. RemainingBalance accrues daily interest
// and is reduced by monthly payments; it never goes below zero.
type Liability struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     float64         `json:"interest_rate"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	Currency         string          `json:"currency"`
	StartDate        time.Time       `json:"start_date"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

func (l Liability) DeepCopy() Liability {
	return l
}

func CopyLiabilities(liabilities []Liability) []Liability {
	out := make([]Liability, 0, len(liabilities))
	out = append(out, liabilities...)
	return out
}
