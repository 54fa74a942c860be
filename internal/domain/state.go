package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinCreditScore = 300.0
	MaxCreditScore = 850.0
)

// FinancialState is the canonical "now" of one simulation. Exactly one live
// instance exists per engine; daily commits replace it rather than mutating
// it, which is what keeps previously taken snapshots immutable.
type FinancialState struct {
	Day         int             `json:"day"`
	Date        time.Time       `json:"date"`
	Balance     decimal.Decimal `json:"balance"`
	Assets      []Asset         `json:"assets"`
	Liabilities []Liability     `json:"liabilities"`
	CreditScore float64         `json:"credit_score"`
}

func (s FinancialState) DeepCopy() FinancialState {
	out := s
	out.Assets = CopyAssets(s.Assets)
	out.Liabilities = CopyLiabilities(s.Liabilities)
	return out
}
