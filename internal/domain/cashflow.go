package domain

import "github.com/shopspring/decimal"

type Frequency string

const (
	Frequency_Daily   Frequency = "daily"
	Frequency_Weekly  Frequency = "weekly"
	Frequency_Monthly Frequency = "monthly"
	Frequency_Yearly  Frequency = "yearly"
)

// DueAmount returns the portion of a recurring amount that falls due on the
// given simulated day. Weekly flows land on every 7th day, monthly on every
// 30th, yearly on every 365th; day 0 receives all of them.
func (f Frequency) DueAmount(amount decimal.Decimal, day int) decimal.Decimal {
	switch f {
	case Frequency_Daily:
		return amount
	case Frequency_Weekly:
		if day%7 == 0 {
			return amount
		}
	case Frequency_Monthly:
		if day%30 == 0 {
			return amount
		}
	case Frequency_Yearly:
		if day%365 == 0 {
			return amount
		}
	}
	return decimal.Zero
}

// IncomeSource is a recurring cash inflow. Static for the life of a run.
type IncomeSource struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Frequency Frequency       `json:"frequency"`
}

// ExpenseItem is a recurring cash outflow. Static for the life of a run.
type ExpenseItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Frequency Frequency       `json:"frequency"`
}
