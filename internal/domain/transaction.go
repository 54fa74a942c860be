package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionCategory string

const (
	TransactionCategory_Income        TransactionCategory = "income"
	TransactionCategory_Expense       TransactionCategory = "expense"
	TransactionCategory_AssetPurchase TransactionCategory = "asset_purchase"
	TransactionCategory_AssetSale     TransactionCategory = "asset_sale"
	TransactionCategory_LoanPayment   TransactionCategory = "loan_payment"
	TransactionCategory_TaxPayment    TransactionCategory = "tax_payment"
)

// Transaction is one aggregate cash movement recorded by the engine. One
// entry per category per day, only when the amount is nonzero.
type Transaction struct {
	Date        time.Time           `json:"date"`
	Amount      decimal.Decimal     `json:"amount"`
	Currency    string              `json:"currency"`
	Category    TransactionCategory `json:"category"`
	Description string              `json:"description"`
}
