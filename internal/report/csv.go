package report

import (
	"fmt"
	"io"

	"fincast/internal/domain"
	"fincast/internal/output"

	"github.com/gocarina/gocsv"
)

type historyRow struct {
	Day            int     `csv:"day"`
	Balance        float64 `csv:"balance"`
	CreditScore    float64 `csv:"credit_score"`
	NAV            float64 `csv:"nav"`
	LiquidityRatio float64 `csv:"liquidity_ratio"`
}

type transactionRow struct {
	Date        string `csv:"date"`
	Category    string `csv:"category"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Description string `csv:"description"`
}

// WriteHistoryCSV exports the day-indexed histories of one run.
func WriteHistoryCSV(w io.Writer, res *output.Result) error {
	rows := make([]historyRow, 0, len(res.BalanceHistory))
	for i, balance := range res.BalanceHistory {
		row := historyRow{Day: i, Balance: balance}
		if i < len(res.CreditHistory) {
			row.CreditScore = res.CreditHistory[i]
		}
		if i < len(res.NAVHistory) {
			row.NAV = res.NAVHistory[i]
		}
		if i < len(res.LiquidityHistory) {
			row.LiquidityRatio = res.LiquidityHistory[i]
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write history csv: %w", err)
	}
	return nil
}

// WriteTransactionsCSV exports the cash movements recorded during a run.
func WriteTransactionsCSV(w io.Writer, transactions []domain.Transaction) error {
	rows := make([]transactionRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, transactionRow{
			Date:        tx.Date.Format("2006-01-02"),
			Category:    string(tx.Category),
			Amount:      tx.Amount.StringFixed(2),
			Currency:    tx.Currency,
			Description: tx.Description,
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write transactions csv: %w", err)
	}
	return nil
}
