package output

import (
	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
)

// BranchSummary is the per-run slice of a cross-run comparison.
type BranchSummary struct {
	RunID            uuid.UUID `json:"run_id"`
	Scenario         string    `json:"scenario,omitempty"`
	FinalBalance     float64   `json:"final_balance"`
	FinalCreditScore float64   `json:"final_credit_score"`
	FinalNAV         float64   `json:"final_nav"`
	HealthScore      float64   `json:"health_score"`
}

// Comparison aggregates completed runs (a trunk and its branches, or any
// set of runs) into best/worst/average statistics.
type Comparison struct {
	Branches []BranchSummary `json:"branches"`

	BestFinalBalance  float64 `json:"best_final_balance"`
	WorstFinalBalance float64 `json:"worst_final_balance"`
	AvgFinalBalance   float64 `json:"avg_final_balance"`

	BestCreditScore  float64 `json:"best_credit_score"`
	WorstCreditScore float64 `json:"worst_credit_score"`

	BestNAV  float64 `json:"best_nav"`
	WorstNAV float64 `json:"worst_nav"`

	AvgBankruptcyProbability float64 `json:"avg_bankruptcy_probability"`
}

// MergeResults folds completed run packets into one comparison. Errors on
// an empty input.
func MergeResults(results []*Result) (*Comparison, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	summaries := make([]BranchSummary, 0, len(results))
	balances := make([]float64, 0, len(results))
	credits := make([]float64, 0, len(results))
	navs := make([]float64, 0, len(results))
	bankruptcies := make([]float64, 0, len(results))

	for _, r := range results {
		summaries = append(summaries, BranchSummary{
			RunID:            r.RunID,
			Scenario:         r.Scenario,
			FinalBalance:     r.FinalBalance,
			FinalCreditScore: r.FinalCreditScore,
			FinalNAV:         r.FinalNAV,
			HealthScore:      r.HealthScore,
		})
		balances = append(balances, r.FinalBalance)
		credits = append(credits, r.FinalCreditScore)
		navs = append(navs, r.FinalNAV)
		bankruptcies = append(bankruptcies, r.BankruptcyProbability)
	}

	bestBalance, _ := stats.Max(balances)
	worstBalance, _ := stats.Min(balances)
	avgBalance, _ := stats.Mean(balances)
	bestCredit, _ := stats.Max(credits)
	worstCredit, _ := stats.Min(credits)
	bestNAV, _ := stats.Max(navs)
	worstNAV, _ := stats.Min(navs)
	avgBankruptcy, _ := stats.Mean(bankruptcies)

	return &Comparison{
		Branches:                 summaries,
		BestFinalBalance:         bestBalance,
		WorstFinalBalance:        worstBalance,
		AvgFinalBalance:          avgBalance,
		BestCreditScore:          bestCredit,
		WorstCreditScore:         worstCredit,
		BestNAV:                  bestNAV,
		WorstNAV:                 worstNAV,
		AvgBankruptcyProbability: avgBankruptcy,
	}, nil
}
