package engine

import (
	"fmt"

	"fincast/internal/domain"
	"fincast/internal/output"
	"fincast/internal/state"
)

// BranchOverrides are the what-if deltas applied on top of a snapshot.
// Income sources and expense items are appended to the trunk's; each
// restructure entry rewrites the rate and payment terms of the existing
// liability sharing its ID.
type BranchOverrides struct {
	IncomeSources []domain.IncomeSource
	ExpenseItems  []domain.ExpenseItem
	Restructures  []domain.Liability
}

// BranchFromSnapshot spawns an independent engine seeded from the snapshot
// taken at the given day and runs it over the remaining horizon. The trunk
// engine is never mutated; any number of branches can fork from the same
// snapshot.
func (e *Engine) BranchFromSnapshot(day int, scenario string, overrides *BranchOverrides) (*output.Result, error) {
	snap, ok := e.stateManager.Snapshot(day)
	if !ok {
		return nil, fmt.Errorf("%w: %d", state.ErrSnapshotNotFound, day)
	}

	remaining := e.cfg.HorizonDays - day
	if remaining <= 0 {
		return nil, fmt.Errorf("no horizon remaining after day %d", day)
	}

	cfg := e.cfg
	cfg.StartDate = snap.Date
	cfg.HorizonDays = remaining
	cfg.InitialBalance = snap.Balance

	branch, err := New(cfg, e.taxBrackets, e.capitalGainsRate)
	if err != nil {
		return nil, fmt.Errorf("failed to construct branch engine: %w", err)
	}
	branch.SetScenario(scenario)

	branch.incomeSources = append([]domain.IncomeSource{}, e.incomeSources...)
	branch.expenseItems = append([]domain.ExpenseItem{}, e.expenseItems...)

	liabilities := domain.CopyLiabilities(snap.Liabilities)
	if overrides != nil {
		branch.incomeSources = append(branch.incomeSources, overrides.IncomeSources...)
		branch.expenseItems = append(branch.expenseItems, overrides.ExpenseItems...)
		for _, r := range overrides.Restructures {
			liabilities, err = branch.liabilityManager.Restructure(liabilities, r.ID, r.InterestRate, r.MonthlyPayment)
			if err != nil {
				return nil, fmt.Errorf("branch restructure %s: %w", r.ID, err)
			}
		}
	}

	err = branch.Initialize(snap.Balance, domain.CopyAssets(snap.Assets), liabilities, snap.CreditScore)
	if err != nil {
		return nil, err
	}

	e.log.Infow("branching from snapshot",
		"runId", e.runID,
		"branchRunId", branch.runID,
		"snapshotDay", day,
		"remainingDays", remaining,
	)

	return branch.Run()
}
