// Package app orchestrates full simulation workloads: scenario to engine
// wiring, trunk plus branch execution, KPI evaluation, and persistence.
package app

import (
	"fmt"

	"fincast/internal/config"
	"fincast/internal/domain"
	"fincast/internal/engine"
	"fincast/internal/output"
	"fincast/internal/report"
	"fincast/internal/repository"
	"fincast/internal/tax"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SimulationHandler struct {
	RunRepository    repository.RunRepository
	TaxBrackets      []tax.Bracket
	CapitalGainsRate float64
	Logger           *zap.SugaredLogger
}

type RunScenarioInput struct {
	Scenario *config.Scenario
	// Store persists the trunk packet to the run repository when set.
	Store bool
}

type RunScenarioResponse struct {
	Trunk      *output.Result     `json:"trunk"`
	Branches   []*output.Result   `json:"branches,omitempty"`
	Comparison *output.Comparison `json:"comparison,omitempty"`

	// trunk cash movements, for CSV export; not part of the packet contract
	Transactions []domain.Transaction `json:"-"`
}

// buildEngine wires one engine from a scenario definition, leaving it
// initialized and ready to run.
func (h SimulationHandler) buildEngine(scenario *config.Scenario) (*engine.Engine, error) {
	cfg, err := scenario.SimulationConfig()
	if err != nil {
		return nil, err
	}

	e, err := engine.New(cfg, h.TaxBrackets, h.CapitalGainsRate)
	if err != nil {
		return nil, err
	}
	e.SetScenario(scenario.Name)

	assets := make([]domain.Asset, 0, len(scenario.Assets))
	for _, spec := range scenario.Assets {
		asset, err := spec.ToDomain()
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	liabilities := make([]domain.Liability, 0, len(scenario.Liabilities))
	for _, spec := range scenario.Liabilities {
		liabilities = append(liabilities, spec.ToDomain())
	}

	for _, spec := range scenario.IncomeSources {
		src, err := spec.ToIncomeSource()
		if err != nil {
			return nil, err
		}
		e.AddIncomeSource(src)
	}
	for _, spec := range scenario.ExpenseItems {
		item, err := spec.ToExpenseItem()
		if err != nil {
			return nil, err
		}
		e.AddExpenseItem(item)
	}

	err = e.Initialize(decimal.NewFromFloat(scenario.InitialBalance), assets, liabilities, scenario.CreditScore)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// RunScenario executes the trunk run, forks every branch the scenario
// defines, and attaches custom KPIs to each packet.
func (h SimulationHandler) RunScenario(in RunScenarioInput) (*RunScenarioResponse, error) {
	if err := in.Scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	e, err := h.buildEngine(in.Scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	trunk, err := e.Run()
	if err != nil {
		return nil, fmt.Errorf("trunk run failed: %w", err)
	}
	if err := h.attachKPIs(trunk, in.Scenario); err != nil {
		return nil, err
	}

	response := &RunScenarioResponse{Trunk: trunk, Transactions: e.Transactions()}

	for _, spec := range in.Scenario.Branches {
		overrides, err := branchOverrides(spec)
		if err != nil {
			return nil, err
		}
		branch, err := e.BranchFromSnapshot(spec.SnapshotDay, spec.Name, overrides)
		if err != nil {
			return nil, fmt.Errorf("branch %q failed: %w", spec.Name, err)
		}
		if err := h.attachKPIs(branch, in.Scenario); err != nil {
			return nil, err
		}
		response.Branches = append(response.Branches, branch)
	}

	if len(response.Branches) > 0 {
		all := append([]*output.Result{trunk}, response.Branches...)
		response.Comparison, err = output.MergeResults(all)
		if err != nil {
			return nil, fmt.Errorf("failed to merge results: %w", err)
		}
	}

	if in.Store && h.RunRepository != nil {
		if err := h.RunRepository.Add(trunk); err != nil {
			return nil, fmt.Errorf("failed to store run: %w", err)
		}
		h.Logger.Infow("stored run", "runId", trunk.RunID, "scenario", in.Scenario.Name)
	}

	return response, nil
}

func (h SimulationHandler) attachKPIs(res *output.Result, scenario *config.Scenario) error {
	if err := report.EvaluateKPIs(res, scenario.CustomMetrics); err != nil {
		return fmt.Errorf("failed to evaluate custom metrics: %w", err)
	}
	return nil
}

func branchOverrides(spec config.BranchSpec) (*engine.BranchOverrides, error) {
	overrides := &engine.BranchOverrides{}
	for _, flow := range spec.IncomeSources {
		src, err := flow.ToIncomeSource()
		if err != nil {
			return nil, err
		}
		overrides.IncomeSources = append(overrides.IncomeSources, src)
	}
	for _, flow := range spec.ExpenseItems {
		item, err := flow.ToExpenseItem()
		if err != nil {
			return nil, err
		}
		overrides.ExpenseItems = append(overrides.ExpenseItems, item)
	}
	for _, r := range spec.Restructures {
		overrides.Restructures = append(overrides.Restructures, domain.Liability{
			ID:             r.LiabilityID,
			InterestRate:   r.InterestRate,
			MonthlyPayment: decimal.NewFromFloat(r.MonthlyPayment),
		})
	}
	return overrides, nil
}
