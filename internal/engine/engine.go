// Package engine is the top-level simulation driver. It owns every
// component, resolves the daily pipeline order once through the dependency
// graph, and folds a typed per-day context through that order for each
// simulated day.
package engine

import (
	"fmt"
	"time"

	"fincast/internal/assets"
	"fincast/internal/credit"
	"fincast/internal/currency"
	"fincast/internal/dag"
	"fincast/internal/domain"
	"fincast/internal/liabilities"
	"fincast/internal/logger"
	"fincast/internal/metrics"
	"fincast/internal/output"
	"fincast/internal/state"
	"fincast/internal/tax"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const snapshotInterval = 30

// dayContext threads one simulated day through the scheduled steps. Each
// step transforms the fields it owns and returns the context.
type dayContext struct {
	day         int
	date        time.Time
	prevBalance float64
	balance     decimal.Decimal
	assets      []domain.Asset
	liabilities []domain.Liability
	income      decimal.Decimal
	expenses    decimal.Decimal
}

type Engine struct {
	cfg      domain.SimulationConfig
	runID    uuid.UUID
	scenario string
	log      *zap.SugaredLogger

	taxBrackets      []tax.Bracket
	capitalGainsRate float64

	stateManager     *state.Manager
	currencyEngine   *currency.Engine
	portfolioManager *assets.Manager
	liabilityManager *liabilities.Manager
	creditCalculator *credit.Calculator
	taxEngine        *tax.Engine
	rollingMetrics   *metrics.RollingEngine
	riskAnalyzer     *metrics.RiskAnalyzer

	graph *dag.Graph[*dayContext]
	order []string

	incomeSources []domain.IncomeSource
	expenseItems  []domain.ExpenseItem

	annualIncome decimal.Decimal
	initialized  bool

	balanceHistory   []float64
	creditHistory    []float64
	navHistory       []float64
	liquidityHistory []float64
}

// New validates the config, wires every component, builds the static daily
// pipeline, and resolves its execution order once. The order is replayed
// for every simulated day.
func New(cfg domain.SimulationConfig, taxBrackets []tax.Bracket, capitalGainsRate float64) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	e := &Engine{
		cfg:              cfg,
		runID:            uuid.New(),
		taxBrackets:      taxBrackets,
		capitalGainsRate: capitalGainsRate,
		log:              logger.New(),
		stateManager:     state.NewManager(),
		currencyEngine:   currency.NewEngine(cfg.BaseCurrency, cfg.Currencies, cfg.Seed),
		portfolioManager: assets.NewManager(cfg.Seed),
		liabilityManager: liabilities.NewManager(),
		creditCalculator: credit.NewCalculator(credit.DefaultScore),
		taxEngine:        tax.NewEngine(taxBrackets, capitalGainsRate),
		rollingMetrics:   metrics.NewRollingEngine(metrics.DefaultWindowSize),
		riskAnalyzer:     metrics.NewRiskAnalyzer(),
		annualIncome:     decimal.Zero,
	}

	if err := e.buildGraph(); err != nil {
		return nil, fmt.Errorf("failed to build daily pipeline: %w", err)
	}
	order, err := e.graph.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pipeline order: %w", err)
	}
	e.order = order

	return e, nil
}

func (e *Engine) buildGraph() error {
	g := dag.New[*dayContext]()

	steps := []struct {
		name string
		run  dag.StepFunc[*dayContext]
		deps []string
	}{
		{"exchange_rates", e.stepExchangeRates, nil},
		{"income_expenses", e.stepIncomeExpenses, []string{"exchange_rates"}},
		{"asset_valuation", e.stepAssetValuation, []string{"exchange_rates"}},
		{"liability_accrual", e.stepLiabilityAccrual, []string{"exchange_rates"}},
		{"monthly_payments", e.stepMonthlyPayments, []string{"liability_accrual", "income_expenses"}},
		{"annual_tax", e.stepAnnualTax, []string{"income_expenses"}},
		{"deficit_liquidation", e.stepDeficitLiquidation, []string{"monthly_payments", "annual_tax", "asset_valuation"}},
		{"credit_update", e.stepCreditUpdate, []string{"deficit_liquidation", "monthly_payments"}},
		{"commit_state", e.stepCommitState, []string{"credit_update"}},
		{"metrics_tracking", e.stepMetricsTracking, []string{"commit_state"}},
		{"snapshot", e.stepSnapshot, []string{"metrics_tracking"}},
	}
	for _, s := range steps {
		if err := g.AddNode(s.name, s.run, s.deps...); err != nil {
			return err
		}
	}

	e.graph = g
	return nil
}

func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

func (e *Engine) Config() domain.SimulationConfig {
	return e.cfg
}

// SetScenario labels the result packet; optional.
func (e *Engine) SetScenario(name string) {
	e.scenario = name
}

func (e *Engine) AddIncomeSource(src domain.IncomeSource) {
	e.incomeSources = append(e.incomeSources, src)
}

func (e *Engine) AddExpenseItem(item domain.ExpenseItem) {
	e.expenseItems = append(e.expenseItems, item)
}

// Initialize seeds the canonical state. Must be called exactly once before
// Run.
func (e *Engine) Initialize(initialBalance decimal.Decimal, initialAssets []domain.Asset, initialLiabilities []domain.Liability, creditScore float64) error {
	if creditScore == 0 {
		creditScore = credit.DefaultScore
	}
	err := e.stateManager.Initialize(domain.FinancialState{
		Day:         0,
		Date:        e.cfg.StartDate,
		Balance:     initialBalance,
		Assets:      initialAssets,
		Liabilities: initialLiabilities,
		CreditScore: creditScore,
	})
	if err != nil {
		return err
	}
	e.creditCalculator = credit.NewCalculator(creditScore)
	e.initialized = true
	return nil
}

// Run executes the full horizon, committing state once per day, and
// assembles the analytics packet.
func (e *Engine) Run() (*output.Result, error) {
	if !e.initialized {
		return nil, state.ErrNotInitialized
	}

	e.log.Infow("starting simulation run",
		"runId", e.runID,
		"horizonDays", e.cfg.HorizonDays,
		"seed", e.cfg.Seed,
	)

	currentDate := e.cfg.StartDate
	for day := 0; day < e.cfg.HorizonDays; day++ {
		current, err := e.stateManager.Current()
		if err != nil {
			return nil, err
		}

		ctx := &dayContext{
			day:         day,
			date:        currentDate,
			prevBalance: current.Balance.InexactFloat64(),
			balance:     current.Balance,
			assets:      current.Assets,
			liabilities: current.Liabilities,
			income:      decimal.Zero,
			expenses:    decimal.Zero,
		}

		if _, err := e.graph.Run(e.order, ctx); err != nil {
			return nil, fmt.Errorf("day %d failed: %w", day, err)
		}

		currentDate = currentDate.AddDate(0, 0, 1)
	}

	result, err := output.Assemble(output.AssembleInput{
		RunID:             e.runID,
		Scenario:          e.scenario,
		BalanceHistory:    e.balanceHistory,
		CreditHistory:     e.creditHistory,
		NAVHistory:        e.navHistory,
		LiquidityHistory:  e.liquidityHistory,
		RiskSnapshot:      e.riskAnalyzer.Snapshot(),
		MetricsSnapshot:   e.rollingMetrics.Snapshot(),
		InitialBalance:    e.cfg.InitialBalance.InexactFloat64(),
		TotalDays:         e.cfg.HorizonDays,
		FinalCreditRating: e.creditCalculator.Rating(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble output: %w", err)
	}

	e.log.Infow("simulation run complete",
		"runId", e.runID,
		"finalBalance", result.FinalBalance,
		"healthScore", result.HealthScore,
	)

	return result, nil
}

// Transactions returns the aggregate cash movements recorded during the
// run, for CSV export and auditing.
func (e *Engine) Transactions() []domain.Transaction {
	return e.stateManager.Transactions()
}

// StateManager exposes the snapshot store for restoration and inspection.
func (e *Engine) StateManager() *state.Manager {
	return e.stateManager
}

// ----------------------------------------------------------------------
// Daily pipeline steps
// ----------------------------------------------------------------------

func (e *Engine) stepExchangeRates(ctx *dayContext) (*dayContext, error) {
	e.currencyEngine.UpdateRatesDaily(ctx.day, currency.DefaultVolatility)
	return ctx, nil
}

func (e *Engine) stepIncomeExpenses(ctx *dayContext) (*dayContext, error) {
	income, err := e.processIncome(ctx.day)
	if err != nil {
		return ctx, err
	}
	expenses, err := e.processExpenses(ctx.day)
	if err != nil {
		return ctx, err
	}

	ctx.income = income
	ctx.expenses = expenses
	ctx.balance = ctx.balance.Add(income).Sub(expenses)
	e.annualIncome = e.annualIncome.Add(income)

	if income.Sign() > 0 {
		e.stateManager.RecordTransaction(domain.Transaction{
			Date:        ctx.date,
			Amount:      income,
			Currency:    e.cfg.BaseCurrency,
			Category:    domain.TransactionCategory_Income,
			Description: "recurring income",
		})
	}
	if expenses.Sign() > 0 {
		e.stateManager.RecordTransaction(domain.Transaction{
			Date:        ctx.date,
			Amount:      expenses,
			Currency:    e.cfg.BaseCurrency,
			Category:    domain.TransactionCategory_Expense,
			Description: "recurring expenses",
		})
	}
	return ctx, nil
}

func (e *Engine) stepAssetValuation(ctx *dayContext) (*dayContext, error) {
	preValue := e.portfolioManager.TotalValue(ctx.assets)
	ctx.assets = e.portfolioManager.UpdateAssetValues(ctx.assets, ctx.day)
	postValue := e.portfolioManager.TotalValue(ctx.assets)

	// positive aggregate valuation moves are tracked as unrealized gains;
	// they are never taxed
	delta := postValue.Sub(preValue)
	if delta.Sign() > 0 {
		e.taxEngine.RecordUnrealizedGain(delta)
	}
	return ctx, nil
}

func (e *Engine) stepLiabilityAccrual(ctx *dayContext) (*dayContext, error) {
	ctx.liabilities = e.liabilityManager.AccrueDailyInterest(ctx.liabilities)
	return ctx, nil
}

func (e *Engine) stepMonthlyPayments(ctx *dayContext) (*dayContext, error) {
	if ctx.day%30 != 0 || ctx.day == 0 {
		return ctx, nil
	}

	obligations := e.liabilityManager.MonthlyObligations(ctx.liabilities)
	ctx.balance = ctx.balance.Sub(obligations)

	kept := make([]domain.Liability, 0, len(ctx.liabilities))
	for _, l := range ctx.liabilities {
		updated, paidOff := e.liabilityManager.ProcessPayment(l, l.MonthlyPayment)
		if paidOff {
			e.log.Infow("liability discharged", "runId", e.runID, "liability", l.ID, "day", ctx.day)
			continue
		}
		kept = append(kept, updated)
	}
	ctx.liabilities = kept

	onTime := ctx.balance.Sign() >= 0
	e.creditCalculator.RecordPayment(onTime)

	if obligations.Sign() > 0 {
		e.stateManager.RecordTransaction(domain.Transaction{
			Date:        ctx.date,
			Amount:      obligations,
			Currency:    e.cfg.BaseCurrency,
			Category:    domain.TransactionCategory_LoanPayment,
			Description: "monthly obligations",
		})
	}
	return ctx, nil
}

func (e *Engine) stepAnnualTax(ctx *dayContext) (*dayContext, error) {
	if ctx.day%365 != 0 || ctx.day == 0 {
		return ctx, nil
	}

	taxDue := e.taxEngine.ApplyAnnual(e.annualIncome, true)
	ctx.balance = ctx.balance.Sub(taxDue)

	// the accumulators reset exactly once per 365-day cycle
	e.annualIncome = decimal.Zero
	e.taxEngine.ResetAnnualGains()

	if taxDue.Sign() > 0 {
		e.stateManager.RecordTransaction(domain.Transaction{
			Date:        ctx.date,
			Amount:      taxDue,
			Currency:    e.cfg.BaseCurrency,
			Category:    domain.TransactionCategory_TaxPayment,
			Description: "annual tax settlement",
		})
	}
	return ctx, nil
}

func (e *Engine) stepDeficitLiquidation(ctx *dayContext) (*dayContext, error) {
	if ctx.balance.Sign() >= 0 {
		return ctx, nil
	}

	deficit := ctx.balance.Abs()
	preValue := e.portfolioManager.TotalValue(ctx.assets)

	remaining, raised, penalty := e.portfolioManager.LiquidateAssets(ctx.assets, deficit, ctx.date)
	ctx.assets = remaining

	postValue := e.portfolioManager.TotalValue(ctx.assets)

	// realized gain formula preserved as-is: proceeds minus the valuation
	// drop plus the penalty
	realizedGain := raised.Sub(preValue.Sub(postValue)).Add(penalty)
	if realizedGain.Sign() > 0 {
		e.taxEngine.RecordRealizedGain(realizedGain)
	}

	ctx.balance = ctx.balance.Add(raised)

	if raised.Sign() > 0 {
		e.log.Infow("liquidated assets to cover deficit",
			"runId", e.runID,
			"day", ctx.day,
			"raised", raised.String(),
			"penalty", penalty.String(),
		)
		e.stateManager.RecordTransaction(domain.Transaction{
			Date:        ctx.date,
			Amount:      raised,
			Currency:    e.cfg.BaseCurrency,
			Category:    domain.TransactionCategory_AssetSale,
			Description: "deficit liquidation",
		})
	}
	return ctx, nil
}

func (e *Engine) stepCreditUpdate(ctx *dayContext) (*dayContext, error) {
	totalDebt := e.liabilityManager.TotalDebt(ctx.liabilities)

	// estimated monthly income: everything due on day 0, times 30
	baseline, err := e.processIncome(0)
	if err != nil {
		return ctx, err
	}
	monthlyIncome := baseline.Mul(decimal.NewFromInt(30))

	debtRatio := e.creditCalculator.DebtRatio(totalDebt, monthlyIncome)
	totalAssets := e.portfolioManager.TotalValue(ctx.assets)
	e.creditCalculator.UpdateScore(debtRatio, ctx.balance, totalAssets, ctx.balance.Sign() < 0)
	return ctx, nil
}

func (e *Engine) stepCommitState(ctx *dayContext) (*dayContext, error) {
	score := e.creditCalculator.Score()
	err := e.stateManager.Update(state.Update{
		Day:         &ctx.day,
		Date:        &ctx.date,
		Balance:     &ctx.balance,
		Assets:      ctx.assets,
		Liabilities: ctx.liabilities,
		CreditScore: &score,
	})
	return ctx, err
}

func (e *Engine) stepMetricsTracking(ctx *dayContext) (*dayContext, error) {
	balance := ctx.balance.InexactFloat64()
	e.rollingMetrics.RecordDay(ctx.day, balance, ctx.prevBalance)
	e.riskAnalyzer.RecordDay(balance)

	e.balanceHistory = append(e.balanceHistory, balance)
	e.creditHistory = append(e.creditHistory, e.creditCalculator.Score())
	e.navHistory = append(e.navHistory, e.stateManager.NAV().InexactFloat64())
	e.liquidityHistory = append(e.liquidityHistory, e.stateManager.LiquidityRatio())
	return ctx, nil
}

func (e *Engine) stepSnapshot(ctx *dayContext) (*dayContext, error) {
	if ctx.day%snapshotInterval != 0 {
		return ctx, nil
	}
	return ctx, e.stateManager.CreateSnapshot(ctx.day)
}

// ----------------------------------------------------------------------
// Cash-flow helpers
// ----------------------------------------------------------------------

func (e *Engine) processIncome(day int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, src := range e.incomeSources {
		amount := src.Frequency.DueAmount(src.Amount, day)
		if amount.IsZero() {
			continue
		}
		converted, err := e.currencyEngine.Convert(amount, src.Currency, e.cfg.BaseCurrency)
		if err != nil {
			return decimal.Zero, fmt.Errorf("income source %s: %w", src.ID, err)
		}
		total = total.Add(converted)
	}
	return total, nil
}

func (e *Engine) processExpenses(day int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range e.expenseItems {
		amount := item.Frequency.DueAmount(item.Amount, day)
		if amount.IsZero() {
			continue
		}
		converted, err := e.currencyEngine.Convert(amount, item.Currency, e.cfg.BaseCurrency)
		if err != nil {
			return decimal.Zero, fmt.Errorf("expense item %s: %w", item.ID, err)
		}
		total = total.Add(converted)
	}
	return total, nil
}
