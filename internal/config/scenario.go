package config

import (
	"fmt"
	"os"
	"time"

	"fincast/internal/domain"
	"fincast/internal/report"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// AssetSpec mirrors domain.Asset in scenario files; dates and money are
// strings so YAML and JSON stay human-editable.
type AssetSpec struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Type        string  `yaml:"type" json:"type"`
	Value       float64 `yaml:"value" json:"value"`
	Currency    string  `yaml:"currency" json:"currency"`
	Volatility  float64 `yaml:"volatility" json:"volatility"`
	IsLocked    bool    `yaml:"is_locked" json:"is_locked"`
	LockUntil   string  `yaml:"lock_until" json:"lock_until,omitempty"`
	SalePenalty float64 `yaml:"sale_penalty" json:"sale_penalty"`
}

type LiabilitySpec struct {
	ID             string  `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	Principal      float64 `yaml:"principal" json:"principal"`
	InterestRate   float64 `yaml:"interest_rate" json:"interest_rate"`
	MonthlyPayment float64 `yaml:"monthly_payment" json:"monthly_payment"`
	Currency       string  `yaml:"currency" json:"currency"`
}

type CashFlowSpec struct {
	ID        string  `yaml:"id" json:"id"`
	Name      string  `yaml:"name" json:"name"`
	Amount    float64 `yaml:"amount" json:"amount"`
	Currency  string  `yaml:"currency" json:"currency"`
	Frequency string  `yaml:"frequency" json:"frequency"`
}

type RestructureSpec struct {
	LiabilityID    string  `yaml:"liability_id" json:"liability_id"`
	InterestRate   float64 `yaml:"interest_rate" json:"interest_rate"`
	MonthlyPayment float64 `yaml:"monthly_payment" json:"monthly_payment"`
}

// BranchSpec forks a what-if run from a trunk snapshot.
type BranchSpec struct {
	Name          string            `yaml:"name" json:"name"`
	SnapshotDay   int               `yaml:"snapshot_day" json:"snapshot_day"`
	IncomeSources []CashFlowSpec    `yaml:"income_sources" json:"income_sources,omitempty"`
	ExpenseItems  []CashFlowSpec    `yaml:"expense_items" json:"expense_items,omitempty"`
	Restructures  []RestructureSpec `yaml:"restructures" json:"restructures,omitempty"`
}

// Scenario is one complete simulation setup, loadable from YAML files or
// JSON request bodies.
type Scenario struct {
	Name           string   `yaml:"name" json:"name"`
	StartDate      string   `yaml:"start_date" json:"start_date"`
	HorizonDays    int      `yaml:"horizon_days" json:"horizon_days"`
	Seed           int64    `yaml:"seed" json:"seed"`
	BaseCurrency   string   `yaml:"base_currency" json:"base_currency"`
	Currencies     []string `yaml:"currencies" json:"currencies"`
	InitialBalance float64  `yaml:"initial_balance" json:"initial_balance"`
	CreditScore    float64  `yaml:"credit_score" json:"credit_score"`

	Assets        []AssetSpec    `yaml:"assets" json:"assets,omitempty"`
	Liabilities   []LiabilitySpec `yaml:"liabilities" json:"liabilities,omitempty"`
	IncomeSources []CashFlowSpec `yaml:"income_sources" json:"income_sources,omitempty"`
	ExpenseItems  []CashFlowSpec `yaml:"expense_items" json:"expense_items,omitempty"`

	CustomMetrics []report.KPIDefinition `yaml:"custom_metrics" json:"custom_metrics,omitempty"`
	Branches      []BranchSpec           `yaml:"branches" json:"branches,omitempty"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scenario) Validate() error {
	if s.HorizonDays <= 0 {
		return fmt.Errorf("horizon_days must be positive")
	}
	if s.BaseCurrency == "" {
		return fmt.Errorf("base_currency is required")
	}
	if s.StartDate != "" {
		if _, err := time.Parse(dateLayout, s.StartDate); err != nil {
			return fmt.Errorf("invalid start_date: %w", err)
		}
	}
	for _, b := range s.Branches {
		if b.SnapshotDay < 0 || b.SnapshotDay >= s.HorizonDays {
			return fmt.Errorf("branch %q snapshot_day %d outside horizon", b.Name, b.SnapshotDay)
		}
	}
	return nil
}

// SimulationConfig converts the scenario header into the engine's config.
// An empty start date means today; an empty currency list means just the
// base currency.
func (s *Scenario) SimulationConfig() (domain.SimulationConfig, error) {
	startDate := time.Now().UTC().Truncate(24 * time.Hour)
	if s.StartDate != "" {
		parsed, err := time.Parse(dateLayout, s.StartDate)
		if err != nil {
			return domain.SimulationConfig{}, fmt.Errorf("invalid start_date: %w", err)
		}
		startDate = parsed
	}

	currencies := s.Currencies
	if len(currencies) == 0 {
		currencies = []string{s.BaseCurrency}
	}

	return domain.SimulationConfig{
		StartDate:      startDate,
		HorizonDays:    s.HorizonDays,
		Seed:           s.Seed,
		BaseCurrency:   s.BaseCurrency,
		Currencies:     currencies,
		InitialBalance: decimal.NewFromFloat(s.InitialBalance),
	}, nil
}

func (a AssetSpec) ToDomain() (domain.Asset, error) {
	asset := domain.Asset{
		ID:          a.ID,
		Name:        a.Name,
		Type:        domain.AssetType(a.Type),
		Value:       decimal.NewFromFloat(a.Value),
		Currency:    a.Currency,
		Volatility:  a.Volatility,
		IsLocked:    a.IsLocked,
		SalePenalty: a.SalePenalty,
	}
	switch asset.Type {
	case domain.AssetType_Liquid, domain.AssetType_Illiquid, domain.AssetType_Volatile, domain.AssetType_Yield:
	default:
		return domain.Asset{}, fmt.Errorf("unknown asset type %q", a.Type)
	}
	if a.LockUntil != "" {
		lockUntil, err := time.Parse(dateLayout, a.LockUntil)
		if err != nil {
			return domain.Asset{}, fmt.Errorf("asset %s lock_until: %w", a.ID, err)
		}
		asset.LockUntil = &lockUntil
	}
	return asset, nil
}

func (l LiabilitySpec) ToDomain() domain.Liability {
	principal := decimal.NewFromFloat(l.Principal)
	return domain.Liability{
		ID:               l.ID,
		Name:             l.Name,
		Principal:        principal,
		RemainingBalance: principal,
		InterestRate:     l.InterestRate,
		MonthlyPayment:   decimal.NewFromFloat(l.MonthlyPayment),
		Currency:         l.Currency,
	}
}

func (c CashFlowSpec) toFrequency() (domain.Frequency, error) {
	switch f := domain.Frequency(c.Frequency); f {
	case domain.Frequency_Daily, domain.Frequency_Weekly, domain.Frequency_Monthly, domain.Frequency_Yearly:
		return f, nil
	default:
		return "", fmt.Errorf("unknown frequency %q", c.Frequency)
	}
}

func (c CashFlowSpec) ToIncomeSource() (domain.IncomeSource, error) {
	freq, err := c.toFrequency()
	if err != nil {
		return domain.IncomeSource{}, fmt.Errorf("income source %s: %w", c.ID, err)
	}
	return domain.IncomeSource{
		ID:        c.ID,
		Name:      c.Name,
		Amount:    decimal.NewFromFloat(c.Amount),
		Currency:  c.Currency,
		Frequency: freq,
	}, nil
}

func (c CashFlowSpec) ToExpenseItem() (domain.ExpenseItem, error) {
	freq, err := c.toFrequency()
	if err != nil {
		return domain.ExpenseItem{}, fmt.Errorf("expense item %s: %w", c.ID, err)
	}
	return domain.ExpenseItem{
		ID:        c.ID,
		Name:      c.Name,
		Amount:    decimal.NewFromFloat(c.Amount),
		Currency:  c.Currency,
		Frequency: freq,
	}, nil
}
