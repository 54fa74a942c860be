package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxHorizonDays caps the simulated horizon at roughly 30 years.
const MaxHorizonDays = 10950

// SimulationConfig is the immutable setup for one simulation run.
type SimulationConfig struct {
	StartDate      time.Time       `json:"start_date"`
	HorizonDays    int             `json:"horizon_days"`
	Seed           int64           `json:"seed"`
	BaseCurrency   string          `json:"base_currency"`
	Currencies     []string        `json:"currencies"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// Validate fails fast on invalid setup; these are configuration errors, not
// runtime financial events.
func (c SimulationConfig) Validate() error {
	if c.HorizonDays <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.HorizonDays)
	}
	if c.HorizonDays > MaxHorizonDays {
		return fmt.Errorf("horizon of %d days exceeds %d day (30 year) cap", c.HorizonDays, MaxHorizonDays)
	}
	supported := false
	for _, cur := range c.Currencies {
		if cur == c.BaseCurrency {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("base currency %s must be in supported currencies list", c.BaseCurrency)
	}
	return nil
}
