// Package report derives custom KPIs from completed result packets and
// exports run data for spreadsheets.
package report

import (
	"fmt"
	"math"

	"fincast/internal/output"

	"github.com/maja42/goval"
)

// KPIDefinition is a named expression evaluated against the scalar fields
// of a result packet, e.g. "final_nav / total_days".
type KPIDefinition struct {
	Name       string `yaml:"name" json:"name"`
	Expression string `yaml:"expression" json:"expression"`
}

func constructKPIFunctionMap() map[string]goval.ExpressionFunction {
	return map[string]goval.ExpressionFunction{
		"min": func(args ...interface{}) (interface{}, error) {
			if len(args) < 2 {
				return 0, fmt.Errorf("min needs 2 args, got %d", len(args))
			}
			a, b, err := twoFloats(args)
			if err != nil {
				return 0, err
			}
			return math.Min(a, b), nil
		},
		"max": func(args ...interface{}) (interface{}, error) {
			if len(args) < 2 {
				return 0, fmt.Errorf("max needs 2 args, got %d", len(args))
			}
			a, b, err := twoFloats(args)
			if err != nil {
				return 0, err
			}
			return math.Max(a, b), nil
		},
		"abs": func(args ...interface{}) (interface{}, error) {
			if len(args) < 1 {
				return 0, fmt.Errorf("abs needs 1 arg, got %d", len(args))
			}
			v, err := toFloat(args[0])
			if err != nil {
				return 0, err
			}
			return math.Abs(v), nil
		},
	}
}

// kpiVariables exposes the packet's scalar fields under their JSON contract
// names.
func kpiVariables(res *output.Result) map[string]interface{} {
	return map[string]interface{}{
		"final_balance":          res.FinalBalance,
		"balance_expected":       res.BalanceExpected,
		"balance_5th":            res.Balance5th,
		"balance_95th":           res.Balance95th,
		"bankruptcy_probability": res.BankruptcyProbability,
		"resilience_score_index": res.ResilienceScoreIndex,
		"worst_drawdown":         res.WorstDrawdown,
		"health_score":           res.HealthScore,
		"final_credit_score":     res.FinalCreditScore,
		"credit_min":             res.CreditMin,
		"credit_max":             res.CreditMax,
		"final_nav":              res.FinalNAV,
		"final_liquidity_ratio":  res.FinalLiquidityRatio,
		"total_days":             float64(res.TotalDays),
		"rolling_volatility":     res.MetricsSnapshot.RollingVolatility,
		"recovery_slope":         res.MetricsSnapshot.RecoverySlope,
		"total_shocks":           float64(res.MetricsSnapshot.TotalShocks),
	}
}

// EvaluateKPIs evaluates every definition against the packet and attaches
// the values to its custom_metrics map. A definition that fails to evaluate
// fails the whole call; partially-populated packets are not produced.
func EvaluateKPIs(res *output.Result, definitions []KPIDefinition) error {
	if len(definitions) == 0 {
		return nil
	}

	eval := goval.NewEvaluator()
	variables := kpiVariables(res)
	functions := constructKPIFunctionMap()

	computed := make(map[string]float64, len(definitions))
	for _, def := range definitions {
		result, err := eval.Evaluate(def.Expression, variables, functions)
		if err != nil {
			return fmt.Errorf("failed to evaluate KPI %q: %w", def.Name, err)
		}
		value, err := toFloat(result)
		if err != nil {
			return fmt.Errorf("KPI %q: %w", def.Name, err)
		}
		computed[def.Name] = value
	}

	if res.CustomMetrics == nil {
		res.CustomMetrics = map[string]float64{}
	}
	for name, value := range computed {
		res.CustomMetrics[name] = value
	}
	return nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expression produced non-numeric value %v", v)
	}
}

func twoFloats(args []interface{}) (float64, float64, error) {
	a, err := toFloat(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := toFloat(args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
