// Package output post-processes completed simulation histories into the
// analytics packet consumed by the presentation layer. Field names and
// units are a contract the dashboard depends on verbatim.
package output

import (
	"errors"
	"math"

	"fincast/internal/metrics"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
)

// TierState is one qualitative tier: the grade string ships in the emoji
// field, which the dashboard renders as the badge.
type TierState struct {
	Label       string  `json:"label"`
	Emoji       string  `json:"emoji"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type tier struct {
	minScore    float64
	label       string
	grade       string
	description string
}

// Financial status tiers, highest threshold first.
var vibeThresholds = []tier{
	{90, "Thriving", "A+", "Portfolio showing strong sustained growth"},
	{75, "Confident", "A", "Solid financial position with healthy trajectory"},
	{60, "Stable", "B+", "Steady state with manageable risk exposure"},
	{45, "Cautious", "B", "Elevated risk; tighter controls recommended"},
	{30, "Stressed", "C", "Financial strain detected; corrective action needed"},
	{15, "Critical", "D", "Severe distress; immediate intervention required"},
	{0, "Collapsed", "F", "Financial collapse has occurred"},
}

// Stability grade tiers.
var petStages = []tier{
	{90, "Exceptional Stability", "S", "Top-tier financial resilience"},
	{75, "Strong Stability", "A", "Well-positioned for long-term growth"},
	{60, "Moderate Stability", "B+", "Acceptable risk profile"},
	{45, "Low Stability", "B", "Watchlist - monitor closely"},
	{30, "Fragile", "C", "Below threshold - needs attention"},
	{15, "Unstable", "D", "High-risk - take action now"},
	{0, "Critical", "F", "Recovery plan required"},
}

// Result is the full analytics packet for one completed run.
type Result struct {
	RunID    uuid.UUID `json:"run_id"`
	Scenario string    `json:"scenario,omitempty"`

	FinalBalance    float64 `json:"final_balance"`
	BalanceExpected float64 `json:"balance_expected"`
	Balance5th      float64 `json:"balance_5th"`
	Balance95th     float64 `json:"balance_95th"`

	BankruptcyProbability float64                 `json:"bankruptcy_probability"`
	BankruptcyDay         *int                    `json:"bankruptcy_day"`
	ResilienceScoreIndex  float64                 `json:"resilience_score_index"`
	WorstDrawdown         float64                 `json:"worst_drawdown"`
	CollapseDensity       metrics.CollapseDensity `json:"collapse_density"`

	HealthScore float64   `json:"health_score"`
	VibeState   TierState `json:"vibe_state"`
	PetState    TierState `json:"pet_state"`

	FinalCreditScore  float64 `json:"final_credit_score"`
	FinalCreditRating string  `json:"final_credit_rating,omitempty"`
	CreditMin         float64 `json:"credit_min"`
	CreditMax         float64 `json:"credit_max"`

	FinalNAV            float64 `json:"final_nav"`
	FinalLiquidityRatio float64 `json:"final_liquidity_ratio"`

	BalanceHistory   []float64 `json:"balance_history"`
	CreditHistory    []float64 `json:"credit_history"`
	NAVHistory       []float64 `json:"nav_history"`
	LiquidityHistory []float64 `json:"liquidity_history"`
	TotalDays        int       `json:"total_days"`

	MetricsSnapshot metrics.MetricsSnapshot `json:"metrics_snapshot"`
	RiskSnapshot    metrics.RiskSnapshot    `json:"risk_snapshot"`

	CustomMetrics map[string]float64 `json:"custom_metrics,omitempty"`
}

type AssembleInput struct {
	RunID             uuid.UUID
	Scenario          string
	BalanceHistory    []float64
	CreditHistory     []float64
	NAVHistory        []float64
	LiquidityHistory  []float64
	RiskSnapshot      metrics.RiskSnapshot
	MetricsSnapshot   metrics.MetricsSnapshot
	InitialBalance    float64
	TotalDays         int
	FinalCreditRating string
}

var ErrNoResults = errors.New("at least one result set is required")

// Assemble builds the complete result packet from completed histories plus
// the risk/metrics snapshots.
func Assemble(in AssembleInput) (*Result, error) {
	if len(in.BalanceHistory) == 0 {
		return nil, errors.New("cannot assemble output from an empty balance history")
	}

	finalBalance := in.BalanceHistory[len(in.BalanceHistory)-1]
	balanceExpected, err := stats.Mean(in.BalanceHistory)
	if err != nil {
		return nil, err
	}
	balance5th, err := stats.Percentile(in.BalanceHistory, 5)
	if err != nil {
		return nil, err
	}
	balance95th, err := stats.Percentile(in.BalanceHistory, 95)
	if err != nil {
		return nil, err
	}

	finalCredit := lastOr(in.CreditHistory, 650)
	creditMin, _ := stats.Min(in.CreditHistory)
	creditMax, _ := stats.Max(in.CreditHistory)
	if len(in.CreditHistory) == 0 {
		creditMin, creditMax = finalCredit, finalCredit
	}

	healthScore := HealthScore(HealthInput{
		Balance:               finalBalance,
		InitialBalance:        in.InitialBalance,
		CreditScore:           finalCredit,
		BankruptcyProbability: in.RiskSnapshot.BankruptcyProbability,
		LiquidityRatio:        lastOr(in.LiquidityHistory, 0),
		ShockDensity:          in.MetricsSnapshot.ShockClusteringDensity,
		RecoverySlope:         in.MetricsSnapshot.RecoverySlope,
	})

	return &Result{
		RunID:    in.RunID,
		Scenario: in.Scenario,

		FinalBalance:    finalBalance,
		BalanceExpected: balanceExpected,
		Balance5th:      balance5th,
		Balance95th:     balance95th,

		BankruptcyProbability: in.RiskSnapshot.BankruptcyProbability,
		BankruptcyDay:         in.RiskSnapshot.BankruptcyTimingDay,
		ResilienceScoreIndex:  in.RiskSnapshot.ResilienceScoreIndex,
		WorstDrawdown:         in.RiskSnapshot.WorstDrawdown,
		CollapseDensity:       in.RiskSnapshot.CollapseDensity,

		HealthScore: healthScore,
		VibeState:   VibeState(healthScore),
		PetState:    PetState(healthScore),

		FinalCreditScore:  finalCredit,
		FinalCreditRating: in.FinalCreditRating,
		CreditMin:         creditMin,
		CreditMax:         creditMax,

		FinalNAV:            lastOr(in.NAVHistory, 0),
		FinalLiquidityRatio: lastOr(in.LiquidityHistory, 0),

		BalanceHistory:   in.BalanceHistory,
		CreditHistory:    in.CreditHistory,
		NAVHistory:       in.NAVHistory,
		LiquidityHistory: in.LiquidityHistory,
		TotalDays:        in.TotalDays,

		MetricsSnapshot: in.MetricsSnapshot,
		RiskSnapshot:    in.RiskSnapshot,
	}, nil
}

type HealthInput struct {
	Balance               float64
	InitialBalance        float64
	CreditScore           float64
	BankruptcyProbability float64
	LiquidityRatio        float64
	ShockDensity          float64
	RecoverySlope         float64
}

// HealthScore blends six normalized sub-components into [0, 100] with
// fixed weights: balance growth 20%, credit 20%, non-bankruptcy 20%,
// liquidity 15%, inverse shock density 15%, recovery 10%.
func HealthScore(in HealthInput) float64 {
	// balance growth: 2x the initial balance saturates at 100
	var balanceScore float64
	if in.InitialBalance > 0 {
		growthRatio := in.Balance / in.InitialBalance
		balanceScore = math.Min(100, math.Max(0, growthRatio*50))
	} else if in.Balance >= 0 {
		balanceScore = 50
	}

	// credit 300-850 mapped linearly onto 0-100
	creditComponent := math.Max(0, math.Min(100, (in.CreditScore-300)/5.5))

	bankruptcyComponent := (1 - in.BankruptcyProbability) * 100

	liquidityComponent := math.Min(100, in.LiquidityRatio*100)

	// lower shock density is better
	shockComponent := math.Max(0, 100-in.ShockDensity*1000)

	recoveryComponent := math.Min(100, in.RecoverySlope*10)

	score := 0.20*balanceScore +
		0.20*creditComponent +
		0.20*bankruptcyComponent +
		0.15*liquidityComponent +
		0.15*shockComponent +
		0.10*recoveryComponent

	return math.Max(0, math.Min(100, score))
}

// VibeState maps a health score to its financial-status tier.
func VibeState(healthScore float64) TierState {
	return lookupTier(healthScore, vibeThresholds)
}

// PetState maps a health score to its stability-grade tier.
func PetState(healthScore float64) TierState {
	return lookupTier(healthScore, petStages)
}

// lookupTier returns the highest-threshold tier not exceeding the score,
// defaulting to the lowest tier.
func lookupTier(score float64, table []tier) TierState {
	rounded := math.Round(score*10) / 10
	for _, t := range table {
		if score >= t.minScore {
			return TierState{Label: t.label, Emoji: t.grade, Description: t.description, Score: rounded}
		}
	}
	last := table[len(table)-1]
	return TierState{Label: last.label, Emoji: last.grade, Description: last.description, Score: rounded}
}

func lastOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	return values[len(values)-1]
}
