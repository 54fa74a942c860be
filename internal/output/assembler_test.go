package output

import (
	"encoding/json"
	"testing"

	"fincast/internal/metrics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_HealthScore(t *testing.T) {
	t.Run("doubled balance with perfect credit saturates high", func(t *testing.T) {
		got := HealthScore(HealthInput{
			Balance:        20000,
			InitialBalance: 10000,
			CreditScore:    850,
			LiquidityRatio: 1.0,
			RecoverySlope:  50,
		})
		require.Equal(t, 100.0, got)
	})

	t.Run("bankrupt run scores low", func(t *testing.T) {
		got := HealthScore(HealthInput{
			Balance:               -5000,
			InitialBalance:        1000,
			CreditScore:           300,
			BankruptcyProbability: 1.0,
			ShockDensity:          1.0,
		})
		require.Less(t, got, 10.0)
	})

	t.Run("zero initial balance neutral when final non-negative", func(t *testing.T) {
		positive := HealthScore(HealthInput{Balance: 100, InitialBalance: 0, CreditScore: 650})
		negative := HealthScore(HealthInput{Balance: -100, InitialBalance: 0, CreditScore: 650})
		require.Greater(t, positive, negative)
	})

	t.Run("always within 0 to 100", func(t *testing.T) {
		got := HealthScore(HealthInput{
			Balance:               1e12,
			InitialBalance:        1,
			CreditScore:           850,
			BankruptcyProbability: 0,
			LiquidityRatio:        1,
			RecoverySlope:         1e9,
		})
		require.LessOrEqual(t, got, 100.0)
		require.GreaterOrEqual(t, got, 0.0)
	})
}

func Test_TierLookup(t *testing.T) {
	for _, tc := range []struct {
		score     float64
		wantVibe  string
		wantGrade string
	}{
		{95, "Thriving", "A+"},
		{90, "Thriving", "A+"},
		{89.9, "Confident", "A"},
		{60, "Stable", "B+"},
		{45, "Cautious", "B"},
		{31, "Stressed", "C"},
		{16, "Critical", "D"},
		{5, "Collapsed", "F"},
		{0, "Collapsed", "F"},
	} {
		got := VibeState(tc.score)
		require.Equal(t, tc.wantVibe, got.Label, "score %v", tc.score)
		require.Equal(t, tc.wantGrade, got.Emoji, "score %v", tc.score)
	}

	pet := PetState(95)
	require.Equal(t, "Exceptional Stability", pet.Label)
	require.Equal(t, "S", pet.Emoji)

	pet = PetState(10)
	require.Equal(t, "Critical", pet.Label)
}

func Test_Assemble(t *testing.T) {
	t.Run("empty history fails", func(t *testing.T) {
		_, err := Assemble(AssembleInput{})
		require.Error(t, err)
	})

	t.Run("summary statistics", func(t *testing.T) {
		day := 1
		res, err := Assemble(AssembleInput{
			RunID:            uuid.New(),
			Scenario:         "test",
			BalanceHistory:   []float64{100, -50, 300, 400},
			CreditHistory:    []float64{650, 640, 660, 670},
			NAVHistory:       []float64{1000, 900, 1100, 1200},
			LiquidityHistory: []float64{0.5, 0.4, 0.6, 0.7},
			InitialBalance:   100,
			TotalDays:        4,
			RiskSnapshot: metrics.RiskSnapshot{
				BankruptcyProbability: 0.25,
				BankruptcyTimingDay:   &day,
				ResilienceScoreIndex:  60,
				WorstDrawdown:         1.5,
			},
			FinalCreditRating: "Fair",
		})
		require.NoError(t, err)

		require.Equal(t, 400.0, res.FinalBalance)
		require.InDelta(t, 187.5, res.BalanceExpected, 1e-9)
		require.Equal(t, 0.25, res.BankruptcyProbability)
		require.Equal(t, 1, *res.BankruptcyDay)
		require.Equal(t, 670.0, res.FinalCreditScore)
		require.Equal(t, 640.0, res.CreditMin)
		require.Equal(t, 670.0, res.CreditMax)
		require.Equal(t, 1200.0, res.FinalNAV)
		require.Equal(t, 0.7, res.FinalLiquidityRatio)
		require.Equal(t, 4, res.TotalDays)
		require.Equal(t, "Fair", res.FinalCreditRating)
	})
}

// The dashboard reads these JSON keys verbatim.
func Test_ResultContractFields(t *testing.T) {
	res, err := Assemble(AssembleInput{
		RunID:          uuid.New(),
		BalanceHistory: []float64{100, 200},
		CreditHistory:  []float64{650, 651},
		InitialBalance: 100,
		TotalDays:      2,
	})
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	packet := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &packet))

	for _, key := range []string{
		"final_balance", "balance_expected", "balance_5th", "balance_95th",
		"bankruptcy_probability", "bankruptcy_day", "resilience_score_index",
		"worst_drawdown", "collapse_density", "health_score", "vibe_state",
		"pet_state", "final_credit_score", "credit_min", "credit_max",
		"final_nav", "final_liquidity_ratio", "balance_history",
		"credit_history", "nav_history", "liquidity_history", "total_days",
		"metrics_snapshot", "risk_snapshot",
	} {
		require.Contains(t, packet, key, "missing packet field %s", key)
	}

	vibe := packet["vibe_state"].(map[string]any)
	for _, key := range []string{"label", "emoji", "description", "score"} {
		require.Contains(t, vibe, key)
	}
}
