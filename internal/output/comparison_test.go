package output

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_MergeResults(t *testing.T) {
	t.Run("empty input fails", func(t *testing.T) {
		_, err := MergeResults(nil)
		require.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("best worst and averages", func(t *testing.T) {
		a := &Result{RunID: uuid.New(), Scenario: "trunk", FinalBalance: 1000, FinalCreditScore: 700, FinalNAV: 5000, BankruptcyProbability: 0.0}
		b := &Result{RunID: uuid.New(), Scenario: "lean", FinalBalance: -200, FinalCreditScore: 620, FinalNAV: 1500, BankruptcyProbability: 0.4}
		c := &Result{RunID: uuid.New(), Scenario: "flush", FinalBalance: 4000, FinalCreditScore: 780, FinalNAV: 9000, BankruptcyProbability: 0.0}

		got, err := MergeResults([]*Result{a, b, c})
		require.NoError(t, err)

		require.Len(t, got.Branches, 3)
		require.Equal(t, 4000.0, got.BestFinalBalance)
		require.Equal(t, -200.0, got.WorstFinalBalance)
		require.InDelta(t, 1600.0, got.AvgFinalBalance, 1e-9)
		require.Equal(t, 780.0, got.BestCreditScore)
		require.Equal(t, 620.0, got.WorstCreditScore)
		require.Equal(t, 9000.0, got.BestNAV)
		require.Equal(t, 1500.0, got.WorstNAV)
		require.InDelta(t, 0.4/3, got.AvgBankruptcyProbability, 1e-9)
	})

	t.Run("single run collapses to itself", func(t *testing.T) {
		r := &Result{RunID: uuid.New(), FinalBalance: 500, FinalCreditScore: 650, FinalNAV: 500}
		got, err := MergeResults([]*Result{r})
		require.NoError(t, err)
		require.Equal(t, got.BestFinalBalance, got.WorstFinalBalance)
		require.Equal(t, 500.0, got.AvgFinalBalance)
	})
}
