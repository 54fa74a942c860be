package metrics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func Test_BankruptcyProbability(t *testing.T) {
	t.Run("no observations", func(t *testing.T) {
		r := NewRiskAnalyzer()
		require.Equal(t, 0.0, r.BankruptcyProbability())
	})

	t.Run("fraction of deficit days", func(t *testing.T) {
		r := NewRiskAnalyzer()
		for _, b := range []float64{100, -50, 200, -10} {
			r.RecordDay(b)
		}
		require.Equal(t, 0.5, r.BankruptcyProbability())
	})
}

func Test_BankruptcyTiming(t *testing.T) {
	t.Run("nil when never negative", func(t *testing.T) {
		r := NewRiskAnalyzer()
		r.RecordDay(100)
		r.RecordDay(50)
		require.Nil(t, r.BankruptcyTiming())
	})

	t.Run("first negative day", func(t *testing.T) {
		r := NewRiskAnalyzer()
		for _, b := range []float64{100, 50, -1, -5, 20} {
			r.RecordDay(b)
		}
		timing := r.BankruptcyTiming()
		require.NotNil(t, timing)
		require.Equal(t, 2, *timing)
	})
}

func Test_Drawdown(t *testing.T) {
	r := NewRiskAnalyzer()
	for _, b := range []float64{100, 200, 150, 50, 180} {
		r.RecordDay(b)
	}
	// worst point 50 against peak 200
	require.InDelta(t, 0.75, r.WorstDrawdown(), 1e-9)
}

func Test_ResilienceScoreIndex(t *testing.T) {
	t.Run("flat positive trajectory scores high", func(t *testing.T) {
		r := NewRiskAnalyzer()
		for i := 0; i < 100; i++ {
			r.RecordDay(1000)
		}
		require.Greater(t, r.ResilienceScoreIndex(), 80.0)
	})

	t.Run("full recovery from a dip", func(t *testing.T) {
		r := NewRiskAnalyzer()
		for _, b := range []float64{100, 40, 100} {
			r.RecordDay(b)
		}
		// bp=0, dd=0.6, recovery=1: (0.4 + 0.3*0.4 + 0.3) * 100
		require.InDelta(t, 82.0, r.ResilienceScoreIndex(), 1e-9)
	})

	t.Run("persistent deficit scores low", func(t *testing.T) {
		r := NewRiskAnalyzer()
		for i := 0; i < 100; i++ {
			r.RecordDay(-100)
		}
		require.Less(t, r.ResilienceScoreIndex(), 50.0)
	})
}

func Test_CollapseTimingDensity(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		r := NewRiskAnalyzer()
		got := r.CollapseTimingDensity(12)
		require.Empty(t, got.Bins)
		require.Empty(t, got.Density)
	})

	t.Run("deficit concentrated in second half", func(t *testing.T) {
		r := NewRiskAnalyzer()
		for i := 0; i < 10; i++ {
			r.RecordDay(100)
		}
		for i := 0; i < 10; i++ {
			r.RecordDay(-100)
		}

		got := r.CollapseTimingDensity(2)
		require.Equal(t, "", cmp.Diff([]string{"Period 1", "Period 2"}, got.Bins))
		require.Equal(t, "", cmp.Diff([]float64{0, 1}, got.Density))
	})

	t.Run("more bins than days", func(t *testing.T) {
		r := NewRiskAnalyzer()
		r.RecordDay(-5)
		r.RecordDay(5)

		got := r.CollapseTimingDensity(12)
		require.Len(t, got.Bins, 2)
		require.Equal(t, "", cmp.Diff([]float64{1, 0}, got.Density))
	})
}

func Test_RiskSnapshot(t *testing.T) {
	r := NewRiskAnalyzer()
	for _, b := range []float64{100, -50, 75} {
		r.RecordDay(b)
	}

	snap := r.Snapshot()
	require.InDelta(t, 1.0/3.0, snap.BankruptcyProbability, 1e-9)
	require.NotNil(t, snap.BankruptcyTimingDay)
	require.Equal(t, 1, *snap.BankruptcyTimingDay)
	require.Equal(t, 1, snap.DeficitDays)
	require.Equal(t, 3, snap.TotalDays)
	require.InDelta(t, 1.5, snap.WorstDrawdown, 1e-9)
}
