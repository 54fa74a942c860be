package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_CalculateIncomeTax(t *testing.T) {
	e := NewEngine(nil, 0)

	t.Run("income below first taxed bracket yields zero", func(t *testing.T) {
		got := e.CalculateIncomeTax(decimal.NewFromInt(30000))
		require.True(t, got.IsZero(), "got %s", got)
	})

	t.Run("100k is strictly positive", func(t *testing.T) {
		// 50k at 0% + 50k at 10%
		got := e.CalculateIncomeTax(decimal.NewFromInt(100000))
		require.True(t, got.Equal(decimal.NewFromInt(5000)), "got %s", got)
	})

	t.Run("top bracket takes the remainder", func(t *testing.T) {
		// 50k*0 + 50k*0.10 + 100k*0.20 + 100k*0.30
		got := e.CalculateIncomeTax(decimal.NewFromInt(300000))
		require.True(t, got.Equal(decimal.NewFromInt(55000)), "got %s", got)
	})

	t.Run("monotonic in income", func(t *testing.T) {
		prev := decimal.Zero
		for _, income := range []int64{10000, 60000, 120000, 250000, 500000} {
			tax := e.CalculateIncomeTax(decimal.NewFromInt(income))
			require.True(t, tax.GreaterThanOrEqual(prev), "tax not monotonic at %d", income)
			prev = tax
		}
	})

	t.Run("negative income yields zero", func(t *testing.T) {
		require.True(t, e.CalculateIncomeTax(decimal.NewFromInt(-5000)).IsZero())
	})
}

func Test_CapitalGains(t *testing.T) {
	t.Run("unrealized gains never taxed", func(t *testing.T) {
		e := NewEngine(nil, 0)
		e.RecordUnrealizedGain(decimal.NewFromInt(100000))
		require.True(t, e.CapitalGainsTax().IsZero())
	})

	t.Run("realized gains taxed at fixed rate", func(t *testing.T) {
		e := NewEngine(nil, 0)
		e.RecordRealizedGain(decimal.NewFromInt(10000))
		require.True(t, e.CapitalGainsTax().Equal(decimal.NewFromInt(1500)))
	})

	t.Run("custom rate", func(t *testing.T) {
		e := NewEngine(nil, 0.20)
		e.RecordRealizedGain(decimal.NewFromInt(1000))
		require.True(t, e.CapitalGainsTax().Equal(decimal.NewFromInt(200)))
	})
}

func Test_ApplyAnnual(t *testing.T) {
	e := NewEngine(nil, 0)
	e.RecordRealizedGain(decimal.NewFromInt(10000))

	t.Run("income tax plus capital gains", func(t *testing.T) {
		got := e.ApplyAnnual(decimal.NewFromInt(100000), true)
		require.True(t, got.Equal(decimal.NewFromInt(6500)), "got %s", got)
	})

	t.Run("capital gains excluded on request", func(t *testing.T) {
		got := e.ApplyAnnual(decimal.NewFromInt(100000), false)
		require.True(t, got.Equal(decimal.NewFromInt(5000)), "got %s", got)
	})
}

func Test_ResetAnnualGains(t *testing.T) {
	e := NewEngine(nil, 0)
	e.RecordRealizedGain(decimal.NewFromInt(500))
	e.RecordUnrealizedGain(decimal.NewFromInt(700))

	e.ResetAnnualGains()
	require.True(t, e.RealizedGains().IsZero())
	require.True(t, e.UnrealizedGains().IsZero())
	require.True(t, e.CapitalGainsTax().IsZero())
}

func Test_EffectiveRate(t *testing.T) {
	e := NewEngine(nil, 0)
	require.Equal(t, 0.0, e.EffectiveRate(decimal.Zero))
	require.InDelta(t, 0.05, e.EffectiveRate(decimal.NewFromInt(100000)), 1e-9)
}

func Test_BracketsSortedOnConstruction(t *testing.T) {
	e := NewEngine([]Bracket{
		{Threshold: 100000, Rate: 0.20},
		{Threshold: 0, Rate: 0.0},
		{Threshold: 50000, Rate: 0.10},
	}, 0)

	got := e.CalculateIncomeTax(decimal.NewFromInt(100000))
	require.True(t, got.Equal(decimal.NewFromInt(5000)), "got %s", got)
}
