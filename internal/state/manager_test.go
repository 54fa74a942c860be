package state

import (
	"testing"
	"time"

	"fincast/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestState() domain.FinancialState {
	return domain.FinancialState{
		Day:     0,
		Date:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Balance: decimal.NewFromInt(10000),
		Assets: []domain.Asset{
			{
				ID:       "a1",
				Name:     "savings",
				Type:     domain.AssetType_Liquid,
				Value:    decimal.NewFromInt(5000),
				Currency: "USD",
			},
			{
				ID:       "a2",
				Name:     "house",
				Type:     domain.AssetType_Illiquid,
				Value:    decimal.NewFromInt(200000),
				Currency: "USD",
				IsLocked: true,
			},
		},
		Liabilities: []domain.Liability{
			{
				ID:               "l1",
				Name:             "mortgage",
				Principal:        decimal.NewFromInt(150000),
				InterestRate:     0.04,
				MonthlyPayment:   decimal.NewFromInt(900),
				Currency:         "USD",
				RemainingBalance: decimal.NewFromInt(150000),
			},
		},
		CreditScore: 650,
	}
}

func Test_Initialize(t *testing.T) {
	t.Run("mutating calls before initialization fail", func(t *testing.T) {
		m := NewManager()

		require.ErrorIs(t, m.Update(Update{}), ErrNotInitialized)
		require.ErrorIs(t, m.CreateSnapshot(0), ErrNotInitialized)
		_, err := m.Current()
		require.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("initialize exactly once", func(t *testing.T) {
		m := NewManager()
		require.NoError(t, m.Initialize(newTestState()))
		require.ErrorIs(t, m.Initialize(newTestState()), ErrAlreadyInitialized)
	})
}

func Test_Update(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Initialize(newTestState()))

	day := 5
	balance := decimal.NewFromInt(12345)
	require.NoError(t, m.Update(Update{Day: &day, Balance: &balance}))

	current, err := m.Current()
	require.NoError(t, err)
	require.Equal(t, 5, current.Day)
	require.True(t, current.Balance.Equal(balance))
	// untouched fields carry over
	require.Len(t, current.Assets, 2)
	require.Equal(t, 650.0, current.CreditScore)
}

func Test_Snapshots(t *testing.T) {
	t.Run("restore reproduces captured day and balance", func(t *testing.T) {
		m := NewManager()
		require.NoError(t, m.Initialize(newTestState()))
		require.NoError(t, m.CreateSnapshot(0))

		day := 30
		balance := decimal.NewFromInt(999)
		require.NoError(t, m.Update(Update{Day: &day, Balance: &balance}))
		require.NoError(t, m.CreateSnapshot(30))

		require.NoError(t, m.RestoreSnapshot(0))
		current, err := m.Current()
		require.NoError(t, err)
		require.Equal(t, 0, current.Day)
		require.True(t, current.Balance.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("later mutation does not alter a taken snapshot", func(t *testing.T) {
		m := NewManager()
		require.NoError(t, m.Initialize(newTestState()))
		require.NoError(t, m.CreateSnapshot(0))

		assets := []domain.Asset{}
		balance := decimal.NewFromInt(-500)
		require.NoError(t, m.Update(Update{Balance: &balance, Assets: assets}))

		snap, ok := m.Snapshot(0)
		require.True(t, ok)
		require.True(t, snap.Balance.Equal(decimal.NewFromInt(10000)))
		require.Len(t, snap.Assets, 2)
	})

	t.Run("restoring missing snapshot fails", func(t *testing.T) {
		m := NewManager()
		require.NoError(t, m.Initialize(newTestState()))
		require.ErrorIs(t, m.RestoreSnapshot(77), ErrSnapshotNotFound)
	})

	t.Run("snapshot days sorted", func(t *testing.T) {
		m := NewManager()
		require.NoError(t, m.Initialize(newTestState()))
		require.NoError(t, m.CreateSnapshot(60))
		require.NoError(t, m.CreateSnapshot(0))
		require.NoError(t, m.CreateSnapshot(30))
		require.Equal(t, "", cmp.Diff([]int{0, 30, 60}, m.SnapshotDays()))
	})
}

func Test_NAV(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Initialize(newTestState()))

	// 10000 + 5000 + 200000 - 150000
	require.True(t, m.NAV().Equal(decimal.NewFromInt(65000)), "got %s", m.NAV())
}

func Test_LiquidityRatio(t *testing.T) {
	t.Run("unlocked liquid assets count, locked ones do not", func(t *testing.T) {
		m := NewManager()
		require.NoError(t, m.Initialize(newTestState()))

		// (10000 + 5000) / (10000 + 205000)
		require.InDelta(t, 15000.0/215000.0, m.LiquidityRatio(), 1e-9)
	})

	t.Run("zero denominator", func(t *testing.T) {
		m := NewManager()
		s := newTestState()
		s.Balance = decimal.Zero
		s.Assets = nil
		s.Liabilities = nil
		require.NoError(t, m.Initialize(s))
		require.Equal(t, 0.0, m.LiquidityRatio())
	})
}

func Test_SerializeRoundTrip(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Initialize(newTestState()))

	data, err := m.Serialize()
	require.NoError(t, err)

	restored := NewManager()
	require.NoError(t, restored.Deserialize(data))

	got, err := restored.Current()
	require.NoError(t, err)
	want, err := m.Current()
	require.NoError(t, err)
	require.Equal(t, want.Day, got.Day)
	require.True(t, want.Balance.Equal(got.Balance))
	require.Len(t, got.Assets, len(want.Assets))
	require.Len(t, got.Liabilities, len(want.Liabilities))
}

func Test_Validate(t *testing.T) {
	m := NewManager()
	require.False(t, m.Validate())

	require.NoError(t, m.Initialize(newTestState()))
	require.True(t, m.Validate())

	negative := decimal.NewFromInt(-1)
	require.NoError(t, m.Update(Update{Balance: &negative}))
	require.False(t, m.Validate())
}
