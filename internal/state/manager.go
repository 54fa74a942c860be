// Package state owns the canonical FinancialState of one simulation, its
// snapshot store, and the derived NAV / liquidity calculations.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"fincast/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrNotInitialized     = errors.New("state not initialized")
	ErrAlreadyInitialized = errors.New("state already initialized")
	ErrSnapshotNotFound   = errors.New("no snapshot found for day")
)

// Update is a partial state update; nil fields keep their current value.
// Asset and liability lists are replaced wholesale, never merged.
type Update struct {
	Day         *int
	Date        *time.Time
	Balance     *decimal.Decimal
	Assets      []domain.Asset
	Liabilities []domain.Liability
	CreditScore *float64
}

type Manager struct {
	current      *domain.FinancialState
	snapshots    map[int]domain.FinancialState
	transactions []domain.Transaction
}

func NewManager() *Manager {
	return &Manager{
		snapshots: map[int]domain.FinancialState{},
	}
}

// Initialize may be called exactly once, before any state-mutating call.
func (m *Manager) Initialize(s domain.FinancialState) error {
	if m.current != nil {
		return ErrAlreadyInitialized
	}
	copied := s.DeepCopy()
	m.current = &copied
	return nil
}

func (m *Manager) Current() (domain.FinancialState, error) {
	if m.current == nil {
		return domain.FinancialState{}, ErrNotInitialized
	}
	return *m.current, nil
}

// Update replaces the current state with a new instance merged from the
// current fields and the provided partial update.
func (m *Manager) Update(u Update) error {
	if m.current == nil {
		return ErrNotInitialized
	}
	next := *m.current
	if u.Day != nil {
		next.Day = *u.Day
	}
	if u.Date != nil {
		next.Date = *u.Date
	}
	if u.Balance != nil {
		next.Balance = *u.Balance
	}
	if u.Assets != nil {
		next.Assets = domain.CopyAssets(u.Assets)
	}
	if u.Liabilities != nil {
		next.Liabilities = domain.CopyLiabilities(u.Liabilities)
	}
	if u.CreditScore != nil {
		next.CreditScore = *u.CreditScore
	}
	m.current = &next
	return nil
}

func (m *Manager) CreateSnapshot(day int) error {
	if m.current == nil {
		return ErrNotInitialized
	}
	m.snapshots[day] = m.current.DeepCopy()
	return nil
}

// RestoreSnapshot replaces the current state with a copy of the stored
// snapshot. The snapshot store itself is never mutated by a restore.
func (m *Manager) RestoreSnapshot(day int) error {
	snap, ok := m.snapshots[day]
	if !ok {
		return fmt.Errorf("%w: %d", ErrSnapshotNotFound, day)
	}
	restored := snap.DeepCopy()
	m.current = &restored
	return nil
}

func (m *Manager) Snapshot(day int) (domain.FinancialState, bool) {
	snap, ok := m.snapshots[day]
	if !ok {
		return domain.FinancialState{}, false
	}
	return snap.DeepCopy(), true
}

func (m *Manager) SnapshotDays() []int {
	days := make([]int, 0, len(m.snapshots))
	for day := range m.snapshots {
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

func (m *Manager) RecordTransaction(tx domain.Transaction) {
	m.transactions = append(m.transactions, tx)
}

func (m *Manager) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out
}

// NAV is cash + total asset value - total liability balances.
func (m *Manager) NAV() decimal.Decimal {
	if m.current == nil {
		return decimal.Zero
	}
	total := m.current.Balance
	for _, a := range m.current.Assets {
		total = total.Add(a.Value)
	}
	for _, l := range m.current.Liabilities {
		total = total.Sub(l.RemainingBalance)
	}
	return total
}

// LiquidityRatio is (cash + unlocked liquid assets) / (cash + all assets),
// or 0 when the denominator is zero.
func (m *Manager) LiquidityRatio() float64 {
	if m.current == nil {
		return 0
	}
	liquid := m.current.Balance
	total := m.current.Balance
	for _, a := range m.current.Assets {
		total = total.Add(a.Value)
		if a.Type == domain.AssetType_Liquid && !a.IsLocked {
			liquid = liquid.Add(a.Value)
		}
	}
	if total.IsZero() {
		return 0
	}
	ratio, _ := liquid.Div(total).Float64()
	return ratio
}

func (m *Manager) Serialize() ([]byte, error) {
	if m.current == nil {
		return nil, ErrNotInitialized
	}
	return json.Marshal(m.current)
}

func (m *Manager) Deserialize(data []byte) error {
	var s domain.FinancialState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to deserialize state: %w", err)
	}
	m.current = &s
	return nil
}

// Validate reports whether the current state satisfies its invariants.
func (m *Manager) Validate() bool {
	if m.current == nil {
		return false
	}
	if m.current.Balance.Sign() < 0 {
		return false
	}
	if m.current.CreditScore < domain.MinCreditScore || m.current.CreditScore > domain.MaxCreditScore {
		return false
	}
	return true
}
