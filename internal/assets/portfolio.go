// Package assets revalues portfolio holdings daily and raises cash through
// tiered liquidation when the engine runs a deficit.
package assets

import (
	"time"

	"fincast/internal/domain"
	"fincast/internal/prng"

	"github.com/shopspring/decimal"
)

// liquidDailyVolatility is the fixed 0.1% daily noise applied to liquid
// assets.
const liquidDailyVolatility = 0.001

type Manager struct {
	seed int64
}

func NewManager(seed int64) *Manager {
	return &Manager{seed: seed}
}

// UpdateAssetValues produces a new asset list with each value evolved per
// its type. All assets valued on the same day share one (seed, day)
// generator; volatile and liquid assets consume one draw each in list
// order, yield and illiquid assets consume none.
func (m *Manager) UpdateAssetValues(assets []domain.Asset, day int) []domain.Asset {
	r := prng.ForDay(m.seed, day)
	updated := make([]domain.Asset, 0, len(assets))

	for _, asset := range assets {
		next := asset.DeepCopy()

		switch asset.Type {
		case domain.AssetType_Volatile:
			change := prng.Normal(r, asset.Volatility)
			value := asset.Value.InexactFloat64() * (1 + change)
			next.Value = decimal.NewFromFloat(maxFloat(0, value))

		case domain.AssetType_Yield:
			// annual yield carried in the volatility field, compounded daily
			dailyYield := asset.Volatility / 365
			value := asset.Value.InexactFloat64() * (1 + dailyYield)
			next.Value = decimal.NewFromFloat(value)

		case domain.AssetType_Liquid:
			change := prng.Normal(r, liquidDailyVolatility)
			value := asset.Value.InexactFloat64() * (1 + change)
			next.Value = decimal.NewFromFloat(maxFloat(0, value))
		}
		// illiquid assets hold their value day to day

		updated = append(updated, next)
	}

	return updated
}

// CheckLockStatus returns true only while the asset is locked: either no
// unlock date is set, or the unlock date has not yet arrived.
func (m *Manager) CheckLockStatus(asset domain.Asset, currentDate time.Time) bool {
	if !asset.IsLocked {
		return false
	}
	if asset.LockUntil != nil && !currentDate.Before(*asset.LockUntil) {
		return false
	}
	return true
}

// LiquidateAssets raises cash by fully liquidating non-locked assets in
// priority order (liquid, volatile, yield, illiquid) until the raised
// amount covers the requirement. Liquidation is all-or-nothing per asset;
// once the requirement is met every remaining asset is returned untouched.
// Returns (remaining assets, amount raised, total penalty).
func (m *Manager) LiquidateAssets(assets []domain.Asset, requiredAmount decimal.Decimal, currentDate time.Time) ([]domain.Asset, decimal.Decimal, decimal.Decimal) {
	var liquid, volatile, yield, illiquid, locked []domain.Asset

	for _, asset := range assets {
		switch {
		case m.CheckLockStatus(asset, currentDate):
			locked = append(locked, asset)
		case asset.Type == domain.AssetType_Liquid:
			liquid = append(liquid, asset)
		case asset.Type == domain.AssetType_Volatile:
			volatile = append(volatile, asset)
		case asset.Type == domain.AssetType_Yield:
			yield = append(yield, asset)
		case asset.Type == domain.AssetType_Illiquid:
			illiquid = append(illiquid, asset)
		}
	}

	priority := append(append(append(liquid, volatile...), yield...), illiquid...)

	remaining := []domain.Asset{}
	amountRaised := decimal.Zero
	totalPenalty := decimal.Zero

	for _, asset := range priority {
		if amountRaised.GreaterThanOrEqual(requiredAmount) {
			remaining = append(remaining, asset)
			continue
		}

		penaltyFraction := decimal.NewFromFloat(asset.SalePenalty)
		saleValue := asset.Value.Mul(decimal.NewFromInt(1).Sub(penaltyFraction))
		penalty := asset.Value.Mul(penaltyFraction)

		amountRaised = amountRaised.Add(saleValue)
		totalPenalty = totalPenalty.Add(penalty)
		// asset fully liquidated; not carried into remaining
	}

	remaining = append(remaining, locked...)

	return remaining, amountRaised, totalPenalty
}

func (m *Manager) TotalValue(assets []domain.Asset) decimal.Decimal {
	total := decimal.Zero
	for _, asset := range assets {
		total = total.Add(asset.Value)
	}
	return total
}

func (m *Manager) LiquidValue(assets []domain.Asset, currentDate time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, asset := range assets {
		if asset.Type == domain.AssetType_Liquid && !m.CheckLockStatus(asset, currentDate) {
			total = total.Add(asset.Value)
		}
	}
	return total
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
