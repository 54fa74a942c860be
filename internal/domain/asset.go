package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetType string

const (
	AssetType_Liquid   AssetType = "liquid"
	AssetType_Illiquid AssetType = "illiquid"
	AssetType_Yield    AssetType = "yield"
	AssetType_Volatile AssetType = "volatile"
)

// Asset is a single holding in the portfolio. Values are never mutated in
// place - daily valuation and liquidation always produce new instances so
// that snapshots stay independent of the live state.
type Asset struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        AssetType       `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Currency    string          `json:"currency"`
	Volatility  float64         `json:"volatility"`
	IsLocked    bool            `json:"is_locked"`
	LockUntil   *time.Time      `json:"lock_until,omitempty"`
	SalePenalty float64         `json:"sale_penalty"`
}

func (a Asset) DeepCopy() Asset {
	out := a
	if a.LockUntil != nil {
		t := *a.LockUntil
		out.LockUntil = &t
	}
	return out
}

func CopyAssets(assets []Asset) []Asset {
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.DeepCopy())
	}
	return out
}
