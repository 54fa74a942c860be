package metrics

import (
	"fmt"
	"math"
)

// DefaultCollapseBins partitions the horizon for the collapse histogram.
const DefaultCollapseBins = 12

// CollapseDensity is a coarse temporal risk histogram: per equal-size chunk
// of the horizon, the fraction of deficit days.
type CollapseDensity struct {
	Bins    []string  `json:"bins"`
	Density []float64 `json:"density"`
}

// RiskSnapshot is an aggregated read-only view computed at query time.
type RiskSnapshot struct {
	BankruptcyProbability float64         `json:"bankruptcy_probability"`
	BankruptcyTimingDay   *int            `json:"bankruptcy_timing_day"`
	ResilienceScoreIndex  float64         `json:"resilience_score_index"`
	WorstDrawdown         float64         `json:"worst_drawdown"`
	DeficitDays           int             `json:"deficit_days"`
	TotalDays             int             `json:"total_days"`
	CollapseDensity       CollapseDensity `json:"collapse_density"`
}

// RiskAnalyzer ingests one balance per day and tracks deficit counts, the
// running peak, and the worst drawdown.
type RiskAnalyzer struct {
	balances      []float64
	deficitDays   int
	totalDays     int
	worstDrawdown float64
	peakBalance   float64
}

func NewRiskAnalyzer() *RiskAnalyzer {
	return &RiskAnalyzer{}
}

func (r *RiskAnalyzer) RecordDay(balance float64) {
	r.balances = append(r.balances, balance)
	r.totalDays++

	if balance < 0 {
		r.deficitDays++
	}

	if balance > r.peakBalance {
		r.peakBalance = balance
	}
	if r.peakBalance > 0 {
		drawdown := (r.peakBalance - balance) / r.peakBalance
		if drawdown > r.worstDrawdown {
			r.worstDrawdown = drawdown
		}
	}
}

// BankruptcyProbability is deficit days over total days observed - a
// frequency proxy, not a model-based probability.
func (r *RiskAnalyzer) BankruptcyProbability() float64 {
	if r.totalDays == 0 {
		return 0
	}
	return float64(r.deficitDays) / float64(r.totalDays)
}

// BankruptcyTiming returns the first day index where the balance went
// negative, or nil.
func (r *RiskAnalyzer) BankruptcyTiming() *int {
	for i, b := range r.balances {
		if b < 0 {
			day := i
			return &day
		}
	}
	return nil
}

// ResilienceScoreIndex blends non-bankruptcy, inverse drawdown, and
// recovery into [0, 100]. The recovery ratio measures how much of the worst
// loss has since been recovered.
func (r *RiskAnalyzer) ResilienceScoreIndex() float64 {
	bp := r.BankruptcyProbability()
	dd := math.Min(1, r.worstDrawdown)

	recovery := 1.0
	if len(r.balances) >= 2 {
		minBal := r.balances[0]
		for _, b := range r.balances {
			if b < minBal {
				minBal = b
			}
		}
		finalBal := r.balances[len(r.balances)-1]
		if r.peakBalance > 0 && minBal < r.peakBalance {
			recovery = math.Max(0, (finalBal-minBal)/(r.peakBalance-minBal))
		}
	}

	rsi := (0.40*(1-bp) + 0.30*(1-dd) + 0.30*recovery) * 100
	return math.Max(0, math.Min(100, rsi))
}

func (r *RiskAnalyzer) WorstDrawdown() float64 {
	return r.worstDrawdown
}

// CollapseTimingDensity splits the balance history into bins equal-size
// chunks and reports the fraction of deficit days per chunk.
func (r *RiskAnalyzer) CollapseTimingDensity(bins int) CollapseDensity {
	out := CollapseDensity{Bins: []string{}, Density: []float64{}}
	if len(r.balances) == 0 {
		return out
	}
	if bins <= 0 {
		bins = DefaultCollapseBins
	}

	chunkSize := len(r.balances) / bins
	if chunkSize < 1 {
		chunkSize = 1
	}
	for i := 0; i < bins; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(r.balances) {
			end = len(r.balances)
		}
		if start >= end {
			break
		}
		deficits := 0
		for _, b := range r.balances[start:end] {
			if b < 0 {
				deficits++
			}
		}
		out.Density = append(out.Density, float64(deficits)/float64(end-start))
		out.Bins = append(out.Bins, fmt.Sprintf("Period %d", i+1))
	}
	return out
}

func (r *RiskAnalyzer) Snapshot() RiskSnapshot {
	return RiskSnapshot{
		BankruptcyProbability: r.BankruptcyProbability(),
		BankruptcyTimingDay:   r.BankruptcyTiming(),
		ResilienceScoreIndex:  r.ResilienceScoreIndex(),
		WorstDrawdown:         r.worstDrawdown,
		DeficitDays:           r.deficitDays,
		TotalDays:             r.totalDays,
		CollapseDensity:       r.CollapseTimingDensity(DefaultCollapseBins),
	}
}
