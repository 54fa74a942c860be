// Package metrics computes rolling statistical measures and risk analytics
// over the committed daily balance stream.
package metrics

import (
	"github.com/montanaflynn/stats"
)

const (
	// DefaultWindowSize is the trailing balance window for rolling metrics.
	DefaultWindowSize = 90
	// DefaultShockLookback bounds shock clustering to recent events.
	DefaultShockLookback = 30
	// shockThreshold: a day-over-day drop below -5% counts as a shock.
	shockThreshold = -0.05
)

type Shock struct {
	Day          int     `json:"day"`
	Magnitude    float64 `json:"magnitude"`
	AbsoluteDrop float64 `json:"absolute_drop"`
}

// MetricsSnapshot is an aggregated read-only view computed at query time.
type MetricsSnapshot struct {
	ShockClusteringDensity float64 `json:"shock_clustering_density"`
	RecoverySlope          float64 `json:"recovery_slope"`
	RollingVolatility      float64 `json:"rolling_volatility"`
	TotalShocks            int     `json:"total_shocks"`
}

// RollingEngine keeps a fixed-size trailing window of daily balances and an
// unbounded log of detected shock events.
type RollingEngine struct {
	windowSize int
	window     []float64
	shocks     []Shock
}

func NewRollingEngine(windowSize int) *RollingEngine {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &RollingEngine{windowSize: windowSize}
}

// RecordDay feeds one day of balance data. A shock is recorded when the
// day-over-day change drops below -5%; the previous balance must be
// positive for the ratio to be meaningful.
func (e *RollingEngine) RecordDay(day int, balance, prevBalance float64) {
	e.window = append(e.window, balance)
	if len(e.window) > e.windowSize {
		e.window = e.window[1:]
	}

	if prevBalance > 0 {
		pctChange := (balance - prevBalance) / prevBalance
		if pctChange < shockThreshold {
			e.shocks = append(e.shocks, Shock{
				Day:          day,
				Magnitude:    -pctChange,
				AbsoluteDrop: prevBalance - balance,
			})
		}
	}
}

// ShockClusteringDensity is frequency times mean magnitude of shocks within
// lookback days of the most recent shock. 0 when no shocks recorded.
func (e *RollingEngine) ShockClusteringDensity(lookbackDays int) float64 {
	if len(e.shocks) == 0 {
		return 0
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultShockLookback
	}

	latestDay := e.shocks[len(e.shocks)-1].Day
	magnitudes := []float64{}
	for _, s := range e.shocks {
		if s.Day > latestDay-lookbackDays {
			magnitudes = append(magnitudes, s.Magnitude)
		}
	}
	if len(magnitudes) == 0 {
		return 0
	}

	frequency := float64(len(magnitudes)) / float64(lookbackDays)
	avgMagnitude, err := stats.Mean(magnitudes)
	if err != nil {
		return 0
	}
	return frequency * avgMagnitude
}

// RecoverySlope fits a least-squares line to the window segment following
// its minimum and returns the slope in dollars per day, floored at 0 -
// only genuine upward recovery counts. 0 while the trough is still the
// final element.
func (e *RollingEngine) RecoverySlope() float64 {
	if len(e.window) < 3 {
		return 0
	}

	minIdx := 0
	for i, b := range e.window {
		if b < e.window[minIdx] {
			minIdx = i
		}
	}
	if minIdx >= len(e.window)-1 {
		return 0
	}

	segment := e.window[minIdx:]
	series := make(stats.Series, 0, len(segment))
	for i, b := range segment {
		series = append(series, stats.Coordinate{X: float64(i), Y: b})
	}
	fitted, err := stats.LinearRegression(series)
	if err != nil || len(fitted) < 2 {
		return 0
	}
	slope := (fitted[len(fitted)-1].Y - fitted[0].Y) / (fitted[len(fitted)-1].X - fitted[0].X)
	if slope < 0 {
		return 0
	}
	return slope
}

// RollingVolatility is the population standard deviation of first
// differences within the window.
func (e *RollingEngine) RollingVolatility() float64 {
	if len(e.window) < 2 {
		return 0
	}
	changes := make([]float64, 0, len(e.window)-1)
	for i := 1; i < len(e.window); i++ {
		changes = append(changes, e.window[i]-e.window[i-1])
	}
	stdev, err := stats.StandardDeviationPopulation(changes)
	if err != nil {
		return 0
	}
	return stdev
}

func (e *RollingEngine) TotalShocks() int {
	return len(e.shocks)
}

func (e *RollingEngine) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ShockClusteringDensity: e.ShockClusteringDensity(DefaultShockLookback),
		RecoverySlope:          e.RecoverySlope(),
		RollingVolatility:      e.RollingVolatility(),
		TotalShocks:            len(e.shocks),
	}
}
