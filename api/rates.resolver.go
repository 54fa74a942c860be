package api

import (
	"fmt"
	"strconv"
	"time"

	"fincast/internal/currency"

	"github.com/gin-gonic/gin"
)

const (
	tickerSeed       = 42
	tickerVolatility = 0.005
)

var tickerPairs = [][2]string{
	{"EUR", "USD"},
	{"GBP", "USD"},
	{"USD", "PKR"},
}

type RatePair struct {
	Pair     string  `json:"pair"`
	Rate     float64 `json:"rate"`
	PrevRate float64 `json:"prev_rate"`
	Change   float64 `json:"change"`
}

type RatesResponse struct {
	Day   int        `json:"day"`
	Rates []RatePair `json:"rates"`
}

// rates replays the deterministic rate walk for the requested day offset
// (defaulting to today) and returns each display pair with its prior-day
// value, so clients can render direction arrows.
func (m ApiHandler) rates(c *gin.Context) {
	day := int(time.Now().UTC().Unix() / 86400)
	if raw := c.Query("day"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			returnErrorJsonCode(fmt.Errorf("invalid day %q", raw), c, 400)
			return
		}
		day = parsed
	}

	supported := []string{"USD", "EUR", "GBP", "PKR"}

	rateFor := func(day int) *currency.Engine {
		e := currency.NewEngine("USD", supported, tickerSeed)
		e.UpdateRatesDaily(day, tickerVolatility)
		return e
	}

	today := rateFor(day)

	prevDay := day
	if prevDay > 0 {
		prevDay = day - 1
	}
	yesterday := rateFor(prevDay)

	pairs := make([]RatePair, 0, len(tickerPairs))
	for _, p := range tickerPairs {
		rate, err := today.Rate(p[0], p[1])
		if err != nil {
			returnErrorJson(err, c)
			return
		}
		prev, err := yesterday.Rate(p[0], p[1])
		if err != nil {
			returnErrorJson(err, c)
			return
		}
		pairs = append(pairs, RatePair{
			Pair:     fmt.Sprintf("%s/%s", p[0], p[1]),
			Rate:     rate,
			PrevRate: prev,
			Change:   rate - prev,
		})
	}

	c.JSON(200, RatesResponse{Day: day, Rates: pairs})
}
