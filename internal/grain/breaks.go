package grain

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// YearTicker places x-axis ticks on round years: every 25 years for spans
// over a century, every 20 for spans of 50 or more, otherwise every 10. The
// last year is appended when it does not fall on the interval.
type YearTicker struct{}

var _ plot.Ticker = YearTicker{}

func (YearTicker) Ticks(min, max float64) []plot.Tick {
	lo, hi := int(math.Ceil(min)), int(math.Floor(max))

	interval := 10
	switch span := hi - lo; {
	case span > 100:
		interval = 25
	case span >= 50:
		interval = 20
	}

	first := lo
	for first%interval != 0 {
		first++
	}

	var ticks []plot.Tick
	for year := first; year <= hi; year += interval {
		ticks = append(ticks, plot.Tick{Value: float64(year), Label: strconv.Itoa(year)})
	}
	if len(ticks) > 0 && int(ticks[len(ticks)-1].Value) < hi {
		ticks = append(ticks, plot.Tick{Value: float64(hi), Label: strconv.Itoa(hi)})
	}
	return ticks
}

// YearBreaks returns the tick years for a set of years.
func YearBreaks(years []int) []int {
	breaks := []int{}
	if len(years) == 0 {
		return breaks
	}

	lo, hi := years[0], years[0]
	for _, y := range years[1:] {
		lo = min(lo, y)
		hi = max(hi, y)
	}

	for _, tick := range (YearTicker{}).Ticks(float64(lo), float64(hi)) {
		breaks = append(breaks, int(tick.Value))
	}
	return breaks
}
