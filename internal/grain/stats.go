package grain

import (
	"math"
	"strconv"

	"github.com/sekarsister/cropstats/internal/config"
)

// Statistics are the scalar facts quoted in the grain production story.
// JSON names are the ones the front end already reads.
type Statistics struct {
	FirstYear                     int     `json:"firstYear"`
	LastYear                      int     `json:"lastYear"`
	FirstProduction               float64 `json:"firstProduction"`
	LastProduction                float64 `json:"lastProduction"`
	Production2025MillionTonnes   float64 `json:"production2025MillionTonnes"`
	ProductionRatio               float64 `json:"productionRatio"`
	AreaFirstYear                 int     `json:"areaFirstYear"`
	AreaLastYear                  int     `json:"areaLastYear"`
	AreaFirst                     float64 `json:"areaFirst"`
	AreaLast                      float64 `json:"areaLast"`
	AreaRatio                     float64 `json:"areaRatio"`
	AreaMultiplier                string  `json:"areaMultiplier"`
	CumulativeLogChangeProduction float64 `json:"cumulativeLogChangeProduction"`
	CumulativeArea                float64 `json:"cumulativeArea"`
	CumulativeWithin              float64 `json:"cumulativeWithin"`
	CumulativeMix                 float64 `json:"cumulativeMix"`
	ProductionMultiplier          float64 `json:"productionMultiplier"`
	WithinExceeds15Pre1960        int     `json:"withinExceeds15Pre1960"`
	WithinExceeds15Post1960       int     `json:"withinExceeds15Post1960"`
}

var multiplierWords = []struct {
	ratio float64
	word  string
}{
	{10, "decupled"},
	{9, "nonupled"},
	{8, "octupled"},
	{7, "septupled"},
	{6, "sextupled"},
	{5, "quintupled"},
	{4, "quadrupled"},
	{3, "tripled"},
}

// MultiplierWord names the largest whole multiple not above ratio. Anything
// below 3× reads as "doubled".
func MultiplierWord(ratio float64) string {
	for _, m := range multiplierWords {
		if ratio >= m.ratio {
			return m.word
		}
	}
	return "doubled"
}

// BuildStatistics reduces the annual series and log changes to the summary
// figures. Series are assumed sorted by year.
func BuildStatistics(production, area []YearValue, changes []LogChange, cfg config.GrainConfig) Statistics {
	stats := Statistics{
		FirstYear:      cfg.BaseYear,
		LastYear:       cfg.BaseYear,
		AreaFirstYear:  cfg.BaseYear,
		AreaLastYear:   cfg.BaseYear,
		AreaMultiplier: MultiplierWord(0),
	}

	if len(production) > 0 {
		first, last := production[0], production[len(production)-1]
		stats.FirstYear, stats.LastYear = first.Year, last.Year
		stats.FirstProduction, stats.LastProduction = first.Value, last.Value
		stats.Production2025MillionTonnes = roundHalfEven(last.Value/1e6, 1)
		if first.Value > 0 {
			ratio := last.Value / first.Value
			stats.ProductionRatio = roundHalfEven(ratio, 1)
			stats.ProductionMultiplier = roundHalfEven(ratio, 1)
		}
	}

	if len(area) > 0 {
		first, last := area[0], area[len(area)-1]
		stats.AreaFirstYear, stats.AreaLastYear = first.Year, last.Year
		stats.AreaFirst, stats.AreaLast = first.Value, last.Value
		if first.Value > 0 {
			stats.AreaRatio = last.Value / first.Value
		}
		stats.AreaMultiplier = MultiplierWord(stats.AreaRatio)
	}

	var sumP, sumA, sumWithin, sumMix float64
	for _, c := range changes {
		sumP += c.DeltaLnP
		sumA += c.DeltaLnA
		sumWithin += c.Within
		sumMix += c.Mix

		if math.Abs(c.Within) > cfg.WithinThreshold {
			if c.Period < cfg.CutoffYear {
				stats.WithinExceeds15Pre1960++
			} else {
				stats.WithinExceeds15Post1960++
			}
		}
	}
	stats.CumulativeLogChangeProduction = roundHalfEven(sumP*100, 0)
	stats.CumulativeArea = roundHalfEven(sumA*100, 0)
	stats.CumulativeWithin = roundHalfEven(sumWithin*100, 0)
	stats.CumulativeMix = roundHalfEven(sumMix*100, 0)

	return stats
}

// roundHalfEven rounds the decimal value of x to places digits. Exact ties
// go to the even digit; 0.35 is stored just below the tie and rounds down.
func roundHalfEven(x float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil || r == 0 {
		return 0 // no "-0" in JSON
	}
	return r
}
