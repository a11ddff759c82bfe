package grain

import "math"

// LogChange decomposes the change in total production between two adjacent
// annual aggregates:
//
//	ΔlnP = ΔlnA + ΔlnȲ,  ΔlnȲ = Within + Mix
//
// Mix is the residual ΔlnȲ − Within.
type LogChange struct {
	Period       int     `json:"year"`
	PrevPeriod   int     `json:"prev_year"`
	DeltaLnP     float64 `json:"delta_ln_p"`
	DeltaLnA     float64 `json:"delta_ln_a"`
	DeltaLnYield float64 `json:"delta_ln_y_bar"`
	Within       float64 `json:"within_effective_yield"`
	Mix          float64 `json:"crop_mix"`
}

// Decompose walks adjacent pairs of annual aggregates. A pair where either
// side has non-positive totals is skipped.
func Decompose(p Panel, annual []AnnualAggregate) []LogChange {
	var changes []LogChange

	for i := 1; i < len(annual); i++ {
		prev, curr := annual[i-1], annual[i]
		if !positiveTotals(prev) || !positiveTotals(curr) {
			continue
		}

		change := LogChange{
			Period:       curr.Period,
			PrevPeriod:   prev.Period,
			DeltaLnP:     math.Log(curr.TotalProduction) - math.Log(prev.TotalProduction),
			DeltaLnA:     math.Log(curr.TotalArea) - math.Log(prev.TotalArea),
			DeltaLnYield: math.Log(curr.AvgYield) - math.Log(prev.AvgYield),
			Within:       withinEffect(p, prev, curr),
		}
		change.Mix = change.DeltaLnYield - change.Within

		changes = append(changes, change)
	}

	return changes
}

func positiveTotals(a AnnualAggregate) bool {
	return a.TotalProduction > 0 && a.TotalArea > 0 && a.AvgYield > 0
}

// withinEffect weights each common crop's own yield log-change by its area
// share in the earlier year. Crops present in only one year add nothing.
func withinEffect(p Panel, prev, curr AnnualAggregate) float64 {
	var within float64
	for _, before := range p.InPeriod(prev.Period) {
		after, ok := p.Lookup(before.Category, curr.Period)
		if !ok {
			continue
		}
		share := before.Area / prev.TotalArea
		within += share * (math.Log(after.EffectiveYield) - math.Log(before.EffectiveYield))
	}
	return within
}

// ImplausibleWithin returns the transitions whose within-crop effect exceeds
// the average-yield change in magnitude by more than margin.
func ImplausibleWithin(changes []LogChange, margin float64) []LogChange {
	var flagged []LogChange
	for _, c := range changes {
		if math.Abs(c.Within) > math.Abs(c.DeltaLnYield)+margin {
			flagged = append(flagged, c)
		}
	}
	return flagged
}
