package main

import (
	"fmt"
	"io"

	"github.com/sekarsister/cropstats/internal/cpi"
	"github.com/sekarsister/cropstats/internal/grain"
)

func printGrainSummary(w io.Writer, r grain.Result) {
	st := r.Statistics

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Crop-years: %d | Years: %d | Transitions: %d\n",
		r.Panel.Len(), len(r.Annual), len(r.Changes))
	fmt.Fprintf(w, "Production %d: %.1f Mt (%.1fx %d)\n",
		st.LastYear, st.Production2025MillionTonnes, st.ProductionRatio, st.FirstYear)
	fmt.Fprintf(w, "Seeded area %d-%d: %s (%.1fx)\n",
		st.AreaFirstYear, st.AreaLastYear, st.AreaMultiplier, st.AreaRatio)
	fmt.Fprintf(w, "Cumulative Δln production: %.0f pp\n", st.CumulativeLogChangeProduction)
	fmt.Fprintf(w, "  area %.0f | within-crop yield %.0f | crop mix %.0f\n",
		st.CumulativeArea, st.CumulativeWithin, st.CumulativeMix)
	fmt.Fprintf(w, "Years with |within| > threshold: %d before cutoff, %d after\n",
		st.WithinExceeds15Pre1960, st.WithinExceeds15Post1960)

	if len(r.Implausible) > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", len(r.Implausible))
		for _, c := range r.Implausible {
			fmt.Fprintf(w, "  [%d] within %.3f vs Δln avg yield %.3f\n", c.Period, c.Within, c.DeltaLnYield)
		}
	}
}

func printCPISummary(w io.Writer, s cpi.Series) {
	first, last := s.First(), s.Last()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "✓ Processed %d data points\n", len(s.Data))
	fmt.Fprintf(w, "  Date range: %s to %s\n", first.Date, last.Date)
	fmt.Fprintf(w, "  Base value: %g\n", s.BaseValue)
	fmt.Fprintf(w, "  Change: %+.1f%%\n", s.Change)
}
