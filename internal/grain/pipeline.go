package grain

import (
	"log/slog"

	"github.com/sekarsister/cropstats/internal/config"
	"github.com/sekarsister/cropstats/internal/statcan"
)

// Result carries every stage's output for one run.
type Result struct {
	Aggregation Aggregation
	Panel       Panel
	Annual      []AnnualAggregate
	Changes     []LogChange
	Waterfall   Waterfall
	Production  []YearValue
	Area        []YearValue
	Components  []ComponentPoint
	Statistics  Statistics

	// Implausible lists transitions flagged by ImplausibleWithin.
	Implausible []LogChange
}

// Run executes the decomposition pipeline over raw table rows.
func Run(rows []statcan.Row, cfg config.GrainConfig, logger *slog.Logger) Result {
	agg := Aggregate(rows, NewFilter(cfg))
	logger.Info("rows aggregated",
		"rows", len(rows),
		"accepted", agg.Accepted,
		"skipped_geography", agg.Skipped[SkipGeography],
		"skipped_category", agg.Skipped[SkipCategory],
		"skipped_disposition", agg.Skipped[SkipDisposition],
		"skipped_period", agg.Skipped[SkipPeriod],
		"skipped_value", agg.Skipped[SkipValue],
	)

	panel := BuildPanel(agg.Sums)
	annual := BuildAnnual(panel)
	changes := Decompose(panel, annual)
	logger.Info("decomposition built",
		"panel_entries", panel.Len(),
		"years", len(annual),
		"transitions", len(changes),
	)

	implausible := ImplausibleWithin(changes, cfg.PlausibilityMargin)
	for _, c := range implausible {
		logger.Warn("within-crop effect exceeds average yield change",
			"year", c.Period,
			"within", c.Within,
			"delta_ln_y_bar", c.DeltaLnYield,
		)
	}

	production := AnnualTotals(agg.Sums, Production)
	area := AnnualTotals(agg.Sums, Area)

	return Result{
		Aggregation: agg,
		Panel:       panel,
		Annual:      annual,
		Changes:     changes,
		Waterfall:   BuildWaterfall(changes, cfg.BarSpread),
		Production:  production,
		Area:        area,
		Components:  CropComponents(agg.Sums),
		Statistics:  BuildStatistics(production, area, changes, cfg),
		Implausible: implausible,
	}
}
