package grain

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	annualSheet    = "Annual_Aggregates"
	changesSheet   = "Log_Changes"
	waterfallSheet = "Cumulative_Decomposition"
	statsSheet     = "Statistics"
)

// WriteWorkbook saves the decomposition tables as an xlsx workbook.
func WriteWorkbook(r Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", annualSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{changesSheet, waterfallSheet, statsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	writeHeaders(f, annualSheet, []string{"Year", "Total Production (t)", "Total Seeded Area (ha)",
		"Area-weighted Yield (t/ha)", "Crops"}, 22)
	for i, a := range r.Annual {
		row := i + 2
		f.SetCellValue(annualSheet, fmt.Sprintf("A%d", row), a.Period)
		f.SetCellValue(annualSheet, fmt.Sprintf("B%d", row), a.TotalProduction)
		f.SetCellValue(annualSheet, fmt.Sprintf("C%d", row), a.TotalArea)
		f.SetCellValue(annualSheet, fmt.Sprintf("D%d", row), a.AvgYield)
		f.SetCellValue(annualSheet, fmt.Sprintf("E%d", row), len(a.Shares))
	}

	writeHeaders(f, changesSheet, []string{"Year", "Previous Year", "Δln Production", "Δln Seeded Area",
		"Δln Avg Yield", "Within-Crop Yield", "Crop Mix"}, 18)
	for i, c := range r.Changes {
		row := i + 2
		f.SetCellValue(changesSheet, fmt.Sprintf("A%d", row), c.Period)
		f.SetCellValue(changesSheet, fmt.Sprintf("B%d", row), c.PrevPeriod)
		f.SetCellValue(changesSheet, fmt.Sprintf("C%d", row), c.DeltaLnP)
		f.SetCellValue(changesSheet, fmt.Sprintf("D%d", row), c.DeltaLnA)
		f.SetCellValue(changesSheet, fmt.Sprintf("E%d", row), c.DeltaLnYield)
		f.SetCellValue(changesSheet, fmt.Sprintf("F%d", row), c.Within)
		f.SetCellValue(changesSheet, fmt.Sprintf("G%d", row), c.Mix)
	}

	writeHeaders(f, waterfallSheet, []string{"Year", "Component", "Value", "Cumulative Start",
		"Cumulative End", "X Position"}, 20)
	for i, s := range r.Waterfall.Segments {
		row := i + 2
		f.SetCellValue(waterfallSheet, fmt.Sprintf("A%d", row), s.Year)
		f.SetCellValue(waterfallSheet, fmt.Sprintf("B%d", row), s.Component.String())
		f.SetCellValue(waterfallSheet, fmt.Sprintf("C%d", row), s.Value)
		f.SetCellValue(waterfallSheet, fmt.Sprintf("D%d", row), s.CumulativeStart)
		f.SetCellValue(waterfallSheet, fmt.Sprintf("E%d", row), s.CumulativeEnd)
		f.SetCellValue(waterfallSheet, fmt.Sprintf("F%d", row), s.XPosition)
	}

	st := r.Statistics
	statRows := [][]any{
		{"Statistic", "Value"},
		{"First year", st.FirstYear},
		{"Last year", st.LastYear},
		{"Production, last year (Mt)", st.Production2025MillionTonnes},
		{"Production ratio", st.ProductionRatio},
		{"Area first year", st.AreaFirstYear},
		{"Area last year", st.AreaLastYear},
		{"Area ratio", st.AreaRatio},
		{"Area multiplier", st.AreaMultiplier},
		{"Cumulative Δln production (pp)", st.CumulativeLogChangeProduction},
		{"Cumulative seeded area (pp)", st.CumulativeArea},
		{"Cumulative within-crop yield (pp)", st.CumulativeWithin},
		{"Cumulative crop mix (pp)", st.CumulativeMix},
		{"Extreme within-yield years before cutoff", st.WithinExceeds15Pre1960},
		{"Extreme within-yield years from cutoff", st.WithinExceeds15Post1960},
	}
	for i, row := range statRows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue(statsSheet, cell, value)
		}
	}
	f.SetColWidth(statsSheet, "A", "A", 42)
	f.SetColWidth(statsSheet, "B", "B", 16)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, width float64) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, cell, header)
		f.SetColWidth(sheet, col, col, width)
	}
}
