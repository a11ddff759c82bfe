package grain

import (
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekarsister/cropstats/internal/config"
	"github.com/sekarsister/cropstats/internal/statcan"
)

const tolerance = 1e-9

func testConfig(crops ...string) config.GrainConfig {
	cfg := config.Default().Grain
	cfg.Groups = config.CropGroups{{Name: "Test", Crops: crops}}
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// cropRows emits a production row and a seeded area row for one crop-year.
func cropRows(crop, period string, production, area float64) []statcan.Row {
	return []statcan.Row{
		{Geography: "Canada", Category: crop, Disposition: "Production (metric tonnes)", Period: period, Value: ftoa(production)},
		{Geography: "Canada", Category: crop, Disposition: "Seeded area (hectares)", Period: period, Value: ftoa(area)},
	}
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// exampleRows is the two-crop scenario: A improves its yield from 2.0 to
// 2.2 while B keeps 2.0 and loses area.
func exampleRows() []statcan.Row {
	var rows []statcan.Row
	rows = append(rows, cropRows("A", "1999", 100, 50)...)
	rows = append(rows, cropRows("B", "1999", 200, 100)...)
	rows = append(rows, cropRows("A", "2000", 121, 55)...)
	rows = append(rows, cropRows("B", "2000", 180, 90)...)
	return rows
}

func TestClassifyOutcomes(t *testing.T) {
	f := NewFilter(testConfig("Oats"))
	base := statcan.Row{Geography: "Canada", Category: "Oats", Disposition: "Seeded area (hectares)", Period: "1999-07", Value: "12.5"}

	tests := []struct {
		name   string
		mutate func(*statcan.Row)
		want   SkipReason
	}{
		{"accepted", func(*statcan.Row) {}, ""},
		{"province", func(r *statcan.Row) { r.Geography = "Manitoba" }, SkipGeography},
		{"other crop", func(r *statcan.Row) { r.Category = "Tame hay" }, SkipCategory},
		{"yield disposition", func(r *statcan.Row) { r.Disposition = "Average yield (kilograms per hectare)" }, SkipDisposition},
		{"empty period", func(r *statcan.Row) { r.Period = "" }, SkipPeriod},
		{"text period", func(r *statcan.Row) { r.Period = "Q1 1999" }, SkipPeriod},
		{"suppressed value", func(r *statcan.Row) { r.Value = "" }, SkipValue},
		{"symbol value", func(r *statcan.Row) { r.Value = "x" }, SkipValue},
		{"nan value", func(r *statcan.Row) { r.Value = "NaN" }, SkipValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := base
			tt.mutate(&row)
			outcome := f.Classify(row)
			assert.Equal(t, tt.want, outcome.Skip)
			assert.Equal(t, tt.want == "", outcome.OK())
		})
	}

	outcome := f.Classify(base)
	assert.Equal(t, Observation{Category: "Oats", Period: 1999, Measure: Area, Value: 12.5}, outcome.Observation)
}

func TestParsePeriod(t *testing.T) {
	year, err := ParsePeriod("1908")
	require.NoError(t, err)
	assert.Equal(t, 1908, year)

	year, err = ParsePeriod("2024-11")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	_, err = ParsePeriod("-11")
	assert.Error(t, err)
}

func TestAccumulatorSumsAndDefaultsToZero(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(Observation{Category: "Oats", Period: 2000, Measure: Production, Value: 10})
	acc.Add(Observation{Category: "Oats", Period: 2000, Measure: Production, Value: 5})
	acc.Add(Observation{Category: "Barley", Period: 1999, Measure: Area, Value: 3})

	assert.Equal(t, 15.0, acc.Value("Oats", 2000, Production))
	assert.Zero(t, acc.Value("Oats", 2000, Area))
	assert.Zero(t, acc.Value("Barley", 2000, Area))
	assert.Equal(t, 3.0, acc.Value("Barley", 1999, Area))
	assert.Equal(t, []string{"Barley", "Oats"}, acc.Categories())
	assert.Equal(t, []int{2000}, acc.Periods("Oats"))
	assert.Equal(t, []int{1999, 2000}, acc.AllPeriods())
}

func TestAggregateTalliesSkips(t *testing.T) {
	rows := exampleRows()
	rows = append(rows,
		statcan.Row{Geography: "Alberta", Category: "A", Disposition: "Seeded area (hectares)", Period: "2000", Value: "1"},
		statcan.Row{Geography: "Canada", Category: "A", Disposition: "Seeded area (hectares)", Period: "2000", Value: ".."},
		statcan.Row{Geography: "Canada", Category: "A", Disposition: "Seeded area (hectares)", Period: "2000-12", Value: "5"},
	)

	agg := Aggregate(rows, NewFilter(testConfig("A", "B")))
	assert.Equal(t, 9, agg.Accepted)
	assert.Equal(t, 1, agg.Skipped[SkipGeography])
	assert.Equal(t, 1, agg.Skipped[SkipValue])
	assert.Equal(t, 60.0, agg.Sums.Value("A", 2000, Area), "year-month rows fold into the year")
}

func TestPanelExcludesUndefinedYield(t *testing.T) {
	var rows []statcan.Row
	rows = append(rows, cropRows("A", "1999", 100, 50)...)
	rows = append(rows, cropRows("A", "2000", 100, 0)...)
	rows = append(rows, cropRows("B", "2000", 0, 40)...)
	rows = append(rows, statcan.Row{Geography: "Canada", Category: "B", Disposition: "Production (metric tonnes)", Period: "2001", Value: "7"})

	panel := BuildPanel(Aggregate(rows, NewFilter(testConfig("A", "B"))).Sums)

	require.Equal(t, 1, panel.Len())
	entry, ok := panel.Lookup("A", 1999)
	require.True(t, ok)
	assert.Equal(t, 2.0, entry.EffectiveYield)

	for _, e := range panel.Entries() {
		assert.Positive(t, e.Area)
		assert.Positive(t, e.Production)
	}
	_, ok = panel.Lookup("A", 2000)
	assert.False(t, ok)
	assert.Equal(t, []int{1999}, panel.Periods())
}

func TestAnnualSharesSumToOne(t *testing.T) {
	rows := randomRows(rand.New(rand.NewPCG(7, 11)), 6, 40)
	panel := BuildPanel(Aggregate(rows, NewFilter(testConfig(randomCrops(6)...))).Sums)
	annual := BuildAnnual(panel)
	require.NotEmpty(t, annual)

	for _, a := range annual {
		assert.Positive(t, a.TotalArea)

		total := 0.0
		weighted := 0.0
		for _, s := range a.Shares {
			total += s.Share
			entry, ok := panel.Lookup(s.Category, a.Period)
			require.True(t, ok)
			weighted += s.Share * entry.EffectiveYield
		}
		assert.InDelta(t, 1.0, total, tolerance, "year %d", a.Period)
		assert.InDelta(t, a.AvgYield, weighted, tolerance)
		assert.InDelta(t, a.TotalProduction/a.TotalArea, a.AvgYield, tolerance)
	}
}

func TestDecomposeExampleScenario(t *testing.T) {
	result := Run(exampleRows(), testConfig("A", "B"), testLogger())

	require.Len(t, result.Annual, 2)
	assert.Equal(t, 150.0, result.Annual[0].TotalArea)
	assert.Equal(t, 145.0, result.Annual[1].TotalArea)
	assert.InDelta(t, 2.0, result.Annual[0].AvgYield, tolerance)
	assert.InDelta(t, 2.075862068965517, result.Annual[1].AvgYield, tolerance)

	require.Len(t, result.Changes, 1)
	c := result.Changes[0]
	assert.Equal(t, 2000, c.Period)
	assert.Equal(t, 1999, c.PrevPeriod)
	assert.InDelta(t, -0.03390155167568134, c.DeltaLnA, tolerance)
	assert.InDelta(t, 0.031770059934774976, c.Within, tolerance)
	assert.InDelta(t, 0.03722934176835598, c.DeltaLnYield, tolerance)
	assert.InDelta(t, 0.005459281833581006, c.Mix, tolerance)
	assert.InDelta(t, 0.0033277900926747457, c.DeltaLnP, tolerance)
}

func TestDecomposeIdentity(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := range 20 {
		crops := randomCrops(5)
		result := Run(randomRows(r, 5, 60), testConfig(crops...), testLogger())
		require.NotEmpty(t, result.Changes, "trial %d", trial)

		for _, c := range result.Changes {
			assert.InDelta(t, c.DeltaLnP, c.DeltaLnA+c.Within+c.Mix, tolerance, "trial %d year %d", trial, c.Period)
			assert.InDelta(t, c.DeltaLnYield, c.Within+c.Mix, tolerance)
		}
	}
}

func TestDecomposeCropEnteringLaterAddsToMixOnly(t *testing.T) {
	var rows []statcan.Row
	rows = append(rows, cropRows("A", "1999", 100, 50)...)
	rows = append(rows, cropRows("A", "2000", 100, 50)...)
	rows = append(rows, cropRows("B", "2000", 400, 50)...)

	result := Run(rows, testConfig("A", "B"), testLogger())
	require.Len(t, result.Changes, 1)
	c := result.Changes[0]

	assert.InDelta(t, 0.0, c.Within, tolerance, "A's yield did not change")
	assert.InDelta(t, math.Log(5.0/2.0), c.Mix, tolerance)
	assert.InDelta(t, math.Log(2), c.DeltaLnA, tolerance)
}

func TestDecomposeSkipsNonPositiveTotals(t *testing.T) {
	annual := []AnnualAggregate{
		{Period: 1999, TotalProduction: 100, TotalArea: 50, AvgYield: 2},
		{Period: 2000, TotalProduction: 0, TotalArea: 50, AvgYield: 0},
		{Period: 2001, TotalProduction: 110, TotalArea: 50, AvgYield: 2.2},
	}
	assert.Empty(t, Decompose(Panel{}, annual))
}

func TestDecomposeUsesAdjacentAvailableYears(t *testing.T) {
	var rows []statcan.Row
	rows = append(rows, cropRows("A", "1999", 100, 50)...)
	rows = append(rows, cropRows("A", "2003", 150, 50)...)

	result := Run(rows, testConfig("A"), testLogger())
	require.Len(t, result.Changes, 1)
	assert.Equal(t, 1999, result.Changes[0].PrevPeriod)
	assert.Equal(t, 2003, result.Changes[0].Period)
	assert.InDelta(t, math.Log(1.5), result.Changes[0].Within, tolerance)
}

func TestImplausibleWithin(t *testing.T) {
	changes := []LogChange{
		{Period: 1950, DeltaLnYield: 0.01, Within: 0.5},
		{Period: 1951, DeltaLnYield: 0.20, Within: 0.25},
		{Period: 1952, DeltaLnYield: -0.1, Within: -0.6},
	}
	flagged := ImplausibleWithin(changes, 0.25)
	require.Len(t, flagged, 2)
	assert.Equal(t, 1950, flagged[0].Period)
	assert.Equal(t, 1952, flagged[1].Period)
}

func randomCrops(n int) []string {
	crops := make([]string, n)
	for i := range crops {
		crops[i] = "Crop " + strconv.Itoa(i)
	}
	return crops
}

// randomRows builds a panel where each crop is missing from roughly one
// year in eight and yields stay between 1 and 3 t/ha.
func randomRows(r *rand.Rand, crops, years int) []statcan.Row {
	var rows []statcan.Row
	for i, crop := range randomCrops(crops) {
		for y := range years {
			if i > 0 && r.IntN(8) == 0 {
				continue
			}
			area := 10 + r.Float64()*1000
			yield := 1 + r.Float64()*2
			rows = append(rows, cropRows(crop, strconv.Itoa(1950+y), area*yield, area)...)
		}
	}
	return rows
}
