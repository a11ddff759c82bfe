// Package grain turns raw principal-field-crop rows into the production
// growth decomposition: per-crop panel, annual aggregates, log-change
// decomposition into area, within-crop yield and crop mix effects, and the
// cumulative waterfall layout drawn from it.
package grain

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sekarsister/cropstats/internal/config"
	"github.com/sekarsister/cropstats/internal/statcan"
)

// Measure is the kind of quantity a row carries.
type Measure int

const (
	Production Measure = iota
	Area
)

func (m Measure) String() string {
	switch m {
	case Production:
		return "production"
	case Area:
		return "area"
	}
	return "unknown"
}

// SkipReason says why a raw row did not reach the accumulator. The zero
// value means the row was accepted.
type SkipReason string

const (
	SkipGeography   SkipReason = "geography"
	SkipCategory    SkipReason = "category"
	SkipDisposition SkipReason = "disposition"
	SkipPeriod      SkipReason = "period"
	SkipValue       SkipReason = "value"
)

// SkipReasons lists every reason in reporting order.
var SkipReasons = []SkipReason{SkipGeography, SkipCategory, SkipDisposition, SkipPeriod, SkipValue}

// Observation is an accepted row: one crop, one year, one measure.
type Observation struct {
	Category string
	Period   int
	Measure  Measure
	Value    float64
}

// RowOutcome is the result of classifying one raw row: an Observation when
// Skip is empty, otherwise the reason it was dropped.
type RowOutcome struct {
	Observation Observation
	Skip        SkipReason
}

func (o RowOutcome) OK() bool { return o.Skip == "" }

// Filter selects the rows that feed the decomposition.
type Filter struct {
	geography    string
	crops        map[string]struct{}
	dispositions map[string]Measure
}

func NewFilter(cfg config.GrainConfig) Filter {
	crops := make(map[string]struct{})
	for _, crop := range cfg.AllCrops() {
		crops[crop] = struct{}{}
	}
	return Filter{
		geography: cfg.Geography,
		crops:     crops,
		dispositions: map[string]Measure{
			cfg.ProductionDisposition: Production,
			cfg.AreaDisposition:       Area,
		},
	}
}

// Classify applies the geography, crop and disposition filters, then parses
// period and value.
func (f Filter) Classify(row statcan.Row) RowOutcome {
	if row.Geography != f.geography {
		return RowOutcome{Skip: SkipGeography}
	}
	if _, ok := f.crops[row.Category]; !ok {
		return RowOutcome{Skip: SkipCategory}
	}
	measure, ok := f.dispositions[row.Disposition]
	if !ok {
		return RowOutcome{Skip: SkipDisposition}
	}

	year, err := ParsePeriod(row.Period)
	if err != nil {
		return RowOutcome{Skip: SkipPeriod}
	}
	value, err := strconv.ParseFloat(row.Value, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return RowOutcome{Skip: SkipValue}
	}

	return RowOutcome{Observation: Observation{
		Category: row.Category,
		Period:   year,
		Measure:  measure,
		Value:    value,
	}}
}

// ParsePeriod reads YYYY or YYYY-MM and returns the year.
func ParsePeriod(s string) (int, error) {
	year, _, _ := strings.Cut(s, "-")
	return strconv.Atoi(year)
}

type measureKey struct {
	category string
	period   int
	measure  Measure
}

// Accumulator sums observation values per (category, period, measure).
// A key that never received a value reads as zero.
type Accumulator struct {
	sums map[measureKey]float64
}

func NewAccumulator() *Accumulator {
	return &Accumulator{sums: make(map[measureKey]float64)}
}

func (a *Accumulator) Add(o Observation) {
	a.sums[measureKey{o.Category, o.Period, o.Measure}] += o.Value
}

func (a *Accumulator) Value(category string, period int, m Measure) float64 {
	return a.sums[measureKey{category, period, m}]
}

// Categories returns the categories with at least one value, sorted.
func (a *Accumulator) Categories() []string {
	seen := make(map[string]struct{})
	for k := range a.sums {
		seen[k.category] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// Periods returns the union of periods recorded for category under any
// measure, sorted.
func (a *Accumulator) Periods(category string) []int {
	return a.periods(func(k measureKey) bool { return k.category == category })
}

// AllPeriods returns every period recorded for any category, sorted.
func (a *Accumulator) AllPeriods() []int {
	return a.periods(func(measureKey) bool { return true })
}

func (a *Accumulator) periods(match func(measureKey) bool) []int {
	seen := make(map[int]struct{})
	for k := range a.sums {
		if match(k) {
			seen[k.period] = struct{}{}
		}
	}
	return sortedYears(seen)
}

// Aggregation is the filtered, summed view of a raw table.
type Aggregation struct {
	Sums     *Accumulator
	Accepted int
	Skipped  map[SkipReason]int
}

// Aggregate classifies every row and sums the accepted ones.
func Aggregate(rows []statcan.Row, f Filter) Aggregation {
	agg := Aggregation{
		Sums:    NewAccumulator(),
		Skipped: make(map[SkipReason]int),
	}

	for _, row := range rows {
		outcome := f.Classify(row)
		if !outcome.OK() {
			agg.Skipped[outcome.Skip]++
			continue
		}
		agg.Sums.Add(outcome.Observation)
		agg.Accepted++
	}

	return agg
}

func sortedYears(set map[int]struct{}) []int {
	years := make([]int, 0, len(set))
	for year := range set {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
