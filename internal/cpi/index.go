// Package cpi rebases the monthly all-items consumer price index to 100 at
// the start of a trailing window of years.
package cpi

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/sekarsister/cropstats/internal/config"
	"github.com/sekarsister/cropstats/internal/output"
	"github.com/sekarsister/cropstats/internal/statcan"
)

// IndexFile is the artifact name of the rebased series.
const IndexFile = "inflation_index_data.json"

var ErrNoData = errors.New("no matching CPI observations")

// Skip reasons, keyed the same way as the grain row tallies.
const (
	SkipGeography = "geography"
	SkipProduct   = "category"
	SkipUOM       = "disposition"
	SkipPeriod    = "period"
	SkipValue     = "value"
)

type Point struct {
	Date  string  `json:"date"`
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Value float64 `json:"value"`
	Index float64 `json:"index"`
}

// Document is the published shape of the rebased series.
type Document struct {
	BaseDate  string  `json:"base_date"`
	BaseValue float64 `json:"base_value"`
	Data      []Point `json:"data"`
}

// Series is a rebased index plus what it took to build it.
type Series struct {
	Document

	// Change is the percentage change from the first to the last point.
	Change   float64
	Accepted int
	Skipped  map[string]int
}

func (s Series) Artifact() output.Artifact {
	return output.Artifact{Name: IndexFile, Document: s.Document}
}

// First and Last return the window bounds. Both are zero for an empty series.
func (s Series) First() Point {
	if len(s.Data) == 0 {
		return Point{}
	}
	return s.Data[0]
}

func (s Series) Last() Point {
	if len(s.Data) == 0 {
		return Point{}
	}
	return s.Data[len(s.Data)-1]
}

// IndexSeries keeps the configured geography, product and unit, sorts by
// month and keeps every month from cfg.Years before the latest year onward.
// Each point's index is its value relative to the first kept month, times
// 100. ErrNoData is returned when no row survives the filter.
func IndexSeries(rows []statcan.Row, cfg config.CPIConfig) (Series, error) {
	s := Series{Skipped: make(map[string]int)}

	var points []Point
	for _, row := range rows {
		p, reason := classify(row, cfg)
		if reason != "" {
			s.Skipped[reason]++
			continue
		}
		s.Accepted++
		points = append(points, p)
	}
	if len(points) == 0 {
		return s, ErrNoData
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	cutoff := points[len(points)-1].Year - cfg.Years
	start := sort.Search(len(points), func(i int) bool {
		return points[i].Year >= cutoff
	})
	window := points[start:]

	base := window[0].Value
	if base == 0 {
		return s, errors.New("base month has a zero index value")
	}
	for i := range window {
		window[i].Index = window[i].Value / base * 100
	}

	s.Document = Document{
		BaseDate:  window[0].Date,
		BaseValue: base,
		Data:      window,
	}
	s.Change = (window[len(window)-1].Value/base - 1) * 100
	return s, nil
}

func classify(row statcan.Row, cfg config.CPIConfig) (Point, string) {
	switch {
	case row.Geography != cfg.Geography:
		return Point{}, SkipGeography
	case row.Category != cfg.Product:
		return Point{}, SkipProduct
	case row.Disposition != cfg.UOM:
		return Point{}, SkipUOM
	}

	month, err := time.Parse("2006-01", row.Period)
	if err != nil {
		return Point{}, SkipPeriod
	}

	value, err := strconv.ParseFloat(row.Value, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return Point{}, SkipValue
	}

	return Point{
		Date:  month.Format("2006-01"),
		Year:  month.Year(),
		Month: int(month.Month()),
		Value: value,
	}, ""
}
