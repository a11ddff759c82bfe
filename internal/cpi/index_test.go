package cpi

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekarsister/cropstats/internal/config"
	"github.com/sekarsister/cropstats/internal/output"
	"github.com/sekarsister/cropstats/internal/statcan"
)

func allItems(period, value string) statcan.Row {
	return statcan.Row{Geography: "Canada", Category: "All-items", Disposition: "2002=100", Period: period, Value: value}
}

func TestIndexSeriesRebasesWindow(t *testing.T) {
	cfg := config.Default().CPI
	cfg.Years = 2

	rows := []statcan.Row{
		allItems("2024-02", "160"),
		allItems("2021-12", "141"),
		allItems("2022-01", "145"),
		allItems("2023-06", "150"),
		allItems("2024-01", "158"),
	}

	s, err := IndexSeries(rows, cfg)
	require.NoError(t, err)

	require.Len(t, s.Data, 4)
	assert.Equal(t, "2022-01", s.BaseDate)
	assert.Equal(t, 145.0, s.BaseValue)
	assert.Equal(t, Point{Date: "2022-01", Year: 2022, Month: 1, Value: 145, Index: 100}, s.First())
	assert.Equal(t, "2024-02", s.Last().Date)
	assert.InDelta(t, 160.0/145*100, s.Last().Index, 1e-9)
	assert.InDelta(t, (160.0/145-1)*100, s.Change, 1e-9)
	assert.Equal(t, 5, s.Accepted)
}

func TestIndexSeriesSkipsRows(t *testing.T) {
	cfg := config.Default().CPI

	rows := []statcan.Row{
		allItems("2020-01", "100"),
		{Geography: "Ontario", Category: "All-items", Disposition: "2002=100", Period: "2020-01", Value: "99"},
		{Geography: "Canada", Category: "Food", Disposition: "2002=100", Period: "2020-01", Value: "99"},
		{Geography: "Canada", Category: "All-items", Disposition: "1992=100", Period: "2020-01", Value: "99"},
		allItems("2020", "99"),
		allItems("2020-13", "99"),
		allItems("2020-02", ""),
		allItems("2020-03", "NaN"),
	}

	s, err := IndexSeries(rows, cfg)
	require.NoError(t, err)
	assert.Len(t, s.Data, 1)
	assert.Equal(t, map[string]int{
		SkipGeography: 1,
		SkipProduct:   1,
		SkipUOM:       1,
		SkipPeriod:    2,
		SkipValue:     2,
	}, s.Skipped)
}

func TestIndexSeriesNoData(t *testing.T) {
	_, err := IndexSeries([]statcan.Row{allItems("bad", "1")}, config.Default().CPI)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = IndexSeries(nil, config.Default().CPI)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestIndexSeriesKeepsTrailingYears(t *testing.T) {
	cfg := config.Default().CPI

	var rows []statcan.Row
	for year := 2000; year <= 2025; year++ {
		for month := 1; month <= 12; month++ {
			rows = append(rows, allItems(fmt.Sprintf("%d-%02d", year, month), fmt.Sprintf("%d", 100+year-2000)))
		}
	}

	s, err := IndexSeries(rows, cfg)
	require.NoError(t, err)
	assert.Equal(t, "2015-01", s.BaseDate)
	assert.Len(t, s.Data, 11*12)
	for i := 1; i < len(s.Data); i++ {
		assert.Less(t, s.Data[i-1].Date, s.Data[i].Date)
	}
}

func TestArtifactShape(t *testing.T) {
	s, err := IndexSeries([]statcan.Row{allItems("2024-01", "158.5")}, config.Default().CPI)
	require.NoError(t, err)

	a := s.Artifact()
	assert.Equal(t, IndexFile, a.Name)

	data, err := output.Encode(a.Document)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"base_date": "2024-01",
		"base_value": 158.5,
		"data": [{"date": "2024-01", "year": 2024, "month": 1, "value": 158.5, "index": 100}]
	}`, string(data))
}
