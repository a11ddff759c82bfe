// Package statcan retrieves full-table CSV downloads from the Statistics
// Canada Web Data Service and decodes them into raw rows.
package statcan

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var ErrMissingColumns = errors.New("required columns not found")

// Row is one raw table record. All fields are the trimmed cell text; the
// consumer decides what parses.
type Row struct {
	Geography   string
	Category    string
	Disposition string
	Period      string
	Value       string
}

// ColumnSet lists accepted header names per logical column, most specific
// first. Matching is case-insensitive.
type ColumnSet struct {
	Geography   []string
	Category    []string
	Disposition []string
	Period      []string
	Value       []string
}

// GrainColumns matches table 32-10-0359 (principal field crops).
func GrainColumns() ColumnSet {
	return ColumnSet{
		Geography:   []string{"GEO", "Geography"},
		Category:    []string{"Type of crop", "Type_of_crop", "Crop"},
		Disposition: []string{"Harvest disposition", "Harvest_disposition", "Disposition"},
		Period:      []string{"REF_DATE", "Reference date", "Date", "Year"},
		Value:       []string{"VALUE", "Value"},
	}
}

// CPIColumns matches table 18-10-0004 (consumer price index). The unit of
// measure column plays the disposition role.
func CPIColumns() ColumnSet {
	return ColumnSet{
		Geography:   []string{"GEO", "Geography"},
		Category:    []string{"Products and product groups", "Product"},
		Disposition: []string{"UOM", "Unit of measure"},
		Period:      []string{"REF_DATE", "Reference date", "Date"},
		Value:       []string{"VALUE", "Value"},
	}
}

type columnIndex struct {
	geography, category, disposition, period, value int
}

// Decode parses CSV content into rows. A header lacking any required column
// is fatal; malformed records are skipped.
func Decode(data []byte, cols ColumnSet) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: %w", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := resolveColumns(header, cols)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("read record: %w", err)
		}

		rows = append(rows, Row{
			Geography:   cell(record, idx.geography),
			Category:    cell(record, idx.category),
			Disposition: cell(record, idx.disposition),
			Period:      cell(record, idx.period),
			Value:       cell(record, idx.value),
		})
	}

	return rows, nil
}

func resolveColumns(header []string, cols ColumnSet) (columnIndex, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(clean(h))] = i
	}

	find := func(candidates []string) int {
		for _, name := range candidates {
			if i, ok := byName[strings.ToLower(name)]; ok {
				return i
			}
		}
		return -1
	}

	idx := columnIndex{
		geography:   find(cols.Geography),
		category:    find(cols.Category),
		disposition: find(cols.Disposition),
		period:      find(cols.Period),
		value:       find(cols.Value),
	}

	var missing []string
	for name, i := range map[string]int{
		"geography":   idx.geography,
		"category":    idx.category,
		"disposition": idx.disposition,
		"period":      idx.period,
		"value":       idx.value,
	} {
		if i < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return columnIndex{}, fmt.Errorf("%w: %s (header %v)", ErrMissingColumns, strings.Join(missing, ", "), header)
	}
	return idx, nil
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return clean(record[i])
}

func clean(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
}
