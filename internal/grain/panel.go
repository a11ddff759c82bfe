package grain

import "sort"

// CategoryPanelEntry is one crop's production, area and effective yield for
// one year. It exists only when both production and area are positive.
type CategoryPanelEntry struct {
	Category       string  `json:"crop"`
	Period         int     `json:"year"`
	Production     float64 `json:"production"`
	Area           float64 `json:"area"`
	EffectiveYield float64 `json:"effective_yield"`
}

type panelKey struct {
	category string
	period   int
}

// Panel holds the per-crop entries ordered by crop then year.
type Panel struct {
	entries []CategoryPanelEntry
	index   map[panelKey]int
}

// BuildPanel joins production and area per crop and year. A year where
// either is zero or missing is dropped for that crop only.
func BuildPanel(acc *Accumulator) Panel {
	p := Panel{index: make(map[panelKey]int)}

	for _, crop := range acc.Categories() {
		for _, year := range acc.Periods(crop) {
			production := acc.Value(crop, year, Production)
			area := acc.Value(crop, year, Area)
			if production <= 0 || area <= 0 {
				continue
			}

			p.index[panelKey{crop, year}] = len(p.entries)
			p.entries = append(p.entries, CategoryPanelEntry{
				Category:       crop,
				Period:         year,
				Production:     production,
				Area:           area,
				EffectiveYield: production / area,
			})
		}
	}

	return p
}

func (p Panel) Len() int { return len(p.entries) }

// Entries returns a copy of every entry.
func (p Panel) Entries() []CategoryPanelEntry {
	return append([]CategoryPanelEntry(nil), p.entries...)
}

func (p Panel) Lookup(category string, period int) (CategoryPanelEntry, bool) {
	i, ok := p.index[panelKey{category, period}]
	if !ok {
		return CategoryPanelEntry{}, false
	}
	return p.entries[i], true
}

// InPeriod returns the entries for one year, ordered by crop.
func (p Panel) InPeriod(period int) []CategoryPanelEntry {
	var out []CategoryPanelEntry
	for _, e := range p.entries {
		if e.Period == period {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Periods returns every year with at least one entry, sorted.
func (p Panel) Periods() []int {
	seen := make(map[int]struct{})
	for _, e := range p.entries {
		seen[e.Period] = struct{}{}
	}
	return sortedYears(seen)
}
