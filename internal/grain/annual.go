package grain

// CategoryShare is a crop's share of total seeded area in one year.
type CategoryShare struct {
	Category string
	Share    float64
}

// AnnualAggregate is the all-crop summary for one year.
type AnnualAggregate struct {
	Period          int     `json:"year"`
	TotalProduction float64 `json:"p_total"`
	TotalArea       float64 `json:"a_total"`
	AvgYield        float64 `json:"y_bar"`

	// Shares are the area weights behind AvgYield, ordered by crop.
	Shares []CategoryShare `json:"-"`
}

// BuildAnnual collapses the panel into one area-weighted record per year,
// in chronological order.
func BuildAnnual(p Panel) []AnnualAggregate {
	var annual []AnnualAggregate

	for _, year := range p.Periods() {
		entries := p.InPeriod(year)
		if len(entries) == 0 {
			continue
		}

		var totalProduction, totalArea float64
		for _, e := range entries {
			totalProduction += e.Production
			totalArea += e.Area
		}
		if totalArea <= 0 {
			continue
		}

		agg := AnnualAggregate{
			Period:          year,
			TotalProduction: totalProduction,
			TotalArea:       totalArea,
			Shares:          make([]CategoryShare, 0, len(entries)),
		}
		for _, e := range entries {
			share := e.Area / totalArea
			agg.AvgYield += share * e.EffectiveYield
			agg.Shares = append(agg.Shares, CategoryShare{Category: e.Category, Share: share})
		}

		annual = append(annual, agg)
	}

	return annual
}
