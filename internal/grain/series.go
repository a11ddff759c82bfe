package grain

// YearValue is one point of an annual series.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Measure labels used in the crop components artifact.
const (
	ProductionLabel = "Production (tonnes)"
	AreaLabel       = "Seeded area (hectares)"
	YieldLabel      = "Effective yield (t/ha seeded)"
)

// ComponentPoint is one crop measure in one year.
type ComponentPoint struct {
	Year    int     `json:"year"`
	Crop    string  `json:"crop"`
	Measure string  `json:"measure"`
	Value   float64 `json:"value"`
}

// AnnualTotals sums measure m over every crop for each year. Years whose
// total is not positive are left out.
func AnnualTotals(acc *Accumulator, m Measure) []YearValue {
	crops := acc.Categories()
	series := []YearValue{}

	for _, year := range acc.AllPeriods() {
		total := 0.0
		for _, crop := range crops {
			total += acc.Value(crop, year, m)
		}
		if total > 0 {
			series = append(series, YearValue{Year: year, Value: total})
		}
	}

	return series
}

// CropComponents lists production, area and effective yield per crop and
// year. Each measure appears only when positive; yield only when both are.
func CropComponents(acc *Accumulator) []ComponentPoint {
	points := []ComponentPoint{}

	for _, crop := range acc.Categories() {
		for _, year := range acc.Periods(crop) {
			production := acc.Value(crop, year, Production)
			area := acc.Value(crop, year, Area)

			if production > 0 {
				points = append(points, ComponentPoint{year, crop, ProductionLabel, production})
			}
			if area > 0 {
				points = append(points, ComponentPoint{year, crop, AreaLabel, area})
			}
			if production > 0 && area > 0 {
				points = append(points, ComponentPoint{year, crop, YieldLabel, production / area})
			}
		}
	}

	return points
}

func seriesYears(series []YearValue) []int {
	years := make([]int, len(series))
	for i, p := range series {
		years[i] = p.Year
	}
	return years
}
