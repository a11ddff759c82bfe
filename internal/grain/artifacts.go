package grain

import (
	"sort"

	"github.com/sekarsister/cropstats/internal/config"
	"github.com/sekarsister/cropstats/internal/output"
)

// Artifact file names.
const (
	StatisticsFile    = "grain_statistics.json"
	ProductionFile    = "grain_production_by_year.json"
	AreaFile          = "grain_area_by_year.json"
	ComponentsFile    = "grain_crop_components.json"
	DecompositionFile = "grain_decomposition.json"
	GroupingsFile     = "crop_groupings.json"
)

var measureColours = map[string]string{
	YieldLabel:      "#c87941",
	AreaLabel:       "#4a7c7a",
	ProductionLabel: "#000000",
}

var componentColours = map[string]string{
	AreaComponent.String():        "#4a7c7a",
	WithinYieldComponent.String(): "#c87941",
	MixComponent.String():         "#4b3d60",
}

type SeriesDocument struct {
	Data        []YearValue `json:"data"`
	XAxisBreaks []int       `json:"xAxisBreaks"`
}

type ComponentsDocument struct {
	Crops          []string          `json:"crops"`
	Data           []ComponentPoint  `json:"data"`
	XAxisBreaks    []int             `json:"xAxisBreaks"`
	MeasureColours map[string]string `json:"measureColours"`
}

type DecompositionDocument struct {
	CumulativeData      []CumulativeSegment  `json:"cumulativeData"`
	ConnectingSegments  []ConnectingSegment  `json:"connectingSegments"`
	ComponentConnectors []ComponentConnector `json:"componentConnectors"`
	XAxisBreaks         []int                `json:"xAxisBreaks"`
	Colours             map[string]string    `json:"colours"`
	UniqueYears         []int                `json:"uniqueYears"`
}

// Artifacts assembles the documents written for a run, in publishing order.
func Artifacts(r Result, groups config.CropGroups) []output.Artifact {
	return []output.Artifact{
		{Name: GroupingsFile, Document: groups.Document()},
		{Name: StatisticsFile, Document: r.Statistics},
		{Name: ProductionFile, Document: seriesDocument(r.Production)},
		{Name: AreaFile, Document: seriesDocument(r.Area)},
		{Name: ComponentsFile, Document: componentsDocument(r.Components)},
		{Name: DecompositionFile, Document: decompositionDocument(r.Waterfall)},
	}
}

func seriesDocument(series []YearValue) SeriesDocument {
	return SeriesDocument{
		Data:        nonNil(series),
		XAxisBreaks: YearBreaks(seriesYears(series)),
	}
}

func componentsDocument(points []ComponentPoint) ComponentsDocument {
	crops := make(map[string]struct{})
	years := make([]int, len(points))
	for i, p := range points {
		crops[p.Crop] = struct{}{}
		years[i] = p.Year
	}

	names := make([]string, 0, len(crops))
	for c := range crops {
		names = append(names, c)
	}
	sort.Strings(names)

	return ComponentsDocument{
		Crops:          names,
		Data:           nonNil(points),
		XAxisBreaks:    YearBreaks(years),
		MeasureColours: measureColours,
	}
}

func decompositionDocument(w Waterfall) DecompositionDocument {
	years := w.Years()
	return DecompositionDocument{
		CumulativeData:      nonNil(w.Segments),
		ConnectingSegments:  nonNil(w.Connecting),
		ComponentConnectors: nonNil(w.Connectors),
		XAxisBreaks:         YearBreaks(years),
		Colours:             componentColours,
		UniqueYears:         years,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
