package grain

import "fmt"

// Component is one bar in a waterfall year.
type Component int

const (
	AreaComponent Component = iota
	WithinYieldComponent
	MixComponent
)

// Components lists the bars in stacking order.
var Components = []Component{AreaComponent, WithinYieldComponent, MixComponent}

func (c Component) String() string {
	switch c {
	case AreaComponent:
		return "Seeded Area"
	case WithinYieldComponent:
		return "Within-Crop Effective Yield"
	case MixComponent:
		return "Crop Mix"
	}
	return fmt.Sprintf("Component(%d)", int(c))
}

func (c Component) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// offset places the bar left of, on, or right of the year.
func (c Component) offset(spread float64) float64 {
	return float64(int(c)-1) * spread
}

func (c Component) value(change LogChange) float64 {
	switch c {
	case AreaComponent:
		return change.DeltaLnA
	case WithinYieldComponent:
		return change.Within
	}
	return change.Mix
}

type CumulativeSegment struct {
	Year            int       `json:"year"`
	Component       Component `json:"component"`
	Value           float64   `json:"value"`
	CumulativeStart float64   `json:"cumulativeStart"`
	CumulativeEnd   float64   `json:"cumulativeEnd"`
	XPosition       float64   `json:"xPosition"`
}

// ConnectingSegment carries a year's final cumulative value across to the
// next year's bars.
type ConnectingSegment struct {
	Year    int     `json:"year"`
	YearEnd int     `json:"yearEnd"`
	YValue  float64 `json:"yValue"`
}

// ComponentConnector joins two adjacent bars inside one year.
type ComponentConnector struct {
	Year   int     `json:"year"`
	XStart float64 `json:"xStart"`
	XEnd   float64 `json:"xEnd"`
	YValue float64 `json:"yValue"`
}

type Waterfall struct {
	Segments   []CumulativeSegment
	Connecting []ConnectingSegment
	Connectors []ComponentConnector
}

// BuildWaterfall stacks each change's components on a running total that
// starts at zero and carries over from one year to the next.
func BuildWaterfall(changes []LogChange, spread float64) Waterfall {
	w := Waterfall{
		Segments:   make([]CumulativeSegment, 0, 3*len(changes)),
		Connecting: make([]ConnectingSegment, 0, len(changes)),
		Connectors: make([]ComponentConnector, 0, 2*len(changes)),
	}

	running := 0.0
	for i, change := range changes {
		year := float64(change.Period)

		var prev CumulativeSegment
		for j, component := range Components {
			seg := CumulativeSegment{
				Year:            change.Period,
				Component:       component,
				Value:           component.value(change),
				CumulativeStart: running,
				XPosition:       year + component.offset(spread),
			}
			seg.CumulativeEnd = seg.CumulativeStart + seg.Value
			running = seg.CumulativeEnd
			w.Segments = append(w.Segments, seg)

			if j > 0 {
				w.Connectors = append(w.Connectors, ComponentConnector{
					Year:   change.Period,
					XStart: prev.XPosition,
					XEnd:   seg.XPosition,
					YValue: prev.CumulativeEnd,
				})
			}
			prev = seg
		}

		if i < len(changes)-1 {
			w.Connecting = append(w.Connecting, ConnectingSegment{
				Year:    change.Period,
				YearEnd: changes[i+1].Period,
				YValue:  running,
			})
		}
	}

	return w
}

// Years returns the distinct years present in the segments, sorted.
func (w Waterfall) Years() []int {
	seen := make(map[int]struct{})
	for _, s := range w.Segments {
		seen[s.Year] = struct{}{}
	}
	return sortedYears(seen)
}
