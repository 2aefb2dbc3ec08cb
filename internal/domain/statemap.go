package domain

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Coord is a coordinate value that may be missing.
type Coord struct {
	Value float64
	Valid bool
}

// Site is the position of one crash. Either coordinate may be missing.
type Site struct {
	Lat Coord
	Lon Coord
}

// Point is a plottable position.
type Point struct {
	Lat float64
	Lon float64
}

// Bounds is the extent of the valid coordinates of a StateMap. Latitude and
// longitude ranges are computed independently. Valid is false when either
// axis has no valid value.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	Valid          bool
}

// StateMap is the crash positions of one state in one year.
type StateMap struct {
	State  int
	Year   int
	Sites  []Site
	Bounds Bounds
}

// Empty reports whether the state has no crash rows.
func (m StateMap) Empty() bool {
	return len(m.Sites) == 0
}

// Points returns the sites with both coordinates present.
func (m StateMap) Points() []Point {
	points := make([]Point, 0, len(m.Sites))
	for _, s := range m.Sites {
		if s.Lat.Valid && s.Lon.Valid {
			points = append(points, Point{Lat: s.Lat.Value, Lon: s.Lon.Value})
		}
	}
	return points
}

// MapRenderer draws a state map to some sink.
type MapRenderer interface {
	RenderStateMap(ctx context.Context, m StateMap) error
}

// BuildStateMap filters a year's record table to one state and converts the
// coordinate sentinels into missing values. It fails with ErrInvalidState
// when the state code does not occur in the table.
func BuildStateMap(df dataframe.DataFrame, state, year int) (StateMap, error) {
	states := df.Col(ColState)
	if states.Err != nil {
		return StateMap{}, fmt.Errorf("build state map: %w", states.Err)
	}
	if !hasInt(states, state) {
		return StateMap{}, fmt.Errorf("%w: %d not found in %d data", ErrInvalidState, state, year)
	}

	sub := df.Filter(dataframe.F{Colname: ColState, Comparator: series.Eq, Comparando: state})
	if sub.Err != nil {
		return StateMap{}, fmt.Errorf("filter state %d: %w", state, sub.Err)
	}

	lats := sub.Col(ColLatitude)
	lons := sub.Col(ColLongitude)
	if lats.Err != nil {
		return StateMap{}, fmt.Errorf("build state map: %w", lats.Err)
	}
	if lons.Err != nil {
		return StateMap{}, fmt.Errorf("build state map: %w", lons.Err)
	}

	m := StateMap{State: state, Year: year, Sites: make([]Site, sub.Nrow())}
	latValues, lonValues := lats.Float(), lons.Float()
	for i := range m.Sites {
		m.Sites[i] = Site{
			Lat: sanitize(latValues[i], MaxLatitude),
			Lon: sanitize(lonValues[i], MaxLongitude),
		}
	}
	m.Bounds = computeBounds(m.Sites)
	return m, nil
}

// sanitize turns NaN and values above limit into a missing Coord.
func sanitize(v, limit float64) Coord {
	if math.IsNaN(v) || v > limit {
		return Coord{}
	}
	return Coord{Value: v, Valid: true}
}

func computeBounds(sites []Site) Bounds {
	b := Bounds{
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		MinLon: math.Inf(1), MaxLon: math.Inf(-1),
	}
	var haveLat, haveLon bool
	for _, s := range sites {
		if s.Lat.Valid {
			haveLat = true
			b.MinLat = math.Min(b.MinLat, s.Lat.Value)
			b.MaxLat = math.Max(b.MaxLat, s.Lat.Value)
		}
		if s.Lon.Valid {
			haveLon = true
			b.MinLon = math.Min(b.MinLon, s.Lon.Value)
			b.MaxLon = math.Max(b.MaxLon, s.Lon.Value)
		}
	}
	if !haveLat || !haveLon {
		return Bounds{}
	}
	b.Valid = true
	return b
}

func hasInt(s series.Series, want int) bool {
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		if v, err := e.Int(); err == nil && v == want {
			return true
		}
	}
	return false
}
