// Package boundary loads state outlines from a GeoJSON boundary file, such
// as the Census Bureau cartographic boundary files. Features are keyed by
// their FIPS code, which is the code FARS uses in its STATE column.
package boundary

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// codeProperties are the feature properties searched for a FIPS code, in order.
var codeProperties = []string{"STATEFP", "STATE", "STATE_FIPS", "fips"}

// Boundaries maps state FIPS codes to their outline rings.
type Boundaries struct {
	outlines map[int][]orb.Ring
}

// Load reads a GeoJSON FeatureCollection. Features without a recognizable
// FIPS code or without polygon geometry are ignored; a file with no usable
// feature is an error.
func Load(path string) (*Boundaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode boundaries %s: %w", path, err)
	}

	b := &Boundaries{outlines: make(map[int][]orb.Ring)}
	for _, f := range fc.Features {
		code, ok := stateCode(f.Properties)
		if !ok {
			continue
		}
		rings := ringsOf(f.Geometry)
		if len(rings) == 0 {
			continue
		}
		b.outlines[code] = append(b.outlines[code], rings...)
	}
	if len(b.outlines) == 0 {
		return nil, errors.New("boundaries: no state polygons found")
	}
	return b, nil
}

// Outline returns every ring of a state's polygons.
func (b *Boundaries) Outline(state int) ([]orb.Ring, bool) {
	rings, ok := b.outlines[state]
	return rings, ok
}

// States lists the FIPS codes with an outline, ascending.
func (b *Boundaries) States() []int {
	codes := make([]int, 0, len(b.outlines))
	for code := range b.outlines {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

func stateCode(props geojson.Properties) (int, bool) {
	for _, key := range codeProperties {
		switch v := props[key].(type) {
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		case float64:
			return int(v), true
		}
	}
	return 0, false
}

func ringsOf(g orb.Geometry) []orb.Ring {
	switch g := g.(type) {
	case orb.Polygon:
		return append([]orb.Ring(nil), g...)
	case orb.MultiPolygon:
		var rings []orb.Ring
		for _, poly := range g {
			rings = append(rings, poly...)
		}
		return rings
	case orb.Ring:
		return []orb.Ring{g}
	default:
		return nil
	}
}
