// Package cellbin implements the high-throughput clustering mode: points
// are binned into H3 cells at a fixed resolution, keeping only raw
// coordinates. The fidelity loss is the caller's explicit choice for
// datasets too large for detailed grouping.
package cellbin

import (
	h3 "github.com/uber/h3-go/v4"

	"github.com/mateonav/geolayers/internal/clusterer"
	"github.com/mateonav/geolayers/internal/core/model"
	"github.com/mateonav/geolayers/internal/geotab"
)

// DefaultRes is the H3 resolution used when the caller does not configure
// one; cells of a few kilometers across, coarse enough for tens of
// thousands of points.
const DefaultRes = 6

type Engine struct {
	res int
}

// New returns a cell-binning engine at the given H3 resolution, clamped to
// the valid 0..15 range. Non-positive resolutions fall back to DefaultRes.
func New(res int) *Engine {
	if res <= 0 {
		res = DefaultRes
	}
	if res > 15 {
		res = 15
	}
	return &Engine{res: res}
}

type bin struct {
	coords []model.LatLng
	sumLat float64
	sumLng float64
}

// Cluster bins every point into its H3 cell. Cluster order follows the
// first appearance of each cell in the input, so identical datasets
// produce identical output. Attribute association is dropped: clusters
// carry member coordinates only.
func (e *Engine) Cluster(ds *geotab.Dataset) []clusterer.Cluster {
	if len(ds.Points) == 0 {
		return nil
	}

	bins := make(map[h3.Cell]*bin)
	order := make([]h3.Cell, 0)
	for i := range ds.Points {
		coord := ds.Points[i].Coord
		// v4 wants degrees.
		cell, err := h3.LatLngToCell(h3.LatLng{Lat: coord.Lat, Lng: coord.Lng}, e.res)
		if err != nil {
			// Unreachable for range-validated points; bin under the zero
			// cell rather than dropping the point.
			cell = 0
		}
		b, ok := bins[cell]
		if !ok {
			b = &bin{}
			bins[cell] = b
			order = append(order, cell)
		}
		b.coords = append(b.coords, coord)
		b.sumLat += coord.Lat
		b.sumLng += coord.Lng
	}

	out := make([]clusterer.Cluster, 0, len(order))
	for _, cell := range order {
		b := bins[cell]
		n := float64(len(b.coords))
		out = append(out, clusterer.Cluster{
			Centroid: model.LatLng{Lat: b.sumLat / n, Lng: b.sumLng / n},
			Count:    len(b.coords),
			Coords:   b.coords,
		})
	}
	return out
}
