// Package detailed implements the full-fidelity clustering mode: greedy
// proximity grouping over an R-tree, preserving per-point identity so a
// cluster expands back into each member's complete attribute content.
package detailed

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/mateonav/geolayers/internal/clusterer"
	"github.com/mateonav/geolayers/internal/geotab"
)

const (
	// DefaultRadiusDeg is the fixed proximity radius, in degrees, used when
	// the caller does not configure one. Roughly a city district at
	// mid-latitudes.
	DefaultRadiusDeg = 0.05

	dimensions  = 2
	minChildren = 25
	maxChildren = 50
	pointTol    = 1e-9
)

type Engine struct {
	radius float64
}

// New returns a detailed-mode engine with the given proximity radius in
// degrees. Non-positive radii fall back to DefaultRadiusDeg.
func New(radiusDeg float64) *Engine {
	if radiusDeg <= 0 {
		radiusDeg = DefaultRadiusDeg
	}
	return &Engine{radius: radiusDeg}
}

// spatialItem wraps a dataset point index for R-tree indexing.
type spatialItem struct {
	idx  int
	lat  float64
	lng  float64
	rect *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Cluster groups points greedily: walking the dataset in input order, each
// still-unassigned point seeds a cluster and absorbs every unassigned
// neighbor within the radius. Input-order seeding keeps the grouping
// deterministic, and every point lands in exactly one cluster.
func (e *Engine) Cluster(ds *geotab.Dataset) []clusterer.Cluster {
	if len(ds.Points) == 0 {
		return nil
	}

	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	for i := range ds.Points {
		coord := ds.Points[i].Coord
		pt := rtreego.Point{coord.Lat, coord.Lng}
		tree.Insert(&spatialItem{idx: i, lat: coord.Lat, lng: coord.Lng, rect: pt.ToRect(pointTol)})
	}

	assigned := make([]bool, len(ds.Points))
	out := make([]clusterer.Cluster, 0, len(ds.Points))
	for i := range ds.Points {
		if assigned[i] {
			continue
		}
		members := e.neighbors(tree, ds, i, assigned)
		for _, m := range members {
			assigned[m] = true
		}
		out = append(out, clusterer.FromMembers(ds, members))
	}
	return out
}

// neighbors returns the unassigned points within the radius of seed,
// including the seed itself, in input order.
func (e *Engine) neighbors(tree *rtreego.Rtree, ds *geotab.Dataset, seed int, assigned []bool) []int {
	coord := ds.Points[seed].Coord
	bounds, err := rtreego.NewRect(
		rtreego.Point{coord.Lat - e.radius, coord.Lng - e.radius},
		[]float64{2 * e.radius, 2 * e.radius},
	)
	if err != nil {
		return []int{seed}
	}

	members := make([]int, 0, 4)
	for _, result := range tree.SearchIntersect(bounds) {
		item, ok := result.(*spatialItem)
		if !ok || assigned[item.idx] {
			continue
		}
		dLat := item.lat - coord.Lat
		dLng := item.lng - coord.Lng
		if dLat*dLat+dLng*dLng <= e.radius*e.radius {
			members = append(members, item.idx)
		}
	}
	if len(members) == 0 {
		// The seed always intersects its own search box; this only guards
		// a degenerate tree.
		return []int{seed}
	}
	sort.Ints(members)
	return members
}
