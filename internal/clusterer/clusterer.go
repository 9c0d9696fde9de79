// Package clusterer groups a normalized dataset's points into display
// clusters. Implementations live in subpackages; callers pick one per
// cluster mode and hold it behind the Engine interface.
package clusterer

import (
	"github.com/mateonav/geolayers/internal/core/model"
	"github.com/mateonav/geolayers/internal/geotab"
)

// Cluster is a non-empty spatial proximity group rendered as one aggregate
// marker until expanded. A single-member cluster degenerates to a plain
// marker.
type Cluster struct {
	Centroid model.LatLng
	Count    int
	// Members holds indices into the source dataset's points so expansion
	// can show full attribute content. Nil when the engine deliberately
	// drops attribute association (high-throughput mode).
	Members []int
	// Coords are the member coordinates in input order, kept in every mode.
	Coords []model.LatLng
}

// Engine turns a dataset into clusters. Implementations are pure: same
// dataset in, same clusters out, no internal state across calls.
type Engine interface {
	Cluster(ds *geotab.Dataset) []Cluster
}

// FromMembers builds a cluster over the given dataset point indices, with
// the unweighted mean as centroid. Indices must be valid and non-empty.
func FromMembers(ds *geotab.Dataset, members []int) Cluster {
	c := Cluster{
		Count:   len(members),
		Members: members,
		Coords:  make([]model.LatLng, 0, len(members)),
	}
	var sumLat, sumLng float64
	for _, m := range members {
		coord := ds.Points[m].Coord
		sumLat += coord.Lat
		sumLng += coord.Lng
		c.Coords = append(c.Coords, coord)
	}
	n := float64(len(members))
	c.Centroid = model.LatLng{Lat: sumLat / n, Lng: sumLng / n}
	return c
}

// Passthrough is the engine used when clustering is globally disabled:
// every point becomes its own single-member cluster so rendering stays
// uniform either way.
type Passthrough struct{}

func (Passthrough) Cluster(ds *geotab.Dataset) []Cluster {
	if len(ds.Points) == 0 {
		return nil
	}
	out := make([]Cluster, 0, len(ds.Points))
	for i := range ds.Points {
		out = append(out, FromMembers(ds, []int{i}))
	}
	return out
}
