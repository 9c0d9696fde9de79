// Package composer assembles normalized datasets into the layered map
// description an external renderer consumes.
package composer

import (
	"math"

	"github.com/mateonav/geolayers/internal/clusterer"
	"github.com/mateonav/geolayers/internal/clusterer/cellbin"
	"github.com/mateonav/geolayers/internal/clusterer/detailed"
	"github.com/mateonav/geolayers/internal/core/model"
	"github.com/mateonav/geolayers/internal/geotab"
)

// Options is the configuration surface of a composition.
type Options struct {
	ClusteringEnabled bool              `json:"clustering_enabled"`
	Mode              model.ClusterMode `json:"mode"`
	// RadiusDeg tunes detailed-mode grouping; zero means the engine default.
	RadiusDeg float64 `json:"radius_deg,omitempty"`
	// CellRes tunes high-throughput binning; zero means the engine default.
	CellRes int `json:"cell_res,omitempty"`
}

// LayerInput pairs one normalized dataset with its visual identity.
type LayerInput struct {
	Dataset  *geotab.Dataset
	Identity model.VisualIdentity
}

// Marker is one renderable point with its hover and click content already
// built, so the renderer never touches the dataset.
type Marker struct {
	Coord   model.LatLng `json:"coord"`
	Tooltip string       `json:"tooltip"`
	Popup   []string     `json:"popup"`
}

// ClusterMarker is one aggregate marker. Expanding it reveals Members;
// in high-throughput mode those carry coordinates only.
type ClusterMarker struct {
	Centroid model.LatLng `json:"centroid"`
	Count    int          `json:"count"`
	Members  []Marker     `json:"members"`
}

// Layer is one dataset's contribution to the map: either individual
// markers or clusters, never both.
type Layer struct {
	Name     string          `json:"name"`
	Color    string          `json:"color"`
	Markers  []Marker        `json:"markers,omitempty"`
	Clusters []ClusterMarker `json:"clusters,omitempty"`
}

// Viewport frames all rendered points: the centroid of every included
// point, a zoom hint fitted to the union bounding box, and the box itself
// so renderers can fit_bounds exactly.
type Viewport struct {
	Center model.LatLng `json:"center"`
	Zoom   int          `json:"zoom"`
	Bounds *model.BBox  `json:"bounds,omitempty"`
}

// MapDescription is the final composition, rebuilt from scratch on every
// configuration change and owned by the caller for one rendering request.
type MapDescription struct {
	Layers   []Layer  `json:"layers"`
	Viewport Viewport `json:"viewport"`
	Options  Options  `json:"options"`
}

// World-view fallback when every dataset is empty.
var defaultCenter = model.LatLng{Lat: 20, Lng: 0}

const (
	defaultZoom = 2
	minZoom     = 2
	maxZoom     = 18
	// zoom used for a degenerate (single point or zero span) bounding box.
	pointZoom = 10
)

// Compose builds one layer per input dataset and the shared viewport.
// It is idempotent: identical inputs and options yield a structurally
// identical description.
func Compose(inputs []LayerInput, opts Options) *MapDescription {
	md := &MapDescription{
		Layers:  make([]Layer, 0, len(inputs)),
		Options: opts,
	}

	eng := engineFor(opts)
	var (
		bounds *model.BBox
		sumLat float64
		sumLng float64
		total  int
	)
	for _, in := range inputs {
		layer := Layer{Name: in.Identity.Name, Color: in.Identity.Color}
		clusters := eng.Cluster(in.Dataset)
		if opts.ClusteringEnabled {
			layer.Clusters = clusterMarkers(in.Dataset, clusters, opts.Mode)
		} else {
			layer.Markers = flatMarkers(in.Dataset, clusters)
		}
		md.Layers = append(md.Layers, layer)

		for _, p := range in.Dataset.Points {
			if bounds == nil {
				bb := model.NewBBox(p.Coord)
				bounds = &bb
			} else {
				bounds.Extend(p.Coord)
			}
			sumLat += p.Coord.Lat
			sumLng += p.Coord.Lng
			total++
		}
	}

	if total == 0 {
		md.Viewport = Viewport{Center: defaultCenter, Zoom: defaultZoom}
		return md
	}
	md.Viewport = Viewport{
		Center: model.LatLng{Lat: sumLat / float64(total), Lng: sumLng / float64(total)},
		Zoom:   fitZoom(*bounds),
		Bounds: bounds,
	}
	return md
}

func engineFor(opts Options) clusterer.Engine {
	if !opts.ClusteringEnabled {
		return clusterer.Passthrough{}
	}
	switch opts.Mode {
	case model.ModeHighThroughput:
		return cellbin.New(opts.CellRes)
	default:
		return detailed.New(opts.RadiusDeg)
	}
}

func clusterMarkers(ds *geotab.Dataset, clusters []clusterer.Cluster, mode model.ClusterMode) []ClusterMarker {
	out := make([]ClusterMarker, 0, len(clusters))
	for _, c := range clusters {
		cm := ClusterMarker{Centroid: c.Centroid, Count: c.Count}
		if mode == model.ModeHighThroughput || c.Members == nil {
			cm.Members = coordMarkers(c.Coords)
		} else {
			cm.Members = make([]Marker, 0, len(c.Members))
			for _, m := range c.Members {
				cm.Members = append(cm.Members, pointMarker(ds.Points[m]))
			}
		}
		out = append(out, cm)
	}
	return out
}

func flatMarkers(ds *geotab.Dataset, clusters []clusterer.Cluster) []Marker {
	out := make([]Marker, 0, len(clusters))
	for _, c := range clusters {
		for _, m := range c.Members {
			out = append(out, pointMarker(ds.Points[m]))
		}
	}
	return out
}

// fitZoom picks the web-mercator style zoom level whose 360/2^z span first
// fits the wider side of the box, clamped to sane interactive levels.
func fitZoom(bb model.BBox) int {
	span := math.Max(bb.MaxLat-bb.MinLat, bb.MaxLng-bb.MinLng)
	if span <= 0 {
		return pointZoom
	}
	z := int(math.Floor(math.Log2(360 / span)))
	if z < minZoom {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}
