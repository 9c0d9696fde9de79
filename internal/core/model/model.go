// Package model defines core domain types shared across the service.
package model

import "fmt"

// LatLng is a geographic coordinate in degrees (EPSG:4326).
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p LatLng) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// BBox is the axis-aligned bounding box of a point set.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// NewBBox returns a box containing only p.
func NewBBox(p LatLng) BBox {
	return BBox{MinLat: p.Lat, MinLng: p.Lng, MaxLat: p.Lat, MaxLng: p.Lng}
}

// Extend grows the box to include p.
func (b *BBox) Extend(p LatLng) {
	if p.Lat < b.MinLat {
		b.MinLat = p.Lat
	}
	if p.Lat > b.MaxLat {
		b.MaxLat = p.Lat
	}
	if p.Lng < b.MinLng {
		b.MinLng = p.Lng
	}
	if p.Lng > b.MaxLng {
		b.MaxLng = p.Lng
	}
}

// ClusterMode selects the fidelity/performance trade of the clustering
// engine. A tagged variant rather than a bool so a third mode can be added
// without touching call signatures.
type ClusterMode int

const (
	// ModeDetailed keeps per-point identity so expanding a cluster reveals
	// each member's full attribute content.
	ModeDetailed ClusterMode = iota
	// ModeHighThroughput bins raw coordinates only, dropping attribute
	// association. Callers opt in explicitly for very large datasets.
	ModeHighThroughput
)

func (m ClusterMode) String() string {
	switch m {
	case ModeHighThroughput:
		return "highthroughput"
	default:
		return "detailed"
	}
}

// ParseClusterMode maps the wire form of a mode to its tag.
func ParseClusterMode(s string) (ClusterMode, error) {
	switch s {
	case "", "detailed":
		return ModeDetailed, nil
	case "highthroughput", "high_throughput":
		return ModeHighThroughput, nil
	default:
		return ModeDetailed, fmt.Errorf("unknown cluster mode %q (want detailed|highthroughput)", s)
	}
}

// VisualIdentity tags one dataset's layer so overlaid datasets stay
// distinguishable on a shared canvas.
type VisualIdentity struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
