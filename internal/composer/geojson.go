package composer

import (
	"encoding/json"
	"fmt"
)

// GeoJSON interchange types for renderers that prefer a FeatureCollection
// over the native MapDescription shape.
type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // lon, lat
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

// ToGeoJSON encodes the description as a FeatureCollection: one Point
// feature per marker or cluster, tagged with its layer name and color so
// overlaid datasets stay distinguishable.
func ToGeoJSON(md *MapDescription) ([]byte, error) {
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, layer := range md.Layers {
		for _, m := range layer.Markers {
			fc.Features = append(fc.Features, feature{
				Type:     "Feature",
				Geometry: geometry{Type: "Point", Coordinates: []float64{m.Coord.Lng, m.Coord.Lat}},
				Properties: map[string]any{
					"layer":   layer.Name,
					"color":   layer.Color,
					"cluster": false,
					"tooltip": m.Tooltip,
					"popup":   m.Popup,
				},
			})
		}
		for _, c := range layer.Clusters {
			fc.Features = append(fc.Features, feature{
				Type:     "Feature",
				Geometry: geometry{Type: "Point", Coordinates: []float64{c.Centroid.Lng, c.Centroid.Lat}},
				Properties: map[string]any{
					"layer":       layer.Name,
					"color":       layer.Color,
					"cluster":     c.Count > 1,
					"point_count": c.Count,
				},
			})
		}
	}
	buf, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("marshal FeatureCollection: %w", err)
	}
	return buf, nil
}
