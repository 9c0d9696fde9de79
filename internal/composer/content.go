package composer

import (
	"fmt"

	"github.com/mateonav/geolayers/internal/core/model"
	"github.com/mateonav/geolayers/internal/geotab"
)

// pointMarker builds the marker for a fully attributed point. Tooltip and
// popup follow one rule across all layers: coordinates to six decimals,
// optional lines only when the attribute is present, fixed field order
// name, latitude, longitude, postal code, state, city, address.
func pointMarker(p geotab.Point) Marker {
	return Marker{
		Coord:   p.Coord,
		Tooltip: tooltipText(p),
		Popup:   popupLines(p),
	}
}

// coordMarkers builds attribute-free markers for high-throughput cluster
// members: coordinates are all that survives that mode.
func coordMarkers(coords []model.LatLng) []Marker {
	out := make([]Marker, 0, len(coords))
	for _, c := range coords {
		out = append(out, Marker{
			Coord:   c,
			Tooltip: fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng),
			Popup: []string{
				fmt.Sprintf("Latitude: %.6f", c.Lat),
				fmt.Sprintf("Longitude: %.6f", c.Lng),
			},
		})
	}
	return out
}

func tooltipText(p geotab.Point) string {
	s := fmt.Sprintf("%.6f, %.6f", p.Coord.Lat, p.Coord.Lng)
	if p.Attrs.PostalCode != "" {
		s += " (" + p.Attrs.PostalCode + ")"
	}
	if p.Name != "" {
		s = p.Name + ": " + s
	}
	return s
}

func popupLines(p geotab.Point) []string {
	lines := make([]string, 0, 7)
	if p.Name != "" {
		lines = append(lines, p.Name)
	}
	lines = append(lines,
		fmt.Sprintf("Latitude: %.6f", p.Coord.Lat),
		fmt.Sprintf("Longitude: %.6f", p.Coord.Lng),
	)
	if p.Attrs.PostalCode != "" {
		lines = append(lines, "Postal Code: "+p.Attrs.PostalCode)
	}
	if p.Attrs.State != "" {
		lines = append(lines, "State: "+p.Attrs.State)
	}
	if p.Attrs.City != "" {
		lines = append(lines, "City: "+p.Attrs.City)
	}
	if p.Attrs.Address != "" {
		lines = append(lines, "Address: "+p.Attrs.Address)
	}
	return lines
}
