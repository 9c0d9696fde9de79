package composer

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mateonav/geolayers/internal/core/model"
	"github.com/mateonav/geolayers/internal/geotab"
)

func TestTooltipText(t *testing.T) {
	cases := []struct {
		name  string
		point geotab.Point
		want  string
	}{
		{
			"coordinates only",
			geotab.Point{Coord: model.LatLng{Lat: 40.7128, Lng: -74.006}},
			"40.712800, -74.006000",
		},
		{
			"with postal",
			geotab.Point{Coord: model.LatLng{Lat: 40.7128, Lng: -74.006}, Attrs: geotab.Attributes{PostalCode: "10001"}},
			"40.712800, -74.006000 (10001)",
		},
		{
			"name prefixed",
			geotab.Point{Coord: model.LatLng{Lat: 40.7128, Lng: -74.006}, Name: "HQ", Attrs: geotab.Attributes{PostalCode: "10001"}},
			"HQ: 40.712800, -74.006000 (10001)",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tooltipText(tc.point); got != tc.want {
				t.Fatalf("tooltip = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPopupLines_FullAttributeSetInFixedOrder(t *testing.T) {
	p := geotab.Point{
		Coord: model.LatLng{Lat: 40.7128, Lng: -74.006},
		Name:  "HQ",
		Attrs: geotab.Attributes{
			PostalCode: "10001",
			State:      "NY",
			City:       "New York",
			Address:    "123 Main St",
		},
	}
	want := []string{
		"HQ",
		"Latitude: 40.712800",
		"Longitude: -74.006000",
		"Postal Code: 10001",
		"State: NY",
		"City: New York",
		"Address: 123 Main St",
	}
	if got := popupLines(p); !reflect.DeepEqual(got, want) {
		t.Fatalf("popup = %#v, want %#v", got, want)
	}
}

func TestPopupLines_AbsentAttributesOmitted(t *testing.T) {
	p := geotab.Point{
		Coord: model.LatLng{Lat: 1.5, Lng: 2.5},
		Attrs: geotab.Attributes{City: "Solo"},
	}
	want := []string{
		"Latitude: 1.500000",
		"Longitude: 2.500000",
		"City: Solo",
	}
	if got := popupLines(p); !reflect.DeepEqual(got, want) {
		t.Fatalf("popup = %#v, want %#v", got, want)
	}
}

func TestToGeoJSON(t *testing.T) {
	ds := &geotab.Dataset{Points: []geotab.Point{
		{Coord: model.LatLng{Lat: 10, Lng: 20}, Name: "A"},
		{Coord: model.LatLng{Lat: 10.0001, Lng: 20.0001}, Name: "B"},
	}}
	md := Compose([]LayerInput{{Dataset: ds, Identity: model.VisualIdentity{Name: "x", Color: "blue"}}},
		Options{ClusteringEnabled: true, Mode: model.ModeDetailed})

	buf, err := ToGeoJSON(md)
	if err != nil {
		t.Fatalf("ToGeoJSON: %v", err)
	}
	var fc featureCollection
	if err := json.Unmarshal(buf, &fc); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Fatalf("fc = %+v", fc)
	}
	f := fc.Features[0]
	if f.Geometry.Type != "Point" {
		t.Errorf("geometry type = %q", f.Geometry.Type)
	}
	// GeoJSON positions are lon,lat.
	if f.Geometry.Coordinates[0] != md.Layers[0].Clusters[0].Centroid.Lng {
		t.Errorf("coordinates = %v, want lon first", f.Geometry.Coordinates)
	}
	if f.Properties["cluster"] != true {
		t.Errorf("cluster flag = %v, want true", f.Properties["cluster"])
	}
	if f.Properties["point_count"] != float64(2) {
		t.Errorf("point_count = %v, want 2", f.Properties["point_count"])
	}
}
