package cellbin

import (
	"reflect"
	"testing"

	"github.com/mateonav/geolayers/internal/core/model"
	"github.com/mateonav/geolayers/internal/geotab"
)

func dataset(coords ...model.LatLng) *geotab.Dataset {
	pts := make([]geotab.Point, len(coords))
	for i, c := range coords {
		pts[i] = geotab.Point{Coord: c, Name: "has-a-name", Attrs: geotab.Attributes{City: "has-a-city"}}
	}
	return &geotab.Dataset{Points: pts, Accepted: len(pts)}
}

func TestCluster_CoordinateCompleteness(t *testing.T) {
	ds := dataset(
		model.LatLng{Lat: 59.3293, Lng: 18.0686},
		model.LatLng{Lat: 59.3295, Lng: 18.0690},
		model.LatLng{Lat: 48.8566, Lng: 2.3522},
		model.LatLng{Lat: -33.8688, Lng: 151.2093},
	)
	clusters := New(0).Cluster(ds)

	total := 0
	for _, c := range clusters {
		if c.Count != len(c.Coords) {
			t.Errorf("count %d != coords %d", c.Count, len(c.Coords))
		}
		total += c.Count
	}
	if total != len(ds.Points) {
		t.Fatalf("total = %d, want %d", total, len(ds.Points))
	}
}

func TestCluster_DropsAttributeAssociation(t *testing.T) {
	ds := dataset(model.LatLng{Lat: 10, Lng: 20})
	clusters := New(0).Cluster(ds)
	if len(clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(clusters))
	}
	if clusters[0].Members != nil {
		t.Fatalf("high-throughput cluster kept member indices: %v", clusters[0].Members)
	}
}

func TestCluster_NearbyPointsShareCell(t *testing.T) {
	// A few meters apart: same cell at any coarse resolution.
	ds := dataset(
		model.LatLng{Lat: 59.32930, Lng: 18.06860},
		model.LatLng{Lat: 59.32931, Lng: 18.06861},
	)
	clusters := New(6).Cluster(ds)
	if len(clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(clusters))
	}
	if clusters[0].Count != 2 {
		t.Fatalf("count = %d, want 2", clusters[0].Count)
	}
}

func TestCluster_DistantPointsSeparate(t *testing.T) {
	ds := dataset(
		model.LatLng{Lat: 59.3293, Lng: 18.0686},
		model.LatLng{Lat: -33.8688, Lng: 151.2093},
	)
	clusters := New(6).Cluster(ds)
	if len(clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(clusters))
	}
}

func TestCluster_EmptyDataset(t *testing.T) {
	if got := New(6).Cluster(&geotab.Dataset{}); len(got) != 0 {
		t.Fatalf("got %d clusters from empty dataset", len(got))
	}
}

func TestCluster_DeterministicOrder(t *testing.T) {
	ds := dataset(
		model.LatLng{Lat: 40.7128, Lng: -74.0060},
		model.LatLng{Lat: 34.0522, Lng: -118.2437},
		model.LatLng{Lat: 41.8781, Lng: -87.6298},
		model.LatLng{Lat: 40.7129, Lng: -74.0061},
	)
	eng := New(6)
	first := eng.Cluster(ds)
	for i := 0; i < 20; i++ {
		if got := eng.Cluster(ds); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestNew_ClampsResolution(t *testing.T) {
	if e := New(99); e.res != 15 {
		t.Errorf("res = %d, want clamp to 15", e.res)
	}
	if e := New(-1); e.res != DefaultRes {
		t.Errorf("res = %d, want default %d", e.res, DefaultRes)
	}
}
