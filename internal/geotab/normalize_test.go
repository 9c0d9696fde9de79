package geotab

import (
	"strings"
	"testing"
)

func storesTable() Table {
	return Table{
		Name:    "stores",
		Columns: []string{"latitude", "longitude", "postal_code"},
		Rows: [][]any{
			{40.7128, -74.0060, "10001"},
			{91.0, 0.0, "99999"},
			{"abc", "def", "00000"},
		},
	}
}

func TestNormalize_AcceptsOnlyValidRows(t *testing.T) {
	tbl := storesTable()
	ds := Normalize(tbl, InferRoles(tbl.Columns, tbl.Rows))

	if len(ds.Points) != 1 {
		t.Fatalf("points = %d, want 1", len(ds.Points))
	}
	if ds.Accepted != 1 || ds.Rejected != 2 {
		t.Fatalf("accepted/rejected = %d/%d, want 1/2", ds.Accepted, ds.Rejected)
	}
	p := ds.Points[0]
	if p.Coord.Lat != 40.7128 || p.Coord.Lng != -74.0060 {
		t.Errorf("coord = %v", p.Coord)
	}
	if p.Attrs.PostalCode != "10001" {
		t.Errorf("postal = %q, want 10001", p.Attrs.PostalCode)
	}
}

func TestNormalize_Accounting(t *testing.T) {
	tbl := storesTable()
	ds := Normalize(tbl, InferRoles(tbl.Columns, tbl.Rows))
	if got := len(ds.Points) + ds.Rejected; got != len(tbl.Rows) {
		t.Fatalf("points+rejected = %d, want %d", got, len(tbl.Rows))
	}
}

func TestNormalize_UnassignedRolesRejectEverything(t *testing.T) {
	tbl := Table{
		Name:    "nocoords",
		Columns: []string{"city", "note"},
		Rows: [][]any{
			{"Stockholm", "a"},
			{"Oslo", "b"},
		},
	}
	ds := Normalize(tbl, InferRoles(tbl.Columns, tbl.Rows))
	if len(ds.Points) != 0 {
		t.Fatalf("points = %d, want 0", len(ds.Points))
	}
	if ds.Rejected != len(tbl.Rows) {
		t.Fatalf("rejected = %d, want %d", ds.Rejected, len(tbl.Rows))
	}
}

func TestNormalize_PreservesRowOrder(t *testing.T) {
	tbl := Table{
		Columns: []string{"lat", "lon", "name"},
		Rows: [][]any{
			{"1.0", "1.0", "first"},
			{"bad", "bad", "dropped"},
			{"2.0", "2.0", "second"},
			{"3.0", "3.0", "third"},
		},
	}
	ds := Normalize(tbl, InferRoles(tbl.Columns, tbl.Rows))
	want := []string{"first", "second", "third"}
	if len(ds.Points) != len(want) {
		t.Fatalf("points = %d, want %d", len(ds.Points), len(want))
	}
	for i, p := range ds.Points {
		if p.Name != want[i] {
			t.Errorf("point %d name = %q, want %q", i, p.Name, want[i])
		}
	}
}

func TestNormalize_OpportunisticAttributes(t *testing.T) {
	tbl := Table{
		Columns: []string{"lat", "lon", "State", "City", "address", "other"},
		Rows: [][]any{
			{"10.0", "20.0", "NY", "New York", "123 Main St", "x"},
			{"11.0", "21.0", "", nil, "NA", "y"},
		},
	}
	ds := Normalize(tbl, InferRoles(tbl.Columns, tbl.Rows))
	if len(ds.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(ds.Points))
	}
	got := ds.Points[0].Attrs
	if got.State != "NY" || got.City != "New York" || got.Address != "123 Main St" {
		t.Errorf("attrs = %+v", got)
	}
	// Missing markers never produce attributes.
	if a := ds.Points[1].Attrs; a.State != "" || a.City != "" || a.Address != "" {
		t.Errorf("missing cells leaked attributes: %+v", a)
	}
}

func TestNormalize_ShortRowsCountAsRejected(t *testing.T) {
	tbl := Table{
		Columns: []string{"lat", "lon"},
		Rows: [][]any{
			{"10.0", "20.0"},
			{"10.0"}, // ragged row, lon missing
		},
	}
	ds := Normalize(tbl, InferRoles(tbl.Columns, tbl.Rows))
	if ds.Accepted != 1 || ds.Rejected != 1 {
		t.Fatalf("accepted/rejected = %d/%d, want 1/1", ds.Accepted, ds.Rejected)
	}
}

func TestReadCSV_RoundTripThroughNormalize(t *testing.T) {
	in := "name,latitude,longitude,city\nHQ,59.3293,18.0686,Stockholm\nBad,x,y,Nowhere\n"
	tbl, err := ReadCSV("offices", strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(tbl.Columns) != 4 || len(tbl.Rows) != 2 {
		t.Fatalf("table shape = %d cols, %d rows", len(tbl.Columns), len(tbl.Rows))
	}
	ds := Normalize(tbl, InferRoles(tbl.Columns, tbl.Rows))
	if ds.Accepted != 1 || ds.Rejected != 1 {
		t.Fatalf("accepted/rejected = %d/%d, want 1/1", ds.Accepted, ds.Rejected)
	}
	if ds.Points[0].Name != "HQ" || ds.Points[0].Attrs.City != "Stockholm" {
		t.Errorf("point = %+v", ds.Points[0])
	}
}

func TestReadCSV_EmptyInputFails(t *testing.T) {
	if _, err := ReadCSV("empty", strings.NewReader("")); err == nil {
		t.Fatal("expected error for headerless input")
	}
}

func TestSummarize(t *testing.T) {
	tbl := Table{
		Columns: []string{"lat", "lon", "zip", "city"},
		Rows: [][]any{
			{"10.0", "20.0", "111", "A"},
			{"30.0", "40.0", "222", "B"},
		},
	}
	ds := Normalize(tbl, InferRoles(tbl.Columns, tbl.Rows))
	s := Summarize(ds, tbl.Columns)
	if s.Accepted != 2 || s.Rejected != 0 {
		t.Fatalf("accounting = %+v", s)
	}
	if s.MeanLat != 20.0 || s.MeanLng != 30.0 {
		t.Errorf("means = %f/%f, want 20/30", s.MeanLat, s.MeanLng)
	}
	if len(s.AttributeColumns) != 2 || s.AttributeColumns[0] != "zip" || s.AttributeColumns[1] != "city" {
		t.Errorf("attribute columns = %v", s.AttributeColumns)
	}
}
