package geotab

import (
	"github.com/mateonav/geolayers/internal/core/model"
)

// Attributes is the fixed optional-attribute set a point can carry.
// An empty string means the attribute was absent in the source row, so
// downstream rendering never probes the raw table again.
type Attributes struct {
	PostalCode string `json:"postal_code,omitempty"`
	State      string `json:"state,omitempty"`
	City       string `json:"city,omitempty"`
	Address    string `json:"address,omitempty"`
}

// Point is a row that survived validation. Its coordinate is guaranteed to
// be numeric and inside [-90,90]x[-180,180]; no downstream component
// re-validates.
type Point struct {
	Coord model.LatLng `json:"coord"`
	Name  string       `json:"name,omitempty"`
	Attrs Attributes   `json:"attrs"`
}

// Dataset is the filtered, range-validated point collection derived from
// one raw upload, in original row order, plus the row accounting and the
// role assignment that produced it. Read-only after construction.
type Dataset struct {
	Name     string
	Points   []Point
	Accepted int
	Rejected int
	Roles    RoleAssignment
}

// Normalize applies the role assignment and coordinate validation to every
// row of tbl. Rows that fail coercion or the range check are dropped and
// counted; nothing here ever raises on malformed input. When either
// coordinate role is unassigned the whole table is rejected, which is a
// normal renderable-empty outcome.
func Normalize(tbl Table, roles RoleAssignment) *Dataset {
	ds := &Dataset{Name: tbl.Name, Roles: roles}
	if !roles.HasCoordinates() {
		ds.Rejected = len(tbl.Rows)
		return ds
	}

	latIdx := tbl.ColumnIndex(roles.Lat)
	lngIdx := tbl.ColumnIndex(roles.Lng)
	postalIdx := -1
	if roles.Postal != "" {
		postalIdx = tbl.ColumnIndex(roles.Postal)
	}
	nameIdx := -1
	if roles.Name != "" {
		nameIdx = tbl.ColumnIndex(roles.Name)
	}
	// These literal columns are attached opportunistically whenever they
	// exist, independent of role inference.
	stateIdx := tbl.ColumnIndex("state")
	cityIdx := tbl.ColumnIndex("city")
	addrIdx := tbl.ColumnIndex("address")

	ds.Points = make([]Point, 0, len(tbl.Rows))
	for i := range tbl.Rows {
		latRaw := tbl.Cell(i, latIdx)
		lngRaw := tbl.Cell(i, lngIdx)
		if !ValidCoordinates(latRaw, lngRaw) {
			ds.Rejected++
			continue
		}
		lat, _ := coerce(latRaw)
		lng, _ := coerce(lngRaw)

		p := Point{Coord: model.LatLng{Lat: lat, Lng: lng}}
		if nameIdx >= 0 {
			if s, ok := display(tbl.Cell(i, nameIdx)); ok {
				p.Name = s
			}
		}
		if postalIdx >= 0 {
			if s, ok := display(tbl.Cell(i, postalIdx)); ok {
				p.Attrs.PostalCode = s
			}
		}
		if stateIdx >= 0 {
			if s, ok := display(tbl.Cell(i, stateIdx)); ok {
				p.Attrs.State = s
			}
		}
		if cityIdx >= 0 {
			if s, ok := display(tbl.Cell(i, cityIdx)); ok {
				p.Attrs.City = s
			}
		}
		if addrIdx >= 0 {
			if s, ok := display(tbl.Cell(i, addrIdx)); ok {
				p.Attrs.Address = s
			}
		}
		ds.Points = append(ds.Points, p)
		ds.Accepted++
	}
	return ds
}
