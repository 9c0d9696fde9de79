package geotab

import "strings"

// RoleAssignment maps logical roles to concrete column names of one Table.
// An empty string means the role is unassigned. Computed once per dataset
// and never mutated.
type RoleAssignment struct {
	Lat    string `json:"lat"`
	Lng    string `json:"lng"`
	Postal string `json:"postal,omitempty"`
	Name   string `json:"name,omitempty"`
}

// HasCoordinates reports whether both coordinate roles are assigned.
func (ra RoleAssignment) HasCoordinates() bool {
	return ra.Lat != "" && ra.Lng != ""
}

var (
	latTerms    = []string{"lat", "latitude"}
	lngTerms    = []string{"lon", "long", "longitude", "lng"}
	postalTerms = []string{"postal", "zipcode", "zip code", "zip", "post_code", "pincode"}
	nameExact   = []string{"name", "title", "label", "location_name"}
)

// InferRoles determines which columns carry latitude, longitude, a postal
// identifier and a display name, by name-pattern heuristics first and a
// numeric-type fallback for the coordinate pair. Given the same column
// order the result is identical on every call.
//
// Name matches win over the numeric fallback even when the named column
// holds junk; the rows are then rejected during normalization rather than
// silently re-mapped to different columns.
func InferRoles(cols []string, rows [][]any) RoleAssignment {
	ra := RoleAssignment{
		Lat:    firstContaining(cols, latTerms),
		Lng:    firstContaining(cols, lngTerms),
		Postal: firstContaining(cols, postalTerms),
		Name:   firstExact(cols, nameExact),
	}
	if ra.Lat != "" && ra.Lng != "" {
		return ra
	}

	// Coordinate fallback: the first two uniformly numeric columns, in
	// their original order, become latitude then longitude. With fewer
	// than two numeric columns both roles stay unassigned and the dataset
	// normalizes to zero points.
	var numeric []string
	for i, c := range cols {
		if columnNumeric(rows, i) {
			numeric = append(numeric, c)
			if len(numeric) == 2 {
				break
			}
		}
	}
	if len(numeric) < 2 {
		ra.Lat, ra.Lng = "", ""
		return ra
	}
	ra.Lat, ra.Lng = numeric[0], numeric[1]
	return ra
}

func firstContaining(cols []string, terms []string) string {
	for _, c := range cols {
		lc := strings.ToLower(c)
		for _, t := range terms {
			if strings.Contains(lc, t) {
				return c
			}
		}
	}
	return ""
}

func firstExact(cols []string, terms []string) string {
	for _, c := range cols {
		lc := strings.ToLower(c)
		for _, t := range terms {
			if lc == t {
				return c
			}
		}
	}
	return ""
}

// columnNumeric reports whether every non-missing cell of the column
// coerces to a number. Missing cells are tolerated; a column with no
// values at all does not count as numeric.
func columnNumeric(rows [][]any, col int) bool {
	seen := false
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v := row[col]
		if isMissing(v) {
			continue
		}
		if _, ok := coerce(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}
