package geotab

import "strings"

// Summary carries the validation statistics a caller shows next to the map:
// row accounting, mean coordinate, and which descriptive columns the upload
// carried.
type Summary struct {
	Dataset          string   `json:"dataset"`
	Accepted         int      `json:"accepted"`
	Rejected         int      `json:"rejected"`
	MeanLat          float64  `json:"mean_lat"`
	MeanLng          float64  `json:"mean_lng"`
	AttributeColumns []string `json:"attribute_columns,omitempty"`
}

// descriptive columns worth surfacing to the user, by literal name.
var attributeColumnNames = []string{"postal_code", "zip", "state", "city", "address", "location"}

// Summarize computes the Summary of a normalized dataset against the column
// set of its source table.
func Summarize(ds *Dataset, cols []string) Summary {
	s := Summary{Dataset: ds.Name, Accepted: ds.Accepted, Rejected: ds.Rejected}
	for _, c := range cols {
		lc := strings.ToLower(c)
		for _, want := range attributeColumnNames {
			if lc == want {
				s.AttributeColumns = append(s.AttributeColumns, c)
				break
			}
		}
	}
	if len(ds.Points) == 0 {
		return s
	}
	var sumLat, sumLng float64
	for _, p := range ds.Points {
		sumLat += p.Coord.Lat
		sumLng += p.Coord.Lng
	}
	n := float64(len(ds.Points))
	s.MeanLat = sumLat / n
	s.MeanLng = sumLng / n
	return s
}
