package geotab

// ValidCoordinates reports whether the candidate latitude/longitude pair
// coerces to numbers inside the geographic range: lat in [-90,90] and
// lng in [-180,180], both inclusive. Values that fail coercion make the
// pair invalid; that is an expected outcome, not an error, so the check is
// a plain bool safe to run on every row of arbitrarily large tables.
func ValidCoordinates(latCandidate, lngCandidate any) bool {
	lat, ok := coerce(latCandidate)
	if !ok {
		return false
	}
	lng, ok := coerce(lngCandidate)
	if !ok {
		return false
	}
	// NaN fails both comparisons and ends up invalid here.
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
