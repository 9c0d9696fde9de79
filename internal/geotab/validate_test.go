package geotab

import "testing"

func TestValidCoordinates_RangeAndCoercion(t *testing.T) {
	cases := []struct {
		name     string
		lat, lng any
		want     bool
	}{
		{"nyc floats", 40.7128, -74.0060, true},
		{"string pair", "40.7128", " -74.0060 ", true},
		{"int pair", 45, 90, true},
		{"lat north pole boundary", 90.0, 0.0, true},
		{"lat south pole boundary", -90.0, 0.0, true},
		{"lng dateline east boundary", 0.0, 180.0, true},
		{"lng dateline west boundary", 0.0, -180.0, true},
		{"lat just over", 90.0000001, 0.0, false},
		{"lat just under", -90.0000001, 0.0, false},
		{"lng just over", 0.0, 180.0000001, false},
		{"lng just under", 0.0, -180.0000001, false},
		{"textual junk", "abc", "def", false},
		{"one side junk", 40.0, "def", false},
		{"missing lat", nil, -74.0, false},
		{"missing lng", 40.0, nil, false},
		{"empty strings", "", "", false},
		{"nan string", "nan", "0", false},
		{"inf string", "+inf", "0", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidCoordinates(tc.lat, tc.lng); got != tc.want {
				t.Fatalf("ValidCoordinates(%v, %v) = %v, want %v", tc.lat, tc.lng, got, tc.want)
			}
		})
	}
}

func TestValidCoordinates_PureOverRepeatedCalls(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if !ValidCoordinates(59.3293, 18.0686) {
			t.Fatalf("call %d flipped to invalid", i)
		}
	}
}
