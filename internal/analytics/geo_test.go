package analytics

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "identical points",
			lat1: 37.7749, lon1: -122.4194,
			lat2: 37.7749, lon2: -122.4194,
			want:      0.0,
			tolerance: 0.0,
		},
		{
			name: "quarter great circle along equator",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 90,
			want:      10007.5,
			tolerance: 0.1,
		},
		{
			name: "san francisco to los angeles",
			lat1: 37.7749, lon1: -122.4194,
			lat2: 34.0522, lon2: -118.2437,
			want:      559.0,
			tolerance: 1.0,
		},
		{
			name: "pole to pole",
			lat1: 90, lon1: 0,
			lat2: -90, lon2: 0,
			want:      20015.1,
			tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine() = %v, want %v ± %v", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	ab := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
	ba := Haversine(51.5074, -0.1278, 48.8566, 2.3522)

	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("Haversine not symmetric: %v vs %v", ab, ba)
	}
}

func TestHaversine_IdenticalPointsExactlyZero(t *testing.T) {
	if d := Haversine(12.34, 56.78, 12.34, 56.78); d != 0 {
		t.Errorf("Haversine() for identical points = %v, want exactly 0", d)
	}
}
