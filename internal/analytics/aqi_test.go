package analytics

import "testing"

func floatPtr(v float64) *float64 {
	return &v
}

func TestComputeAQI(t *testing.T) {
	tests := []struct {
		name    string
		reading PollutantReading
		want    int
	}{
		{
			name:    "no pollutants present",
			reading: PollutantReading{},
			want:    0,
		},
		{
			name:    "zero concentrations",
			reading: PollutantReading{PM25: floatPtr(0), PM10: floatPtr(0)},
			want:    0,
		},
		{
			name:    "pm25 first breakpoint upper edge",
			reading: PollutantReading{PM25: floatPtr(12)},
			want:    50,
		},
		{
			name:    "pm25 second breakpoint upper edge",
			reading: PollutantReading{PM25: floatPtr(35.4)},
			want:    100,
		},
		{
			name:    "pm25 third breakpoint upper edge",
			reading: PollutantReading{PM25: floatPtr(55.4)},
			want:    150,
		},
		{
			name:    "pm10 first breakpoint upper edge",
			reading: PollutantReading{PM10: floatPtr(54)},
			want:    50,
		},
		{
			name:    "pm10 second breakpoint upper edge",
			reading: PollutantReading{PM10: floatPtr(154)},
			want:    100,
		},
		{
			name:    "maximum of sub-indexes wins",
			reading: PollutantReading{PM25: floatPtr(10), PM10: floatPtr(200)},
			want:    122, // pm10 sub-index 100 + (50/99)*45 = 122.7
		},
		{
			name:    "moderate pm25 only",
			reading: PollutantReading{PM25: floatPtr(30)},
			want:    88, // 50 + (50/23.3)*(30-12.1) = 88.4
		},
		{
			name:    "co no2 o3 do not contribute",
			reading: PollutantReading{CO: floatPtr(900), NO2: floatPtr(400), O3: floatPtr(300)},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAQI(tt.reading)
			if got != tt.want {
				t.Errorf("ComputeAQI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeAQI_ExtremePM25(t *testing.T) {
	aqi := ComputeAQI(PollutantReading{PM25: floatPtr(500)})

	if aqi < 300 {
		t.Errorf("ComputeAQI(pm25=500) = %v, want >= 300", aqi)
	}
	if got := Status(aqi); got != "hazardous" {
		t.Errorf("Status(%v) = %v, want hazardous", aqi, got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		aqi  int
		want string
	}{
		{"zero", 0, "good"},
		{"boundary good", 50, "good"},
		{"boundary moderate", 100, "moderate"},
		{"boundary unhealthy sensitive", 150, "unhealthy_sensitive"},
		{"boundary unhealthy", 200, "unhealthy"},
		{"boundary very unhealthy", 300, "very_unhealthy"},
		{"above 300", 301, "hazardous"},
		{"extreme", 550, "hazardous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Status(tt.aqi)
			if got != tt.want {
				t.Errorf("Status(%d) = %v, want %v", tt.aqi, got, tt.want)
			}
		})
	}
}

func TestForecastStatus(t *testing.T) {
	tests := []struct {
		name string
		aqi  int
		want string
	}{
		{"good", 40, "good"},
		{"moderate", 80, "moderate"},
		{"unhealthy sensitive", 120, "unhealthy_sensitive"},
		{"unhealthy", 180, "unhealthy"},
		{"collapses above 200", 250, "very_unhealthy"},
		{"no hazardous bin", 400, "very_unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForecastStatus(tt.aqi)
			if got != tt.want {
				t.Errorf("ForecastStatus(%d) = %v, want %v", tt.aqi, got, tt.want)
			}
		})
	}
}
