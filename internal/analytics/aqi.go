package analytics

// PollutantReading holds optional pollutant concentrations from a single
// station reading. A nil field means the pollutant was not measured.
type PollutantReading struct {
	PM25 *float64
	PM10 *float64
	CO   *float64
	NO2  *float64
	O3   *float64
}

// ComputeAQI returns the air quality index for a reading: the maximum
// per-pollutant sub-index, truncated to an integer, or 0 when no pollutant
// is present. CO, NO2 and O3 are carried on the reading for storage but
// have no breakpoint tables here and do not contribute to the index.
func ComputeAQI(r PollutantReading) int {
	var subIndexes []float64

	if r.PM25 != nil {
		subIndexes = append(subIndexes, pm25SubIndex(*r.PM25))
	}
	if r.PM10 != nil {
		subIndexes = append(subIndexes, pm10SubIndex(*r.PM10))
	}

	if len(subIndexes) == 0 {
		return 0
	}

	max := subIndexes[0]
	for _, v := range subIndexes[1:] {
		if v > max {
			max = v
		}
	}
	return int(max)
}

// pm25SubIndex maps a PM2.5 concentration (µg/m³) onto the index scale via
// piecewise linear breakpoints. The top bracket keeps the fixed 250-150.5
// denominator instead of being truly open-ended.
func pm25SubIndex(c float64) float64 {
	switch {
	case c <= 12:
		return (50.0 / 12.0) * c
	case c <= 35.4:
		return 50 + ((100.0-50.0)/(35.4-12.1))*(c-12.1)
	case c <= 55.4:
		return 100 + ((150.0-100.0)/(55.4-35.5))*(c-35.5)
	case c <= 150.4:
		return 150 + ((200.0-150.0)/(150.4-55.5))*(c-55.5)
	default:
		return 200 + ((300.0-200.0)/(250.0-150.5))*(c-150.5)
	}
}

// pm10SubIndex maps a PM10 concentration (µg/m³) onto the index scale. The
// top bracket keeps the fixed 354-255 denominator.
func pm10SubIndex(c float64) float64 {
	switch {
	case c <= 54:
		return (50.0 / 54.0) * c
	case c <= 154:
		return 50 + ((100.0-50.0)/(154.0-55.0))*(c-55)
	case c <= 254:
		return 100 + ((150.0-100.0)/(254.0-155.0))*(c-155)
	default:
		return 150 + ((200.0-150.0)/(354.0-255.0))*(c-255)
	}
}

// Status maps an AQI value onto the six-bin severity scale used for
// current-conditions reporting.
func Status(aqi int) string {
	switch {
	case aqi <= 50:
		return "good"
	case aqi <= 100:
		return "moderate"
	case aqi <= 150:
		return "unhealthy_sensitive"
	case aqi <= 200:
		return "unhealthy"
	case aqi <= 300:
		return "very_unhealthy"
	default:
		return "hazardous"
	}
}

// ForecastStatus maps an AQI value onto the five-bin scale used for
// predicted values. It diverges from Status above 200: everything beyond
// "unhealthy" collapses into "very_unhealthy" and there is no "hazardous"
// bin. The two tables are kept separate on purpose; callers working with
// measured readings should use Status.
func ForecastStatus(aqi int) string {
	switch {
	case aqi <= 50:
		return "good"
	case aqi <= 100:
		return "moderate"
	case aqi <= 150:
		return "unhealthy_sensitive"
	case aqi <= 200:
		return "unhealthy"
	default:
		return "very_unhealthy"
	}
}
