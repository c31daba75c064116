package forecast

import "github.com/mekedron/airq-cli/internal/domain"

// ClampHour bounds a cursor to [0, horizon).
func ClampHour(index, horizon int) int {
	if horizon <= 0 || index < 0 {
		return 0
	}
	if index >= horizon {
		return horizon - 1
	}
	return index
}

// ActiveDataPoint returns the reading under the cursor, or nil when no series is
// loaded or the cursor is out of range.
func ActiveDataPoint(series *domain.ForecastSeries, cursor int) *domain.DataPoint {
	if series == nil {
		return nil
	}
	if cursor < 0 || cursor >= len(series.AirQuality) || cursor >= len(series.Allergen) {
		return nil
	}
	point := domain.NewDataPoint(series.AirQuality[cursor], series.Allergen[cursor])
	return &point
}

// MapCenter returns the resolved forecast point, falling back to the requested
// point while no series is loaded.
func MapCenter(series *domain.ForecastSeries, requested domain.Location) domain.Location {
	if series == nil {
		return requested
	}
	return series.Point()
}

// Markers projects every hour of the series into map markers.
func Markers(series *domain.ForecastSeries) []domain.Marker {
	if series == nil {
		return nil
	}
	n := min(len(series.AirQuality), len(series.Allergen))
	markers := make([]domain.Marker, 0, n)
	for i := 0; i < n; i++ {
		marker := domain.Marker{
			Hour:      i,
			Location:  series.Point(),
			DataPoint: domain.NewDataPoint(series.AirQuality[i], series.Allergen[i]),
		}
		if ts, ok := series.HourAt(i); ok {
			marker.Time = &ts
		}
		markers = append(markers, marker)
	}
	return markers
}

func horizonOf(series *domain.ForecastSeries) int {
	if series == nil {
		return domain.HorizonHours
	}
	return series.Len()
}
