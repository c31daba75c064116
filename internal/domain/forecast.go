package domain

import "time"

// HorizonHours is the number of hourly steps every forecast series covers.
const HorizonHours = 72

// ForecastSeries is a fetched 72-hour projection for the resolved forecast point.
// Values installed in the forecast store are never mutated afterwards.
type ForecastSeries struct {
	Latitude       float64     `json:"latitude" yaml:"latitude"`
	Longitude      float64     `json:"longitude" yaml:"longitude"`
	DistanceMeters float64     `json:"distance_meters" yaml:"distance_meters"`
	AirQuality     []float64   `json:"air_quality_series" yaml:"air_quality_series"`
	Allergen       []float64   `json:"allergen_series" yaml:"allergen_series"`
	Hours          []time.Time `json:"hours,omitempty" yaml:"hours,omitempty"`
}

// Len returns the number of hourly steps in the series.
func (s ForecastSeries) Len() int {
	return len(s.AirQuality)
}

// Point returns the resolved forecast point.
func (s ForecastSeries) Point() Location {
	return Location{Lat: s.Latitude, Lon: s.Longitude}
}

// HourAt returns the timestamp of the given step, when the service provided one.
func (s ForecastSeries) HourAt(index int) (time.Time, bool) {
	if index < 0 || index >= len(s.Hours) {
		return time.Time{}, false
	}
	return s.Hours[index], true
}

// DataPoint is the reading for a single hour of the series.
type DataPoint struct {
	AQI              float64 `json:"aqi" yaml:"aqi"`
	Allergen         float64 `json:"allergen" yaml:"allergen"`
	AQICategory      string  `json:"aqi_category" yaml:"aqi_category"`
	AllergenCategory string  `json:"allergen_category" yaml:"allergen_category"`
}

// NewDataPoint builds a data point with its category labels.
func NewDataPoint(aqi, allergen float64) DataPoint {
	return DataPoint{
		AQI:              aqi,
		Allergen:         allergen,
		AQICategory:      AQICategory(aqi),
		AllergenCategory: PollenCategory(allergen),
	}
}

// Marker is the per-hour payload a map renders at the resolved point.
type Marker struct {
	Hour      int        `json:"hour" yaml:"hour"`
	Location  Location   `json:"location" yaml:"location"`
	Time      *time.Time `json:"time,omitempty" yaml:"time,omitempty"`
	DataPoint `yaml:",inline"`
}
