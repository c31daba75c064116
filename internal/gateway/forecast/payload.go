package forecast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/mekedron/airq-cli/internal/domain"
)

var forecastTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// reading is a series entry: either a bare number or an object such as
// {"forecast_time": ..., "aqi": 42} or {"forecast_time": ..., "pollen_index": 3}.
type reading struct {
	value float64
	time  time.Time
}

type readingObject struct {
	ForecastTime string   `json:"forecast_time"`
	AQI          *float64 `json:"aqi"`
	PollenIndex  *float64 `json:"pollen_index"`
	Value        *float64 `json:"value"`
}

func (r *reading) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return errors.New("reading must not be null")
	}

	var value float64
	if err := json.Unmarshal(trimmed, &value); err == nil {
		r.value = value
		return nil
	}

	var entry readingObject
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return fmt.Errorf("reading must be a number or an object")
	}
	switch {
	case entry.AQI != nil:
		r.value = *entry.AQI
	case entry.PollenIndex != nil:
		r.value = *entry.PollenIndex
	case entry.Value != nil:
		r.value = *entry.Value
	default:
		return fmt.Errorf("reading object has no aqi, pollen_index or value")
	}
	if ts := strings.TrimSpace(entry.ForecastTime); ts != "" {
		parsed, err := parseForecastTime(ts)
		if err != nil {
			return err
		}
		r.time = parsed
	}
	return nil
}

func parseForecastTime(raw string) (time.Time, error) {
	for _, layout := range forecastTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse forecast_time %q", raw)
}

type forecastPayload struct {
	Latitude       *float64  `json:"latitude" validate:"required"`
	Longitude      *float64  `json:"longitude" validate:"required"`
	DistanceMeters *float64  `json:"distance_meters"`
	AirQuality     []reading `json:"air_quality_series" validate:"required,len=72"`
	Allergen       []reading `json:"allergen_series" validate:"required,len=72"`
}

func decodeForecastPayload(raw []byte, validate *validator.Validate) (forecastPayload, error) {
	var payload forecastPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return forecastPayload{}, fmt.Errorf("decode response body: %w", err)
	}
	if err := validate.Struct(payload); err != nil {
		return forecastPayload{}, fmt.Errorf("validate response body: %w", err)
	}
	return payload, nil
}

func (p forecastPayload) toSeries(requested domain.Location) domain.ForecastSeries {
	series := domain.ForecastSeries{
		Latitude:   *p.Latitude,
		Longitude:  *p.Longitude,
		AirQuality: readingValues(p.AirQuality),
		Allergen:   readingValues(p.Allergen),
		Hours:      readingTimes(p.AirQuality),
	}
	if p.DistanceMeters != nil {
		series.DistanceMeters = *p.DistanceMeters
	} else {
		series.DistanceMeters = geo.Distance(
			orb.Point{requested.Lon, requested.Lat},
			orb.Point{series.Longitude, series.Latitude},
		)
	}
	return series
}

func readingValues(readings []reading) []float64 {
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.value
	}
	return values
}

// readingTimes returns nil unless every entry carries a timestamp.
func readingTimes(readings []reading) []time.Time {
	times := make([]time.Time, len(readings))
	for i, r := range readings {
		if r.time.IsZero() {
			return nil
		}
		times[i] = r.time
	}
	return times
}
