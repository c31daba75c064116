package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mekedron/airq-cli/internal/domain"
	"github.com/mekedron/airq-cli/internal/forecast"
	"github.com/mekedron/airq-cli/internal/service/output"
)

const hourLabelLayout = "Mon 15:04 MST"

// zoneFor returns the local zone of the resolved point, or nil when the series
// has no timestamps or the zone is unknown.
func zoneFor(deps Dependencies, series *domain.ForecastSeries) *time.Location {
	if series == nil || series.Hours == nil || deps.Zones == nil {
		return nil
	}
	zone, err := deps.Zones.Zone(series.Latitude, series.Longitude)
	if err != nil {
		deps.logger().Debug("timezone lookup failed", "latitude", series.Latitude, "longitude", series.Longitude, "error", err)
		return nil
	}
	return zone
}

func hourLabel(series *domain.ForecastSeries, hour int, zone *time.Location) string {
	if series != nil {
		if ts, ok := series.HourAt(hour); ok {
			if zone == nil {
				zone = time.UTC
			}
			return ts.In(zone).Format(hourLabelLayout)
		}
	}
	return "+" + strconv.Itoa(hour) + "h"
}

func formatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatDistance(meters float64) string {
	if meters >= 1000 {
		return strconv.FormatFloat(meters/1000, 'f', 1, 64) + " km"
	}
	return strconv.FormatFloat(meters, 'f', 0, 64) + " m"
}

// statusLine renders one snapshot as a single dashboard line.
func statusLine(snap forecast.Snapshot, zone *time.Location) string {
	prefix := "[#" + strconv.FormatUint(snap.Seq, 10) + "] "
	switch snap.Status {
	case forecast.StatusLoading:
		return prefix + "loading forecast for " + formatPoint(snap.Requested())
	case forecast.StatusFailed:
		return prefix + "failed: " + snap.Error
	case forecast.StatusSuccess:
		point := snap.ActiveDataPoint
		if point == nil {
			return prefix + "no data"
		}
		return fmt.Sprintf(
			"%shour %s (%d/%d): AQI %s %s | allergen %s %s @ %s (%s away)",
			prefix,
			hourLabel(snap.ForecastData, snap.ActiveHourIndex, zone),
			snap.ActiveHourIndex+1,
			snap.Horizon(),
			formatReading(point.AQI),
			point.AQICategory,
			formatReading(point.Allergen),
			point.AllergenCategory,
			formatPoint(snap.MapCenter),
			formatDistance(snap.ForecastData.DistanceMeters),
		)
	default:
		return "idle @ " + formatPoint(snap.MapCenter)
	}
}

// renderForecastTable renders the active hour summary and every hourly marker.
func renderForecastTable(label string, snap forecast.Snapshot, markers []domain.Marker, zone *time.Location) string {
	var title strings.Builder
	title.WriteString("Forecast for " + label)
	if snap.ForecastData != nil {
		title.WriteString("\nResolved point: " + formatPoint(snap.MapCenter))
		title.WriteString(" (" + formatDistance(snap.ForecastData.DistanceMeters) + " from request)")
	}
	if point := snap.ActiveDataPoint; point != nil {
		title.WriteString(fmt.Sprintf(
			"\nActive hour: %s | AQI %s %s | allergen %s %s\n",
			hourLabel(snap.ForecastData, snap.ActiveHourIndex, zone),
			formatReading(point.AQI),
			point.AQICategory,
			formatReading(point.Allergen),
			point.AllergenCategory,
		))
	}

	rows := make([][]string, 0, len(markers))
	for _, marker := range markers {
		active := ""
		if marker.Hour == snap.ActiveHourIndex {
			active = "*"
		}
		rows = append(rows, []string{
			active,
			hourLabel(snap.ForecastData, marker.Hour, zone),
			formatReading(marker.AQI),
			marker.AQICategory,
			formatReading(marker.Allergen),
			marker.AllergenCategory,
		})
	}
	return output.RenderTable(
		title.String(),
		[]string{"", "Hour", "AQI", "AQI category", "Allergen", "Allergen category"},
		rows,
	)
}
