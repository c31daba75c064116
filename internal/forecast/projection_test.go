package forecast

import (
	"testing"
	"time"

	"github.com/mekedron/airq-cli/internal/domain"
)

func TestClampHour(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		horizon int
		want    int
	}{
		{name: "in range", index: 10, horizon: 72, want: 10},
		{name: "negative", index: -1, horizon: 72, want: 0},
		{name: "past end", index: 72, horizon: 72, want: 71},
		{name: "empty horizon", index: 5, horizon: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampHour(tt.index, tt.horizon); got != tt.want {
				t.Errorf("ClampHour(%d, %d) = %d, want %d", tt.index, tt.horizon, got, tt.want)
			}
		})
	}
}

func TestActiveDataPointWithoutSeries(t *testing.T) {
	if point := ActiveDataPoint(nil, 0); point != nil {
		t.Fatalf("expected nil data point, got %+v", point)
	}
	series := makeSeries(0, 0, 0, 0)
	if point := ActiveDataPoint(&series, domain.HorizonHours); point != nil {
		t.Fatalf("expected nil data point for out-of-range cursor, got %+v", point)
	}
}

func TestActiveDataPointCategories(t *testing.T) {
	series := makeSeries(0, 0, 120, 8)
	point := ActiveDataPoint(&series, 0)
	if point == nil {
		t.Fatal("expected data point")
	}
	if point.AQICategory != "Unhealthy for Sensitive Groups" {
		t.Fatalf("expected AQI category for 120, got %q", point.AQICategory)
	}
	if point.AllergenCategory != "Medium-High" {
		t.Fatalf("expected pollen category for 8, got %q", point.AllergenCategory)
	}
}

func TestMapCenter(t *testing.T) {
	requested := domain.Location{Lat: 1, Lon: 2}
	if got := MapCenter(nil, requested); got != requested {
		t.Fatalf("expected fallback to requested point, got %+v", got)
	}
	series := makeSeries(1.5, 2.5, 0, 0)
	if got := MapCenter(&series, requested); got != (domain.Location{Lat: 1.5, Lon: 2.5}) {
		t.Fatalf("expected resolved point, got %+v", got)
	}
}

func TestMarkers(t *testing.T) {
	if markers := Markers(nil); markers != nil {
		t.Fatalf("expected no markers without series, got %d", len(markers))
	}

	series := makeSeries(4, 5, 30, 0)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	series.Hours = make([]time.Time, domain.HorizonHours)
	for i := range series.Hours {
		series.Hours[i] = start.Add(time.Duration(i) * time.Hour)
	}

	markers := Markers(&series)
	if len(markers) != domain.HorizonHours {
		t.Fatalf("expected %d markers, got %d", domain.HorizonHours, len(markers))
	}
	last := markers[domain.HorizonHours-1]
	if last.Hour != 71 || last.AQI != 101 || last.Location != (domain.Location{Lat: 4, Lon: 5}) {
		t.Fatalf("unexpected last marker: %+v", last)
	}
	if last.Time == nil || !last.Time.Equal(start.Add(71*time.Hour)) {
		t.Fatalf("expected marker timestamp, got %v", last.Time)
	}
}
