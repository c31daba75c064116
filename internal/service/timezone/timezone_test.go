package timezone

import (
	"testing"
	"time"
)

func TestZoneName(t *testing.T) {
	finder, err := Default()
	if err != nil {
		t.Fatalf("failed to create finder: %v", err)
	}

	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		want      string
	}{
		{name: "San Francisco", latitude: 37.7749, longitude: -122.4194, want: "America/Los_Angeles"},
		{name: "Helsinki", latitude: 60.1699, longitude: 24.9384, want: "Europe/Helsinki"},
		{name: "Tokyo", latitude: 35.6762, longitude: 139.6503, want: "Asia/Tokyo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := finder.ZoneName(tt.latitude, tt.longitude)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDefaultReturnsSingleton(t *testing.T) {
	first, err := Default()
	if err != nil {
		t.Fatalf("failed to create finder: %v", err)
	}
	second, _ := Default()
	if first != second {
		t.Fatal("expected the same finder instance")
	}
}

func TestZoneConvertsHours(t *testing.T) {
	finder, err := Default()
	if err != nil {
		t.Fatalf("failed to create finder: %v", err)
	}
	loc, err := finder.Zone(35.6762, 139.6503)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	local := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).In(loc)
	if local.Hour() != 9 {
		t.Fatalf("expected 09:00 in Tokyo, got %s", local.Format(time.RFC3339))
	}
}
