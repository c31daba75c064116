package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mekedron/airq-cli/internal/domain"
	"github.com/mekedron/airq-cli/internal/forecast"
)

type gatedFetcher struct {
	release chan struct{}
}

func (f *gatedFetcher) FetchForecast(ctx context.Context, _ domain.Location) (domain.ForecastSeries, error) {
	select {
	case <-f.release:
	case <-ctx.Done():
		return domain.ForecastSeries{}, ctx.Err()
	}
	series := domain.ForecastSeries{
		Latitude:   40.75,
		Longitude:  -74.05,
		AirQuality: make([]float64, domain.HorizonHours),
		Allergen:   make([]float64, domain.HorizonHours),
	}
	for i := range series.AirQuality {
		series.AirQuality[i] = float64(40 + i)
		series.Allergen[i] = float64(i % 12)
	}
	return series, nil
}

func newTestServer(t *testing.T) (*Server, *forecast.Store, *gatedFetcher) {
	t.Helper()
	fetcher := &gatedFetcher{release: make(chan struct{})}
	store := forecast.NewStore(fetcher)
	t.Cleanup(store.Close)
	return NewServer(store, nil, gin.TestMode), store, fetcher
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) forecast.Snapshot {
	t.Helper()
	var snap forecast.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v (body %s)", err, rec.Body.String())
	}
	return snap
}

func TestPing(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := doJSON(t, server.Handler(), http.MethodGet, "/ping", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"pong"`) {
		t.Fatalf("expected pong, got %s", rec.Body.String())
	}
}

func TestGetStateIdle(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	snap := decodeSnapshot(t, rec)
	if snap.Status != forecast.StatusIdle || snap.ForecastData != nil {
		t.Fatalf("expected idle snapshot, got %+v", snap)
	}
	if snap.MapCenter != forecast.DefaultLocation {
		t.Fatalf("expected map center at default location, got %+v", snap.MapCenter)
	}
}

func TestPostLocationAcceptsAndLoads(t *testing.T) {
	server, store, fetcher := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodPost, "/api/location", `{"latitude":40.7,"longitude":-74.0}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if !snap.Loading || snap.Status != forecast.StatusLoading {
		t.Fatalf("expected loading snapshot, got %+v", snap)
	}
	if snap.CurrentLatitude != 40.7 || snap.CurrentLongitude != -74.0 {
		t.Fatalf("expected requested point (40.7, -74), got (%v, %v)", snap.CurrentLatitude, snap.CurrentLongitude)
	}

	close(fetcher.release)
	deadline := time.Now().Add(2 * time.Second)
	for store.Snapshot().Status == forecast.StatusLoading {
		if time.Now().After(deadline) {
			t.Fatal("expected fetch to complete after the handler returned")
		}
		time.Sleep(5 * time.Millisecond)
	}

	snap = decodeSnapshot(t, doJSON(t, server.Handler(), http.MethodGet, "/api/state", ""))
	if snap.Status != forecast.StatusSuccess || snap.ActiveDataPoint == nil {
		t.Fatalf("expected success with active data point, got %+v", snap)
	}
	if snap.ActiveDataPoint.AQI != 40 {
		t.Fatalf("expected aqi 40 at hour 0, got %v", snap.ActiveDataPoint.AQI)
	}
	if snap.MapCenter != (domain.Location{Lat: 40.75, Lon: -74.05}) {
		t.Fatalf("expected map center at resolved point, got %+v", snap.MapCenter)
	}
}

func TestPostLocationRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "missing longitude", body: `{"latitude":1}`},
		{name: "string latitude", body: `{"latitude":"north","longitude":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, store, _ := newTestServer(t)
			rec := doJSON(t, server.Handler(), http.MethodPost, "/api/location", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if store.Snapshot().Status != forecast.StatusIdle {
				t.Fatalf("expected store to stay idle, got %s", store.Snapshot().Status)
			}
		})
	}
}

func TestPutHourClampsAndMarkers(t *testing.T) {
	server, store, fetcher := newTestServer(t)
	close(fetcher.release)
	if _, err := store.Load(context.Background(), 1, 2); err != nil {
		t.Fatalf("load: %v", err)
	}

	snap := decodeSnapshot(t, doJSON(t, server.Handler(), http.MethodPut, "/api/hour", `{"index":10}`))
	if snap.ActiveHourIndex != 10 || snap.ActiveDataPoint.AQI != 50 {
		t.Fatalf("expected hour 10 with aqi 50, got %+v", snap)
	}

	snap = decodeSnapshot(t, doJSON(t, server.Handler(), http.MethodPut, "/api/hour", `{"index":500}`))
	if snap.ActiveHourIndex != domain.HorizonHours-1 {
		t.Fatalf("expected clamp to %d, got %d", domain.HorizonHours-1, snap.ActiveHourIndex)
	}

	if rec := doJSON(t, server.Handler(), http.MethodPut, "/api/hour", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing index, got %d", rec.Code)
	}

	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/markers", "")
	var markers []domain.Marker
	if err := json.Unmarshal(rec.Body.Bytes(), &markers); err != nil {
		t.Fatalf("decode markers: %v", err)
	}
	if len(markers) != domain.HorizonHours || markers[5].Hour != 5 {
		t.Fatalf("expected %d ordered markers, got %d", domain.HorizonHours, len(markers))
	}
}

func TestGetMarkersEmptyBeforeLoad(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/markers", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}
}
