package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mekedron/airq-cli/internal/config"
	"github.com/mekedron/airq-cli/internal/domain"
	locationgateway "github.com/mekedron/airq-cli/internal/gateway/location"
)

type testFetcher struct {
	mu    sync.Mutex
	calls []domain.Location
	fn    func(context.Context, domain.Location) (domain.ForecastSeries, error)
}

func (f *testFetcher) FetchForecast(ctx context.Context, location domain.Location) (domain.ForecastSeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, location)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, location)
	}
	return testSeries(location), nil
}

func (f *testFetcher) requested() []domain.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Location(nil), f.calls...)
}

// testSeries resolves to a point 0.01 deg north-east with aqi 3*h and allergen h%13.
func testSeries(location domain.Location) domain.ForecastSeries {
	series := domain.ForecastSeries{
		Latitude:       location.Lat + 0.01,
		Longitude:      location.Lon + 0.01,
		DistanceMeters: 1234,
		AirQuality:     make([]float64, domain.HorizonHours),
		Allergen:       make([]float64, domain.HorizonHours),
	}
	for i := 0; i < domain.HorizonHours; i++ {
		series.AirQuality[i] = float64(3 * i)
		series.Allergen[i] = float64(i % 13)
	}
	return series
}

type testLocationResolver struct {
	place     locationgateway.Place
	err       error
	addresses []string
}

func (r *testLocationResolver) Resolve(_ context.Context, address string) (locationgateway.Place, error) {
	r.addresses = append(r.addresses, address)
	if r.err != nil {
		return locationgateway.Place{}, r.err
	}
	return r.place, nil
}

type testZones struct {
	zone *time.Location
	err  error
}

func (z *testZones) Zone(float64, float64) (*time.Location, error) {
	return z.zone, z.err
}

type testConfigManager struct {
	path           string
	exists         bool
	cfg            domain.Config
	loadErr        error
	saved          *domain.Config
	savedOverwrite bool
}

func (m *testConfigManager) Path() string {
	return m.path
}

func (m *testConfigManager) Exists() (bool, error) {
	return m.exists, nil
}

func (m *testConfigManager) Load(context.Context) (domain.Config, error) {
	if m.loadErr != nil {
		return domain.Config{}, m.loadErr
	}
	return m.cfg, nil
}

func (m *testConfigManager) Save(_ context.Context, cfg domain.Config, overwrite bool) error {
	m.saved = &cfg
	m.savedOverwrite = overwrite
	return nil
}

func testDependencies(fetcher *testFetcher) Dependencies {
	return Dependencies{
		Forecast: fetcher,
		Settings: config.Defaults(),
		Version:  "test",
	}
}

func runCLI(t *testing.T, deps Dependencies, args ...string) (int, string, string) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := Execute(context.Background(), args, deps, stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func runCLIWithInput(t *testing.T, deps Dependencies, input string, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}
