package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/mekedron/airq-cli/internal/domain"
	"github.com/mekedron/airq-cli/internal/forecast"
	locationgateway "github.com/mekedron/airq-cli/internal/gateway/location"
)

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// LocationResolver resolves addresses to coordinates.
type LocationResolver interface {
	Resolve(ctx context.Context, address string) (locationgateway.Place, error)
}

// ZoneFinder resolves the local time zone of a point.
type ZoneFinder interface {
	Zone(latitude, longitude float64) (*time.Location, error)
}

// ZoneFinderFunc adapts a plain lookup function to ZoneFinder.
type ZoneFinderFunc func(latitude, longitude float64) (*time.Location, error)

// Zone calls f.
func (f ZoneFinderFunc) Zone(latitude, longitude float64) (*time.Location, error) {
	return f(latitude, longitude)
}

// ConfigManager stores client configuration.
type ConfigManager interface {
	Path() string
	Exists() (bool, error)
	Load(ctx context.Context) (domain.Config, error)
	Save(ctx context.Context, cfg domain.Config, overwrite bool) error
}

// Dependencies wires runtime services.
type Dependencies struct {
	Forecast forecast.Fetcher
	Location LocationResolver
	Zones    ZoneFinder
	Config   ConfigManager
	Settings domain.Config
	Logger   *slog.Logger
	Version  string
}

func (d Dependencies) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newStore builds a session store from the configured defaults.
func (d Dependencies) newStore() *forecast.Store {
	initial := d.Settings.DefaultLocation
	if initial == (domain.Location{}) {
		initial = forecast.DefaultLocation
	}
	return forecast.NewStore(
		d.Forecast,
		forecast.WithLogger(d.logger()),
		forecast.WithRequestTimeout(d.Settings.RequestTimeout),
		forecast.WithInitialLocation(initial),
	)
}

var errVersionShown = fmt.Errorf("version shown")

// Execute runs the CLI with injected dependencies.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil || err == errVersionShown {
		return 0
	}
	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}

	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return 2
	}

	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, msg)
	}
	return 1
}
