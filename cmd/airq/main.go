package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mekedron/airq-cli/internal/cli"
	"github.com/mekedron/airq-cli/internal/config"
	forecastgateway "github.com/mekedron/airq-cli/internal/gateway/forecast"
	locationgateway "github.com/mekedron/airq-cli/internal/gateway/location"
	"github.com/mekedron/airq-cli/internal/service/timezone"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = os.Stderr.WriteString("load .env: " + err.Error() + "\n")
	}

	store, err := config.NewStore()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	settings, err := store.Load(context.Background())
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + " (" + store.Path() + ")\n")
		os.Exit(1)
	}

	logger := config.NewLogger(settings.Log, os.Stderr)

	deps := cli.Dependencies{
		Forecast: forecastgateway.NewClient(
			forecastgateway.WithAPIBase(settings.APIBase),
			forecastgateway.WithRequestMinInterval(settings.RequestMinInterval),
			forecastgateway.WithBreaker(settings.BreakerFailures, 0),
		),
		Location: locationgateway.NewClient(),
		Zones:    cli.ZoneFinderFunc(timezone.Lookup),
		Config:   store,
		Settings: settings,
		Logger:   logger,
		Version:  version,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	exitCode := cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}
