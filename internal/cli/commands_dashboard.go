package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mekedron/airq-cli/internal/domain"
	"github.com/mekedron/airq-cli/internal/forecast"
	"github.com/mekedron/airq-cli/internal/service/output"
)

const dashboardHelp = `commands:
  pick <lat> <lon>   request the forecast for a point
  find <address>     geocode an address and request its forecast
  hour <n>           move the cursor to hour n (clamped to the forecast)
  next | prev        move the cursor by one hour
  show               print every hour of the loaded forecast
  wait               block until the latest request resolves
  help               print this help
  quit               leave the dashboard`

// syncWriter serializes writes from the input loop and store listeners.
type syncWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *syncWriter) println(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintln(w.out, text)
}

type dashboard struct {
	deps    Dependencies
	store   *forecast.Store
	out     *syncWriter
	label   string
	last    *forecast.Request
	lastMtx sync.Mutex
}

func newDashboardCommand(deps Dependencies) *cobra.Command {
	var location locationFlags
	var verbose bool

	cmd := &cobra.Command{
		Use:   "dashboard [--lat --lon | --address]",
		Short: "Interactive session: pick points, scrub hours and watch forecasts load.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, label, err := resolveLocation(cmd.Context(), deps, cmd, location, output.FormatTable, "")
			if err != nil {
				return err
			}

			d := &dashboard{
				deps:  deps,
				store: deps.newStore(),
				out:   &syncWriter{out: cmd.OutOrStdout()},
				label: label,
			}
			defer d.store.Close()

			unsubscribe := d.store.Subscribe(func(snap forecast.Snapshot) {
				d.out.println(statusLine(snap, zoneFor(deps, snap.ForecastData)))
			})
			defer unsubscribe()

			d.out.println("airq dashboard, type `help` for commands")
			d.pick(cmd.Context(), loc, label)
			return d.run(cmd.Context(), cmd.InOrStdin())
		},
	}

	addLocationFlags(cmd, &location)
	addVerboseFlag(cmd, &verbose)
	return cmd
}

func (d *dashboard) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		quit, err := d.handle(ctx, fields[0], fields[1:])
		if err != nil {
			d.out.println("error: " + err.Error())
		}
		if quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read dashboard input: %w", err)
	}
	// Scripted input: let the last request land before leaving.
	d.wait(ctx)
	return nil
}

func (d *dashboard) handle(ctx context.Context, name string, args []string) (bool, error) {
	switch strings.ToLower(name) {
	case "pick":
		if len(args) != 2 {
			return false, errors.New("usage: pick <lat> <lon>")
		}
		lat, latErr := strconv.ParseFloat(args[0], 64)
		lon, lonErr := strconv.ParseFloat(args[1], 64)
		if latErr != nil || lonErr != nil {
			return false, errors.New("pick needs numeric coordinates")
		}
		loc, err := domain.NewLocation(lat, lon)
		if err != nil {
			return false, err
		}
		d.pick(ctx, loc, formatPoint(loc))
	case "find":
		if len(args) == 0 {
			return false, errors.New("usage: find <address>")
		}
		if d.deps.Location == nil {
			return false, errors.New("location resolver is not available")
		}
		place, err := d.deps.Location.Resolve(ctx, strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		label := place.DisplayName
		if label == "" {
			label = strings.Join(args, " ")
		}
		d.out.println("found " + label + " at " + formatPoint(place.Location))
		d.pick(ctx, place.Location, label)
	case "hour":
		if len(args) != 1 {
			return false, errors.New("usage: hour <n>")
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return false, errors.New("hour needs an integer")
		}
		d.store.SetActiveHour(index)
	case "next", "prev":
		step := 1
		if strings.EqualFold(name, "prev") {
			step = -1
		}
		d.store.SetActiveHour(d.store.Snapshot().ActiveHourIndex + step)
	case "show":
		snap := d.store.Snapshot()
		d.out.println(renderForecastTable(d.currentLabel(), snap, d.store.Markers(), zoneFor(d.deps, snap.ForecastData)))
	case "wait":
		d.wait(ctx)
	case "help":
		d.out.println(dashboardHelp)
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type `help`", name)
	}
	return false, nil
}

func (d *dashboard) pick(ctx context.Context, loc domain.Location, label string) {
	req, err := d.store.FetchForecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		d.out.println("error: " + err.Error())
		return
	}
	d.lastMtx.Lock()
	d.last = req
	d.label = label
	d.lastMtx.Unlock()
}

func (d *dashboard) wait(ctx context.Context) {
	d.lastMtx.Lock()
	req := d.last
	d.lastMtx.Unlock()
	if req != nil {
		_ = req.Wait(ctx)
	}
}

func (d *dashboard) currentLabel() string {
	d.lastMtx.Lock()
	defer d.lastMtx.Unlock()
	return d.label
}
