package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mekedron/airq-cli/internal/forecast"
	"github.com/mekedron/airq-cli/internal/service/output"
)

func newForecastCommand(deps Dependencies) *cobra.Command {
	var flags outputFlags
	var location locationFlags
	var hour int

	cmd := &cobra.Command{
		Use:   "forecast [--lat --lon | --address] [--hour N]",
		Short: "Fetch the 72-hour air quality and allergen forecast for a point.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			apiBase := deps.Settings.APIBase
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return emitError(cmd, output.FormatTable, apiBase, flags.Output, codeInvalidArgument, err.Error())
			}

			loc, label, err := resolveLocation(cmd.Context(), deps, cmd, location, format, flags.Output)
			if err != nil {
				return err
			}

			store := deps.newStore()
			defer store.Close()

			snap, err := store.Load(cmd.Context(), loc.Lat, loc.Lon)
			if err != nil {
				return emitError(cmd, format, apiBase, flags.Output, codeForecast, err.Error())
			}
			if snap.Status == forecast.StatusFailed {
				return emitError(cmd, format, apiBase, flags.Output, codeForecast, snap.Error)
			}

			warnings := []string{}
			if cmd.Flags().Changed("hour") {
				applied := store.SetActiveHour(hour)
				if applied != hour {
					warnings = append(warnings, fmt.Sprintf("hour %d is outside the forecast, showing hour %d", hour, applied))
				}
				snap = store.Snapshot()
			}

			if format == output.FormatTable {
				zone := zoneFor(deps, snap.ForecastData)
				text := renderForecastTable(label, snap, store.Markers(), zone)
				for _, warning := range warnings {
					text += "\nwarning: " + warning
				}
				return writeTable(cmd, text, flags.Output)
			}
			env := output.NewEnvelope(apiBase, snap, warnings)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	addLocationFlags(cmd, &location)
	cmd.Flags().IntVar(&hour, "hour", 0, "Hour of the forecast to highlight, 0-71. Out-of-range values are clamped.")
	addOutputFlags(cmd, &flags)
	return cmd
}
