package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mekedron/airq-cli/internal/domain"
	"github.com/mekedron/airq-cli/internal/service/output"
)

const (
	codeInvalidArgument = "AIRQ_INVALID_ARGUMENT"
	codeLocationResolve = "AIRQ_LOCATION_RESOLVE_ERROR"
	codeForecast        = "AIRQ_FORECAST_ERROR"
)

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

type outputFlags struct {
	Format  string
	Output  string
	Verbose bool
}

func addOutputFlags(cmd *cobra.Command, flags *outputFlags) {
	cmd.Flags().StringVar(&flags.Format, "format", "table", "Output format: table, json, or yaml.")
	cmd.Flags().StringVar(&flags.Output, "output", "", "Also write the rendered output to this file.")
	addVerboseFlag(cmd, &flags.Verbose)
}

func addVerboseFlag(cmd *cobra.Command, verbose *bool) {
	cmd.Flags().BoolVar(verbose, "verbose", false, "Print the forecast backend request trace to stderr.")
}

type locationFlags struct {
	Lat     float64
	Lon     float64
	Address string
}

func addLocationFlags(cmd *cobra.Command, flags *locationFlags) {
	cmd.Flags().Float64Var(&flags.Lat, "lat", 0, "Latitude of the point to forecast. Requires --lon.")
	cmd.Flags().Float64Var(&flags.Lon, "lon", 0, "Longitude of the point to forecast. Requires --lat.")
	cmd.Flags().StringVar(&flags.Address, "address", "", "Address or place name, geocoded to coordinates. Cannot be combined with --lat/--lon.")
}

func parseOutputFormat(format string) (output.Format, error) {
	return output.ParseFormat(format)
}

func writeTable(cmd *cobra.Command, text string, outputPath string) error {
	return output.Emit(cmd.OutOrStdout(), outputPath, output.Line(text))
}

func writeMachinePayload(cmd *cobra.Command, env output.Envelope, format output.Format, outputPath string) error {
	return output.Emit(cmd.OutOrStdout(), outputPath, func(w io.Writer) error {
		return output.Encode(w, env, format)
	})
}

func emitError(
	cmd *cobra.Command,
	format output.Format,
	apiBase string,
	outputPath string,
	code string,
	message string,
) error {
	if format == output.FormatTable {
		if err := writeTable(cmd, message, outputPath); err != nil {
			return err
		}
		return &exitError{code: 1}
	}
	env := output.ErrorEnvelope(apiBase, code, message)
	if err := writeMachinePayload(cmd, env, format, outputPath); err != nil {
		return err
	}
	return &exitError{code: 1}
}

// resolveLocation picks the point from --address, --lat/--lon or the configured
// default, in that order, and returns it with a human label.
func resolveLocation(
	ctx context.Context,
	deps Dependencies,
	cmd *cobra.Command,
	flags locationFlags,
	format output.Format,
	outputPath string,
) (domain.Location, string, error) {
	hasLat := cmd.Flags().Changed("lat")
	hasLon := cmd.Flags().Changed("lon")
	apiBase := deps.Settings.APIBase

	if address := strings.TrimSpace(flags.Address); address != "" {
		if hasLat || hasLon {
			return domain.Location{}, "", emitError(
				cmd,
				format,
				apiBase,
				outputPath,
				codeInvalidArgument,
				"Do not combine --address with --lat/--lon. Use either --address or both --lat and --lon.",
			)
		}
		return resolveAddress(ctx, deps, cmd, address, format, outputPath)
	}

	if hasLat != hasLon {
		return domain.Location{}, "", emitError(
			cmd,
			format,
			apiBase,
			outputPath,
			codeInvalidArgument,
			"Both --lat and --lon must be provided together, or omit both to use the default location.",
		)
	}

	if !hasLat {
		loc := deps.Settings.DefaultLocation
		return loc, formatPoint(loc), nil
	}

	loc, err := domain.NewLocation(flags.Lat, flags.Lon)
	if err != nil {
		return domain.Location{}, "", emitError(cmd, format, apiBase, outputPath, codeInvalidArgument, err.Error())
	}
	return loc, formatPoint(loc), nil
}

func resolveAddress(
	ctx context.Context,
	deps Dependencies,
	cmd *cobra.Command,
	address string,
	format output.Format,
	outputPath string,
) (domain.Location, string, error) {
	apiBase := deps.Settings.APIBase
	if deps.Location == nil {
		return domain.Location{}, "", emitError(
			cmd,
			format,
			apiBase,
			outputPath,
			codeLocationResolve,
			"Location resolver is not available.",
		)
	}
	place, err := deps.Location.Resolve(ctx, address)
	if err != nil {
		return domain.Location{}, "", emitError(cmd, format, apiBase, outputPath, codeLocationResolve, err.Error())
	}
	label := place.DisplayName
	if label == "" {
		label = address
	}
	return place.Location, label, nil
}

func formatPoint(loc domain.Location) string {
	return formatCoordinate(loc.Lat) + ", " + formatCoordinate(loc.Lon)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
