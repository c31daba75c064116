package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mekedron/airq-cli/internal/config"
	"github.com/mekedron/airq-cli/internal/domain"
)

func newConfigureCommand(deps Dependencies) *cobra.Command {
	var apiBase string
	var lat float64
	var lon float64
	var requestTimeout time.Duration
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Create or update the local configuration file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deps.Config == nil {
				return fmt.Errorf("config store is not available")
			}
			if cmd.Flags().Changed("lat") != cmd.Flags().Changed("lon") {
				return fmt.Errorf("both --lat and --lon must be provided together")
			}
			changed := cmd.Flags().Changed("api-base") ||
				cmd.Flags().Changed("lat") ||
				cmd.Flags().Changed("request-timeout")

			exists, err := deps.Config.Exists()
			if err != nil {
				return err
			}

			cfg := config.Defaults()
			if exists && !overwrite {
				if !changed {
					return fmt.Errorf("config already exists at %s; pass --api-base, --lat/--lon or --request-timeout to update it, or --overwrite to reset it", deps.Config.Path())
				}
				if cfg, err = deps.Config.Load(cmd.Context()); err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("api-base") {
				cfg.APIBase = apiBase
			}
			if cmd.Flags().Changed("lat") {
				loc, err := domain.NewLocation(lat, lon)
				if err != nil {
					return err
				}
				cfg.DefaultLocation = loc
			}
			if cmd.Flags().Changed("request-timeout") {
				cfg.RequestTimeout = requestTimeout
			}

			if err := deps.Config.Save(cmd.Context(), cfg, exists); err != nil {
				return err
			}
			if exists && !overwrite {
				return writeTable(cmd, "Config updated at "+deps.Config.Path(), "")
			}
			return writeTable(cmd, "Config was written to "+deps.Config.Path(), "")
		},
	}

	cmd.Flags().StringVar(&apiBase, "api-base", "", "Forecast backend base url, for example http://localhost:8000/api.")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Default latitude used when a command gets no location.")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Default longitude used when a command gets no location.")
	cmd.Flags().DurationVar(&requestTimeout, "request-timeout", 0, "Upper bound for one forecast request, for example 15s.")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing config with defaults plus the given flags.")
	return cmd
}
