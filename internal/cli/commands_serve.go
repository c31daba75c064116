package cli

import (
	"github.com/spf13/cobra"

	httpapi "github.com/mekedron/airq-cli/internal/api/http"
	"github.com/mekedron/airq-cli/internal/forecast"
)

func newServeCommand(deps Dependencies) *cobra.Command {
	var addr string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve [--addr]",
		Short: "Serve the forecast state over HTTP for a browser map.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = deps.Settings.Server.Addr
			}
			if addr == "" {
				addr = ":8080"
			}

			store := deps.newStore()
			defer store.Close()

			logger := deps.logger()
			unsubscribe := store.Subscribe(func(snap forecast.Snapshot) {
				logger.Debug("state committed", "seq", snap.Seq, "status", snap.Status, "active_hour_index", snap.ActiveHourIndex)
			})
			defer unsubscribe()

			initial := store.Snapshot().Requested()
			if _, err := store.FetchForecast(cmd.Context(), initial.Lat, initial.Lon); err != nil {
				return err
			}

			server := httpapi.NewServer(store, logger, deps.Settings.Server.GinMode)
			return server.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, defaults to server.addr from the config.")
	addVerboseFlag(cmd, &verbose)
	return cmd
}
