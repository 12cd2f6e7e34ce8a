package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/safepath/safepath/internal/api"
	"github.com/safepath/safepath/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve safety scores and routes over HTTP",
	Long: `Start an HTTP server exposing the loaded dataset.

Endpoints:
  GET  /healthz       - liveness probe
  GET  /api/segments  - ranked safety scores (?limit=N)
  GET  /api/geojson   - segments as GeoJSON (?start=ID&end=ID adds the route)
  POST /api/route     - safest path, body {"start": 1, "end": 42, "alpha": 0.7, "beta": 0.3}

Examples:
  safepath serve --input segments.csv --addr :8080
  curl -X POST localhost:8080/api/route -d '{"start": 1, "end": 42}'`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		gin.SetMode(gin.ReleaseMode)
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := viper.GetString("addr")
		_, _ = fmt.Fprintf(os.Stderr, "🌐 safepath: serving %s on %s\n", cfg.InputPath, addr)
		if err := api.Serve(ctx, addr, api.NewRouter(cfg, storeManager)); err != nil {
			contract.LogWarn("Server stopped", err)
			return err
		}
		return nil
	},
}
