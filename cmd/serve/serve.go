// Package serve implements the serve command, which exposes the pipeline over HTTP.
package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fedelife/expense-extractor/cmd/root"
	"fedelife/expense-extractor/internal/api"
	"fedelife/expense-extractor/internal/logging"

	"github.com/spf13/cobra"
)

// Port overrides server.port when set.
var Port int

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction API over HTTP",
	Long: `Start an HTTP server with:
  GET  /api/health
  POST /api/extract   {"text": "...", "model_response": "...", "use_model": false}
  POST /api/recover   raw model response body`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		port := Port
		if port == 0 {
			port = c.GetConfig().Server.Port
		}
		logger := c.GetLogger()
		app := api.NewApp(c, logger)

		go func() {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit
			logger.Info("Shutting down server")
			if err := app.Shutdown(); err != nil {
				logger.WithError(err).Warn("Server shutdown failed")
			}
		}()

		addr := fmt.Sprintf(":%d", port)
		fields := []logging.Field{
			logging.F("addr", addr),
			logging.F(logging.FieldSource, c.GetRateSource().Name()),
		}
		if model := c.GetModelClient(); model != nil {
			fields = append(fields, logging.F(logging.FieldModel, model.Name()))
		}
		logger.Info("Starting server", fields...)
		return app.Listen(addr)
	},
}

func init() {
	Cmd.Flags().IntVarP(&Port, "port", "p", 0, "Port to listen on (default server.port)")
}
