package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vigil-app/vigil/internal/pipeline"
	"github.com/vigil-app/vigil/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis API",
	Long: `Start an HTTP server that accepts analysis requests.

API Endpoints:
  GET  /api/health           # Health check
  POST /api/analyze          # Analyze a URL: {"url": "..."}
  POST /api/analyze/upload   # Analyze an uploaded file (multipart "file")`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pipe, err := pipeline.Build(ctx, cfg)
		if err != nil {
			return err
		}
		defer pipe.Close()

		return server.New(cfg, pipe).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP listen port (default: 8080)")
	rootCmd.AddCommand(serveCmd)
}
