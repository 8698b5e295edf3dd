package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ppiankov/atlasprompt/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prompt form, map and JSON API over HTTP",
	Long: `Serve starts the web front end:

  GET  /                    prompt form
  POST /get-coordinates     extract places (form or JSON body)
  GET  /map.png             rendered map (?labels=0|1&theme=name)
  GET  /download-json       current set as a file
  GET  /api/places          current set with colours and highlighted facts
  GET  /api/render-request  the map request, key redacted
  GET  /healthz             liveness

Example:
  atlasprompt serve
  atlasprompt serve --host 0.0.0.0 --port 8080 --store redis`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "listen host")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().String("provider", "", "extraction provider (gemini, openai, anthropic, ollama)")
	serveCmd.Flags().String("model", "", "model name (provider-specific)")
	serveCmd.Flags().String("store", "", "store backend (memory, file, layered, redis)")
	serveCmd.Flags().String("store-path", "", "path of the current set document")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	p, err := newPipeline(true)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg.Server, p, log)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Serving at http://%s\n", srv.Addr())
	return srv.Run(ctx)
}
