package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanchriswhite/EdgeViewer/internal/api"
	"github.com/bryanchriswhite/EdgeViewer/internal/bootstrap"
	"github.com/bryanchriswhite/EdgeViewer/internal/logger"
	"github.com/bryanchriswhite/EdgeViewer/internal/page"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the EdgeViewer server",
	Long: `Start the EdgeViewer HTTP server.

The server bootstraps the frame viewer into the host page, then serves the
page, a small REST API and a WebSocket stream of page updates.`,
	Example: `  # Start server on default port (8080)
  edgeviewer serve

  # Start server on custom port
  edgeviewer serve --port 9090

  # Serve a custom host page
  edgeviewer serve --page ./index.html

  # Start with debug logging
  edgeviewer serve --log-level debug`,
	RunE: runServe,
}

var servePage string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePage, "page", "", "host page HTML file (default is the built-in page)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("🖼  EdgeViewer - Processed Frame Viewer")
	fmt.Println("======================================")

	configMgr, cfg, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}
	log := logger.WithComponent("serve")
	log.Info().
		Str("path", configMgr.GetConfigPath()).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	doc, err := loadPage(servePage, cfg.PageTitle)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := page.NewLoop()
	session := bootstrap.Run(loop, doc, bootstrapOptions(cfg))

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()
	loop.FireReady()

	server := api.NewServer(loop, doc, session, api.Options{
		ContainerID:     cfg.Viewer.ContainerID,
		RefreshButtonID: cfg.RefreshButtonID,
	})

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start(cfg.ServerPort) }()

	fmt.Println()
	log.Info().Msg("✅ EdgeViewer is running!")
	log.Info().Msgf("   - Web UI: http://localhost:%d", cfg.ServerPort)
	log.Info().Msgf("   - API: http://localhost:%d/api", cfg.ServerPort)
	log.Info().Msg("   - Press Ctrl+C to stop")
	fmt.Println()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case err := <-loopErr:
		return fmt.Errorf("page loop stopped: %w", err)
	}

	fmt.Println()
	log.Info().Msg("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
