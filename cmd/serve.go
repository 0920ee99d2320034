package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkralik/photo-insight/internal/analyzer"
	"github.com/mkralik/photo-insight/internal/config"
	"github.com/mkralik/photo-insight/internal/perception"
	"github.com/mkralik/photo-insight/internal/vocab"
	"github.com/mkralik/photo-insight/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Photo Insight web server.
The server exposes the analysis pipeline over HTTP: POST an image (and
optionally pre-computed signals) to /api/v1/analyze.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (defaults to SERVER_PORT or 8080)")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("provider", "", "Perception backend for requests without signals (openai, gemini, ollama)")
}

func runServe(cmd *cobra.Command, args []string) error {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	providerName := mustGetString(cmd, "provider")

	cfg := config.Load()
	if port == 0 {
		port = cfg.Server.Port
	}
	if cfg.Server.Host != "" {
		host = cfg.Server.Host
	}

	var provider perception.Provider
	if providerName != "" {
		p, err := buildProvider(cmd.Context(), cfg, providerName, "")
		if err != nil {
			return err
		}
		provider = p
		fmt.Printf("Perception backend: %s\n", provider.Name())
	} else {
		fmt.Println("No perception backend configured; requests must carry signals")
	}

	table := vocab.MustLoad()
	server := web.NewServer(cfg, analyzer.New(table), provider, port, host)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
