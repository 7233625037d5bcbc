package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"resumatch/internal/ai"
	"resumatch/internal/config"
	"resumatch/internal/observability"
	"resumatch/internal/server"
	"resumatch/internal/workflow"
)

type serveFlags struct {
	port     string
	host     string
	tlsMode  string
	certFile string
	keyFile  string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start an HTTP server exposing scoring, prompt composition, streamed
generation, rewriting, cover letters, interview questions, document text
extraction and Ollama model management.

Use --tls-mode server with --cert-file and --key-file to serve HTTPS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags, cmd)
		},
	}

	cmd.Flags().StringVarP(&flags.port, "port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().StringVar(&flags.host, "host", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&flags.tlsMode, "tls-mode", "", "TLS mode: disabled or server (overrides config)")
	cmd.Flags().StringVar(&flags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	cmd.Flags().StringVar(&flags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
	return cmd
}

// apply copies the flags that were set over the loaded server config
func (f serveFlags) apply(cfg *config.ServerConfig) {
	for dst, v := range map[*string]string{
		&cfg.Port:         f.port,
		&cfg.Host:         f.host,
		&cfg.TLS.Mode:     f.tlsMode,
		&cfg.TLS.CertFile: f.certFile,
		&cfg.TLS.KeyFile:  f.keyFile,
	} {
		if v != "" {
			*dst = v
		}
	}
}

func runServe(ctx context.Context, flags serveFlags, cmd *cobra.Command) error {
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	flags.apply(&cfg.Server)
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewManager(observability.SettingsFromConfig(cfg, Version), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	metrics := om.Metrics()
	aiService := ai.NewService(cfg, logger, ai.WithRecorder(metrics))
	flow := workflow.New(cfg, aiService, logger, workflow.WithRecorder(metrics))

	watcher := config.NewPromptWatcher(cfg, 0, func(operation string) {
		logger.Info("System prompt reloaded", "operation", operation)
	}, logger)
	if err := watcher.Start(); err != nil {
		logger.LogError(err, "Prompt file watching disabled")
	} else {
		defer func() {
			if err := watcher.Stop(); err != nil {
				logger.LogError(err, "Failed to stop prompt watcher")
			}
		}()
	}

	srv := server.NewServer(cfg, server.NewServerConfig(cfg, Version), server.Dependencies{
		AI:            aiService,
		Workflow:      flow,
		Observability: om,
	}, logger)
	fmt.Fprintf(cmd.ErrOrStderr(), "Press Ctrl+C to stop\n")
	return srv.Start(ctx)
}
