package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmichie/pipes/internal/httpapi"
	"github.com/mmichie/pipes/pkg/pipeline"
)

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pipelines over an OpenAI-compatible HTTP API",
	Long: `Start every registered pipeline and serve them over HTTP until interrupted.
Pipelines that fail to start stay registered and answer 503 until restarted.`,
	Args: cobra.NoArgs,
	RunE: runServeCommand,
}

func InitServeCommand(rootCmd *cobra.Command) {
	serveCmd.Flags().String("listen", "", "listen address (default is listen_addr from config, \":9099\")")
	serveCmd.Flags().StringSlice("cors-origin", nil, "allowed CORS origin (repeatable); CORS is off when empty")
	_ = viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("cors_origins", serveCmd.Flags().Lookup("cors-origin"))
	rootCmd.AddCommand(serveCmd)
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	logger := newLogger(os.Stderr)

	reg, err := buildRegistry(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := viper.GetString("listen_addr")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	logger.Info().Str("addr", ln.Addr().String()).Str("provider", selectProvider()).Msg("pipes listening")

	origins := viper.GetStringSlice("cors_origins")
	httpapi.SetCORSOptions(len(origins) > 0, origins)

	return serve(ctx, ln, reg, logger)
}

// serve starts every pipeline, then answers on ln until ctx is done. The
// listener is closed before pipelines are shut down.
func serve(ctx context.Context, ln net.Listener, reg *pipeline.Registry, logger zerolog.Logger) error {
	if err := reg.StartupAll(ctx); err != nil {
		logger.Error().Err(err).Msg("some pipelines failed to start")
	}

	httpapi.SetLogger(logger)
	srv := &http.Server{Handler: httpapi.NewMux(reg)}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		reg.ShutdownAll(context.Background())
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	reg.ShutdownAll(shutdownCtx)
	logger.Info().Msg("pipes stopped")
	return nil
}
