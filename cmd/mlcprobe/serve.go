package main

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

	"mlcprobe/internal/generator"
	"mlcprobe/internal/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr          string
		fixtureStatus int
		fixtureBody   string
		corsOrigins   string
		cors          bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local mock completions server",
		Example: "  mlcprobe serve\n" +
			"  mlcprobe serve --fixture-status 500 --fixture-body '\"server error\"'",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("cors") {
				cfg.CORSEnabled = cors
			}
			if flags.Changed("cors-origins") {
				cfg.CORSOrigins = splitCSV(corsOrigins)
			}

			httpapi.SetLogger(a.log)
			httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
			httpapi.SetCompletionTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

			var h http.Handler
			if flags.Changed("fixture-status") || flags.Changed("fixture-body") {
				h = httpapi.NewFixtureMux(httpapi.Fixture{Status: fixtureStatus, Body: fixtureBody})
				a.log.Info().Int("status", fixtureStatus).Msg("serving fixture")
			} else {
				h = httpapi.NewMux(generator.New(a.log))
			}

			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.Addr, err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, ln, h, a.log)
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "HTTP listen address (defaults MLCPROBE_ADDR or 127.0.0.1:8000)")
	f.IntVar(&fixtureStatus, "fixture-status", 200, "Answer every completion with this status")
	f.StringVar(&fixtureBody, "fixture-body", "", "Answer every completion with this raw body")
	f.BoolVar(&cors, "cors", false, "Enable CORS")
	f.StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins")
	return cmd
}

// serve runs the server on ln until ctx is done, then shuts it down
// gracefully.
func serve(ctx context.Context, ln net.Listener, h http.Handler, log zerolog.Logger) error {
	httpapi.SetBaseContext(ctx)
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("mlcprobe mock server listening")
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	<-errc
	log.Info().Msg("mlcprobe mock server stopped")
	return nil
}
