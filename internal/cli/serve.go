package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/numlab/internal/infra/httpapi"
	"github.com/aalvaropc/numlab/internal/infra/localrunner"
	"github.com/aalvaropc/numlab/internal/infra/logger"
)

func serveCmd() *cobra.Command {
	var workspace string
	var addr string
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solvers over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws := optionalWorkspace(workspace)
			defer startLogging(cmd, ws.root, true)()
			log := logger.L()

			if !cmd.Flags().Changed("addr") {
				addr = ws.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = ws.cfg.Server.Timeout
			}

			api := httpapi.New(localrunner.New(),
				httpapi.WithDefaults(ws.cfg.Defaults.Settings),
				httpapi.WithTimeout(timeout),
				httpapi.WithLogger(log),
			)
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("server.start", "addr", addr, "timeout", timeout.String())
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve %s: %w", addr, err)
			case <-ctx.Done():
			}

			log.Info("server.stop", "addr", addr)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout+time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; supplies server and solver defaults)")
	c.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr in numlab.yaml)")
	c.Flags().DurationVar(&timeout, "timeout", 0, "Per-request solve timeout (defaults to server.timeout in numlab.yaml)")
	return c
}
