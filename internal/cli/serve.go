package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/api"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 10 * time.Second

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages over HTTP",
		Long: `Serve runs the HTTP API over the configured store. Edits to the same page
are applied one at a time. The server shuts down gracefully on SIGINT or
SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// serve runs the API on ln until ctx is cancelled.
func (c *CLI) serve(ctx context.Context, ln net.Listener) error {
	s, err := c.open(ctx)
	if err != nil {
		ln.Close()
		return err
	}
	defer s.Close()

	opts, err := c.pageOptions()
	if err != nil {
		ln.Close()
		return err
	}
	srv := &http.Server{
		Handler:           api.NewServer(s, api.WithLogger(c.Logger), api.WithPageOptions(opts...)).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Logger.Info("serving", "addr", ln.Addr().String(), "store", c.cfg.Store.Backend)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.Logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
