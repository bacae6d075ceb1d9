package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Fooracles/SystemApp-sub000/internal/config"
	"github.com/Fooracles/SystemApp-sub000/internal/debug"
	"github.com/Fooracles/SystemApp-sub000/internal/ui"
	"github.com/Fooracles/SystemApp-sub000/internal/ui/api"
)

var (
	serveAllowRemote bool
	serveNoCompress  bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "setup",
	Short:   "Run the JSON API server",
	Long: `Serve the task and ticket endpoints over HTTP.

The server binds to a loopback address by default. Binding elsewhere requires
--allow-remote and an auth token (auth-token in config or $SYSAPP_AUTH_TOKEN).
Every /api request must carry the X-Actor-ID header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(rootCtx, cmd)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Address to bind (host:port)")
	serveCmd.Flags().String("auth-token", "", "Bearer token required on every request")
	serveCmd.Flags().BoolVar(&serveAllowRemote, "allow-remote", false, "Permit binding to non-loopback addresses (requires auth token)")
	serveCmd.Flags().BoolVar(&serveNoCompress, "no-compress", false, "Disable gzip response compression")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	if f := cmd.Flags().Lookup("listen"); f != nil && f.Changed {
		config.Set(config.KeyListen, f.Value.String())
	}
	if f := cmd.Flags().Lookup("auth-token"); f != nil && f.Changed {
		config.Set(config.KeyAuthToken, f.Value.String())
	}
	listen := config.GetString(config.KeyListen)
	token := strings.TrimSpace(config.GetString(config.KeyAuthToken))

	requireAuth, err := ui.DetermineAccess(listen, serveAllowRemote)
	if err != nil {
		return err
	}
	if requireAuth && token == "" {
		return errors.New("remote binding requires auth-token to be configured")
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	handler, err := ui.NewHandler(ui.HandlerConfig{
		RequireAuth: requireAuth,
		AuthToken:   token,
		Compress:    !serveNoCompress,
		Register: func(mux *http.ServeMux) {
			api.Register(mux, a.svc, logger)
		},
	})
	if err != nil {
		return err
	}

	config.Watch(func(e fsnotify.Event) {
		debug.SetLevel(config.GetString(config.KeyLogLevel))
		logger.Info("config reloaded", "file", e.Name, "log_level", config.GetString(config.KeyLogLevel))
	})

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving", "addr", ln.Addr().String(), "auth", requireAuth || token != "")
		debug.Notef("Listening on http://%s\n", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
