// Package panelserver wires the conversation panel and its RPC transport
// into a runnable daemon.
package panelserver

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"craftlink/go-backend/internal/adapters/rpc"
	"craftlink/go-backend/internal/app"
	"craftlink/go-backend/internal/config"
	"craftlink/go-backend/internal/platform/privacylog"
	"craftlink/go-backend/pkg/models"
)

type Options struct {
	RPCAddr    string
	ConfigPath string
	Role       string
	UserID     string
	UserName   string
}

// demoIdentity stands in for the platform's session lookup. The panel only
// needs the signed-in account; an empty user ID means nobody is signed in.
type demoIdentity struct {
	account models.Account
}

func (d demoIdentity) CurrentUser() (models.Account, bool) {
	if d.account.ID == "" {
		return models.Account{}, false
	}
	return d.account, true
}

type demoRoles struct {
	role models.Role
}

func (d demoRoles) ViewerRole(string) (models.Role, error) {
	return d.role, nil
}

// loggingNavigator records where the surrounding application would send the
// user; the daemon has no browser to redirect.
type loggingNavigator struct {
	log *slog.Logger
}

func (n loggingNavigator) RedirectToLogin() {
	n.log.Warn("redirect to login requested")
}

func (n loggingNavigator) RedirectHome() {
	n.log.Info("redirect home requested")
}

// NewRPCServer builds the panel daemon: config, sanitized logging,
// Prometheus registry, the panel itself and its JSON-RPC server.
func NewRPCServer(opts Options) (*rpc.Server, error) {
	cfg := config.LoadFromPath(opts.ConfigPath)
	if opts.RPCAddr != "" {
		cfg.RPCAddr = opts.RPCAddr
	}

	log := slog.New(privacylog.WrapHandler(slog.NewJSONHandler(os.Stdout, nil)))

	role, err := models.ParseRole(opts.Role)
	if err != nil {
		return nil, err
	}
	if opts.UserID == "" {
		opts.UserID = "user_demo"
	}
	if opts.UserName == "" {
		opts.UserName = "Demo User"
	}

	registry := prometheus.NewRegistry()
	panel, err := app.NewPanel(app.PanelOptions{
		Config:    cfg,
		Logger:    log,
		Identity:  demoIdentity{account: models.Account{ID: opts.UserID, DisplayName: opts.UserName}},
		Roles:     demoRoles{role: role},
		Navigator: loggingNavigator{log: log},
		Counters:  app.NewPanelCounters(registry),
	})
	if err != nil {
		return nil, err
	}
	return rpc.NewServer(cfg, panel, log, registry), nil
}

// Run serves until ctx is cancelled, then drains the listener.
func Run(ctx context.Context, srv *rpc.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}
