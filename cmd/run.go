package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/quantiz/internal/api"
	"github.com/abhisek/quantiz/internal/app"
	"github.com/abhisek/quantiz/internal/screen"
	"github.com/abhisek/quantiz/internal/session"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := openDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	trainer := session.NewTrainer(d.catalog, d.mediator, session.WithLogger(d.logger))
	defer trainer.Close()

	opts := app.Options{
		Env: &screen.Env{
			Service:  d.svc,
			Catalog:  d.catalog,
			Mediator: d.mediator,
			Trainer:  trainer,
			Detail:   session.NewDetail(d.catalog, d.mediator, nil),
			Logger:   d.logger,
		},
	}

	opts.Username, opts.LoginReason = d.startUser(cmd.Context())

	d.logger.Info("starting", "api", d.cfg.API.BaseURL, "signed_in", opts.Username != "")
	return app.Run(opts)
}

// startUser checks a restored credential once so the TUI can start on the
// catalog. A rejected credential is dropped and its reason returned for the
// login screen. An unreachable backend keeps the credential and lets the
// catalog screen show the failure.
func (d *deps) startUser(ctx context.Context) (username, reason string) {
	sess := d.client.Session()
	if sess == nil {
		return "", ""
	}
	u, err := d.svc.CurrentUser(ctx)
	switch {
	case err == nil:
		return u.Username, ""
	case api.IsAuth(err):
		if lerr := d.svc.Logout(ctx); lerr != nil {
			d.logger.Warn("could not clear credential", "error", lerr)
		}
		return "", api.Message(err)
	default:
		d.logger.Warn("could not verify credential", "error", err)
		return sess.Subject(), ""
	}
}
