package main

import (
	"adminconsole/cmd/admin/ui"
	"adminconsole/internal/workflow"

	"github.com/spf13/cobra"
)

// runInteractive starts the console on the users page when a saved session
// exists, otherwise on the login page.
func runInteractive(cmd *cobra.Command, args []string) error {
	router := ui.NewRouter(workflow.LoginPath)
	a, err := newApp(cfg, router)
	if err != nil {
		return err
	}
	defer a.Close()

	if sess := a.store.State().Session; sess.Authenticated() {
		router.Push(workflow.ManagePath(sess.ID))
	}

	ctx, cancel := commandContext()
	defer cancel()

	return ui.Run(ctx, ui.Options{
		Store:  a.store,
		Runner: a.runner,
		Router: router,
		Styles: ui.NewStyles(ui.ThemeFor(cfg.UI.Theme)),
	}, a.sessions, cfg.Session.Watch)
}
