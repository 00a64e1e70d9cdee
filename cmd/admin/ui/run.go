package ui

import (
	"context"
	"fmt"

	"adminconsole/internal/logging"
	"adminconsole/internal/sessionfile"
	"adminconsole/internal/state/session"
	"adminconsole/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the console and blocks until the user quits. When watch is
// set, logins and logouts made by other processes through file are applied
// to the running console.
func Run(ctx context.Context, o Options, file *sessionfile.File, watch bool) error {
	m := NewModel(o)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Dispatch can happen inside Update, so listeners must never block on
	// p.Send. Notifications are coalesced through a one-slot channel.
	notify := make(chan struct{}, 1)
	done := make(chan struct{})
	unsubscribe := o.Store.Subscribe(func(store.State) {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-notify:
				p.Send(storeChangedMsg{})
			}
		}
	}()
	defer close(done)

	if watch && file != nil {
		stop := watchSession(ctx, file, func(msg tea.Msg) { p.Send(msg) })
		defer stop()
	}

	logging.UIDebug("starting console on page %s", m.Page())
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.cancel()
	}
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

// watchSession forwards external session changes to send. A watcher that
// cannot start is logged and skipped; the returned stop func is never nil.
func watchSession(ctx context.Context, file *sessionfile.File, send func(tea.Msg)) func() {
	w, err := sessionfile.NewWatcher(file, func(s session.State) {
		send(sessionChangedMsg{session: s})
	})
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("session watcher disabled: %v", err)
		return func() {}
	}
	if err := w.Start(ctx); err != nil {
		logging.Get(logging.CategoryUI).Warn("session watcher disabled: %v", err)
		w.Stop()
		return func() {}
	}
	return w.Stop
}
