package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"adminconsole/internal/api"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	loginEmail    string
	loginPassword string
)

// loginCmd authenticates and saves the session
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	Long: `Logs in to the API and saves the session for later commands.

The password is taken from --password, then ADMIN_PASSWORD, and is otherwise
prompted for when stdin is a terminal.

Example:
  admin login --email admin@example.com`,
	RunE: runLogin,
}

// logoutCmd forgets the saved session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE:  runLogout,
}

// statusCmd shows the saved session
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the API endpoint and saved session",
	RunE:  showStatus,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (or set ADMIN_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := resolvePassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cliNavigator{})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext()
	defer cancel()

	out := a.runner.Login(ctx, api.Credentials{Email: strings.TrimSpace(loginEmail), Password: password})
	st := a.store.State()
	if err := report(cmd.ErrOrStderr(), out, st.Login.Meta.Errors); err != nil {
		return err
	}

	logger.Info("Logged in", zap.Int64("user_id", st.Session.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (user %d).\n", displayName(st.Session.Email, loginEmail), st.Session.ID)
	return nil
}

func resolvePassword(in io.Reader, prompt io.Writer) (string, error) {
	if loginPassword != "" {
		return loginPassword, nil
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		return v, nil
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	// Piped input: first line is the password.
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, cliNavigator{})
	if err != nil {
		return err
	}
	defer a.Close()

	a.runner.Logout()
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "API:      %s (timeout %s)\n", cfg.API.BaseURL, cfg.GetAPITimeout())
	fmt.Fprintf(w, "Session:  %s\n", cfg.Session.File)

	a, err := newApp(cfg, cliNavigator{})
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.store.State().Session
	if !sess.Authenticated() {
		fmt.Fprintln(w, "Status:   not logged in")
		return nil
	}
	fmt.Fprintf(w, "Status:   logged in as %s (user %d)\n", displayName(sess.Email, ""), sess.ID)
	if sess.Role != "" {
		fmt.Fprintf(w, "Role:     %s\n", sess.Role)
	}
	if !sess.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "Expires:  %s (in %s)\n", sess.ExpiresAt.Local().Format(time.RFC3339),
			time.Until(sess.ExpiresAt).Round(time.Second))
	}
	return nil
}

func displayName(email, fallback string) string {
	if email != "" {
		return email
	}
	if fallback != "" {
		return fallback
	}
	return "unknown"
}
