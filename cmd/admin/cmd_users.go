package main

import (
	"fmt"
	"strconv"
	"strings"

	"adminconsole/internal/state/users"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// maxLookupPages bounds the scan for a user that is not on the first page.
const maxLookupPages = 100

var (
	listPage int

	addEmail    string
	addPassword string
	addRole     string

	updateEmail    string
	updatePassword string
	updateRole     string
)

// usersCmd groups user management
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users (requires login)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of users",
	RunE:  listUsers,
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	Long: `Creates a user.

Example:
  admin users add --email bob@example.com --password hunter2hunter2 --role User`,
	RunE: addUser,
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a user; omitted flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE:  updateUser,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteUser,
}

func init() {
	usersListCmd.Flags().IntVar(&listPage, "page", 1, "Page number (1-based)")

	usersAddCmd.Flags().StringVar(&addEmail, "email", "", "Email (required)")
	usersAddCmd.Flags().StringVar(&addPassword, "password", "", "Password, at least 8 characters (required)")
	usersAddCmd.Flags().StringVar(&addRole, "role", users.RoleUser, "Role: User or Admin")
	_ = usersAddCmd.MarkFlagRequired("email")
	_ = usersAddCmd.MarkFlagRequired("password")

	usersUpdateCmd.Flags().StringVar(&updateEmail, "email", "", "New email")
	usersUpdateCmd.Flags().StringVar(&updatePassword, "password", "", "New password")
	usersUpdateCmd.Flags().StringVar(&updateRole, "role", "", "New role: User or Admin")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}

func listUsers(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, cliNavigator{})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	out := a.runner.LoadUsers(ctx, listPage)
	st := a.store.State().Users
	if err := report(cmd.ErrOrStderr(), out, st.Meta.Errors); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(st.Entities) == 0 {
		fmt.Fprintf(w, "No users on page %d.\n", st.Page)
		return nil
	}
	fmt.Fprintln(w, renderUsers(st.Entities))
	fmt.Fprintf(w, "Page %d, %d users (page size %d)\n", st.Page, len(st.Entities), st.PageSize)
	return nil
}

func renderUsers(list []users.User) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "EMAIL", "ROLE", "CREATED")
	for _, u := range list {
		created := ""
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		t.Row(strconv.FormatInt(u.ID, 10), u.Identity, u.Role, created)
	}
	return t.Render()
}

func addUser(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, cliNavigator{})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	a.runner.StartCreate()
	a.store.Dispatch(users.UpdateForm{Patch: users.FormPatch{
		Identity: users.Field(strings.TrimSpace(addEmail)),
		Password: users.Field(addPassword),
		Role:     users.Field(addRole),
	}})
	out := a.runner.CreateUser(ctx)
	st := a.store.State().Users
	if err := report(cmd.ErrOrStderr(), out, st.Meta.Errors); err != nil {
		return err
	}

	created := st.Entities[len(st.Entities)-1]
	logger.Info("Created user", zap.Int64("id", created.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s, %s).\n", created.ID, created.Identity, created.Role)
	return nil
}

func updateUser(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cliNavigator{})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	// The form starts from the stored record, so the user has to be loaded.
	for page := 1; page <= maxLookupPages; page++ {
		before := len(a.store.State().Users.Entities)
		out := a.runner.LoadUsers(ctx, page)
		if err := report(cmd.ErrOrStderr(), out, a.store.State().Users.Meta.Errors); err != nil {
			return err
		}
		if _, ok := a.store.State().Users.Find(id); ok || len(a.store.State().Users.Entities) == before {
			break
		}
	}
	if !a.runner.StartEdit(id) {
		return fmt.Errorf("user %d not found", id)
	}

	patch := users.FormPatch{}
	if cmd.Flags().Changed("email") {
		patch.Identity = users.Field(strings.TrimSpace(updateEmail))
	}
	if cmd.Flags().Changed("password") {
		patch.Password = users.Field(updatePassword)
	}
	if cmd.Flags().Changed("role") {
		patch.Role = users.Field(updateRole)
	}
	a.store.Dispatch(users.UpdateForm{Patch: patch})

	out := a.runner.SubmitUser(ctx)
	st := a.store.State().Users
	if err := report(cmd.ErrOrStderr(), out, st.Meta.Errors); err != nil {
		return err
	}

	u, _ := st.Find(id)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated user %d (%s, %s).\n", id, u.Identity, u.Role)
	return nil
}

func deleteUser(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cliNavigator{})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireSession(); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	out := a.runner.DeleteUser(ctx, id)
	if err := report(cmd.ErrOrStderr(), out, a.store.State().Users.Meta.Errors); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d.\n", id)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}
