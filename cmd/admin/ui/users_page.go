package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"adminconsole/internal/state/users"
	"adminconsole/internal/validation"
	"adminconsole/internal/workflow"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const timeLayout = "2006-01-02 15:04"

type usersPage struct {
	styles  Styles
	table   table.Model
	pending *int64 // delete awaiting confirmation
}

func newUsersPage(s Styles) usersPage {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Email", Width: 34},
			{Title: "Role", Width: 8},
			{Title: "Created", Width: 16},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.Theme.Border).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Background(s.Theme.Accent)
	t.SetStyles(ts)
	return usersPage{styles: s, table: t}
}

func (p *usersPage) setSize(w, h int) {
	// header, title, status, footer
	if rows := h - 10; rows > 3 {
		p.table.SetHeight(rows)
	}
}

// sync rebuilds the rows from the loaded records.
func (p *usersPage) sync(st users.State) {
	rows := make([]table.Row, 0, len(st.Entities))
	for _, u := range st.Entities {
		created := ""
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.Local().Format(timeLayout)
		}
		rows = append(rows, table.Row{strconv.FormatInt(u.ID, 10), u.Identity, u.Role, created})
	}
	p.table.SetRows(rows)
	if c := p.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		p.table.SetCursor(len(rows) - 1)
	}
}

func (p usersPage) selected() (int64, bool) {
	row := p.table.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	return id, err == nil
}

func (m *Model) updateUsers(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.users.table, cmd = m.users.table.Update(msg)
		return cmd
	}

	st := m.store.State()
	if m.users.pending != nil {
		id := *m.users.pending
		m.users.pending = nil
		if !key.Matches(k, keys.Confirm) {
			m.status = "Delete cancelled."
			return nil
		}
		return m.run("delete", func(ctx context.Context) workflow.Outcome {
			return m.runner.DeleteUser(ctx, id)
		})
	}

	m.status = ""
	switch {
	case key.Matches(k, keys.New):
		m.runner.StartCreate()
		m.router.Push(EditPath(st.Session.ID))
	case key.Matches(k, keys.Edit):
		if id, ok := m.users.selected(); ok && m.runner.StartEdit(id) {
			m.router.Push(EditPath(st.Session.ID))
		}
	case key.Matches(k, keys.Delete):
		if id, ok := m.users.selected(); ok {
			m.users.pending = &id
		}
	case key.Matches(k, keys.Prev):
		if st.Users.Page > 1 && !st.Users.Meta.Loading {
			return m.loadUsers(st.Users.Page - 1)
		}
	case key.Matches(k, keys.Next):
		if !st.Users.Meta.Loading {
			return m.loadUsers(st.Users.Page + 1)
		}
	case key.Matches(k, keys.Reload):
		if !st.Users.Meta.Loading {
			return m.loadUsers(st.Users.Page)
		}
	case key.Matches(k, keys.Logout):
		m.runner.Logout()
	case key.Matches(k, keys.Help):
		m.router.Push(HelpPath)
	default:
		var cmd tea.Cmd
		m.users.table, cmd = m.users.table.Update(msg)
		return cmd
	}
	return nil
}

func (p usersPage) view(st users.State, spin string) string {
	s := p.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Users"))
	b.WriteString("\n")
	if general := s.RenderErrors(st.Meta.Errors[validation.GeneralKey]); general != "" {
		b.WriteString(general + "\n\n")
	}

	if len(st.Entities) == 0 && !st.Meta.Loading {
		b.WriteString(s.Muted.Render("No users loaded. Press r to reload."))
	} else {
		b.WriteString(p.table.View())
	}
	b.WriteString("\n")

	info := fmt.Sprintf("Page %d · %d loaded · %d per page", st.Page, len(st.Entities), st.PageSize)
	if st.Meta.Loading {
		info = spin + " Loading… " + info
	}
	b.WriteString(s.Subtitle.Render(info))

	if p.pending != nil {
		b.WriteString("\n" + s.Warning.Render(fmt.Sprintf("Delete user %d? Press y to confirm.", *p.pending)))
	}
	return b.String()
}
