package ui

import (
	"context"
	"fmt"
	"strings"

	"adminconsole/internal/state/users"
	"adminconsole/internal/validation"
	"adminconsole/internal/workflow"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	focusIdentity = iota
	focusPassword
	focusRole
	focusCount
)

type editPage struct {
	styles   Styles
	identity textinput.Model
	password textinput.Model
	focus    int
}

func newEditPage(s Styles) editPage {
	identity := textinput.New()
	identity.Placeholder = "user@example.com"
	identity.CharLimit = 254
	identity.Width = 40

	password := textinput.New()
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 40

	return editPage{styles: s, identity: identity, password: password}
}

// load fills the inputs from the form.
func (p *editPage) load(st users.State) tea.Cmd {
	p.identity.SetValue(st.Form.Identity)
	p.password.SetValue(st.Form.Password)
	if st.Editing() {
		p.password.Placeholder = "leave empty to keep"
	} else {
		p.password.Placeholder = "at least 8 characters"
	}
	return p.setFocus(focusIdentity)
}

func (p *editPage) setFocus(f int) tea.Cmd {
	p.focus = (f + focusCount) % focusCount
	p.identity.Blur()
	p.password.Blur()
	switch p.focus {
	case focusIdentity:
		return p.identity.Focus()
	case focusPassword:
		return p.password.Focus()
	}
	return nil
}

// nextRole cycles through the valid roles starting from current.
func nextRole(current string, step int) string {
	idx := 0
	for i, r := range users.Roles {
		if r == current {
			idx = i
		}
	}
	n := len(users.Roles)
	return users.Roles[((idx+step)%n+n)%n]
}

func (m *Model) updateEdit(msg tea.Msg) tea.Cmd {
	st := m.store.State()
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Back):
			m.runner.StartCreate()
			m.router.Push(workflow.ManagePath(st.Session.ID))
			return nil
		case key.Matches(k, keys.NextIn):
			return m.edit.setFocus(m.edit.focus + 1)
		case key.Matches(k, keys.PrevIn):
			return m.edit.setFocus(m.edit.focus - 1)
		case key.Matches(k, keys.Submit):
			if st.Users.Meta.Loading {
				return nil
			}
			m.store.Dispatch(users.UpdateForm{Patch: users.FormPatch{
				Identity: users.Field(strings.TrimSpace(m.edit.identity.Value())),
				Password: users.Field(m.edit.password.Value()),
			}})
			name := "create"
			if st.Users.Editing() {
				name = "update"
			}
			return m.run(name, m.runner.SubmitUser)
		case m.edit.focus == focusRole && key.Matches(k, keys.Role):
			step := 1
			if k.String() == "left" {
				step = -1
			}
			m.store.Dispatch(users.UpdateForm{Patch: users.FormPatch{Role: users.Field(nextRole(st.Users.Form.Role, step))}})
			return nil
		}
	}

	var cmd tea.Cmd
	switch m.edit.focus {
	case focusIdentity:
		m.edit.identity, cmd = m.edit.identity.Update(msg)
		if v := m.edit.identity.Value(); v != st.Users.Form.Identity {
			m.store.Dispatch(users.UpdateForm{Patch: users.FormPatch{Identity: users.Field(v)}})
		}
	case focusPassword:
		m.edit.password, cmd = m.edit.password.Update(msg)
		if v := m.edit.password.Value(); v != st.Users.Form.Password {
			m.store.Dispatch(users.UpdateForm{Patch: users.FormPatch{Password: users.Field(v)}})
		}
	}
	return cmd
}

func (p editPage) view(st users.State, spin string) string {
	s := p.styles
	var b strings.Builder

	title := "New user"
	if st.Editing() {
		title = fmt.Sprintf("Edit user #%d", *st.EditingFocus)
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")
	if general := s.RenderErrors(st.Meta.Errors[validation.GeneralKey]); general != "" {
		b.WriteString(general + "\n\n")
	}

	b.WriteString(field(s, "Email", p.identity.View(), p.focus == focusIdentity, st.Meta.Errors["identity"]))
	b.WriteString(field(s, "Password", p.password.View(), p.focus == focusPassword, st.Meta.Errors["password"]))

	roles := make([]string, len(users.Roles))
	for i, r := range users.Roles {
		if r == st.Form.Role {
			roles[i] = s.Focused.Render("[" + r + "]")
		} else {
			roles[i] = s.Muted.Render(" " + r + " ")
		}
	}
	b.WriteString(field(s, "Role", strings.Join(roles, " "), p.focus == focusRole, st.Meta.Errors["role"]))

	if st.Meta.Loading {
		b.WriteString("\n" + spin + " Saving…")
	}
	return s.Form.Render(b.String())
}
