package ui

import (
	"context"
	"strings"

	"adminconsole/internal/api"
	"adminconsole/internal/state/login"
	"adminconsole/internal/validation"
	"adminconsole/internal/workflow"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginPage struct {
	styles   Styles
	email    textinput.Model
	password textinput.Model
	focus    int
}

func newLoginPage(s Styles) loginPage {
	email := textinput.New()
	email.Placeholder = "admin@example.com"
	email.CharLimit = 254
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 40

	return loginPage{styles: s, email: email, password: password}
}

// reset fills the inputs from the form and focuses the email field.
func (p *loginPage) reset(f login.State) tea.Cmd {
	p.email.SetValue(f.Form.Email)
	p.password.SetValue(f.Form.Password)
	p.focus = 0
	p.password.Blur()
	return p.email.Focus()
}

func (p *loginPage) toggleFocus() tea.Cmd {
	p.focus = 1 - p.focus
	if p.focus == 0 {
		p.password.Blur()
		return p.email.Focus()
	}
	p.email.Blur()
	return p.password.Focus()
}

func (p *loginPage) credentials() api.Credentials {
	return api.Credentials{
		Email:    strings.TrimSpace(p.email.Value()),
		Password: p.password.Value(),
	}
}

func (m *Model) updateLogin(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.NextIn), key.Matches(k, keys.PrevIn):
			return m.login.toggleFocus()
		case key.Matches(k, keys.Submit):
			if m.store.State().Login.Meta.Loading {
				return nil
			}
			creds := m.login.credentials()
			m.store.Dispatch(login.UpdateForm{Email: &creds.Email, Password: &creds.Password})
			return m.run("login", func(ctx context.Context) workflow.Outcome {
				return m.runner.Login(ctx, creds)
			})
		}
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.email, cmd = m.login.email.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return cmd
}

func (p loginPage) view(st login.State, spin string) string {
	s := p.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Sign in"))
	b.WriteString("\n")
	if general := s.RenderErrors(st.Meta.Errors[validation.GeneralKey]); general != "" {
		b.WriteString(general + "\n\n")
	}

	b.WriteString(field(s, "Email", p.email.View(), p.focus == 0, st.Meta.Errors["email"]))
	b.WriteString(field(s, "Password", p.password.View(), p.focus == 1, st.Meta.Errors["password"]))

	if st.Meta.Loading {
		b.WriteString("\n" + spin + " Signing in…")
	}
	return b.String()
}

// field renders a labelled input with its errors.
func field(s Styles, label, input string, focused bool, errs []string) string {
	l := s.Label.Render(label)
	if focused {
		l = s.Label.Inherit(s.Focused).Render(label)
	}
	out := l + " " + input + "\n"
	if e := s.RenderErrors(errs); e != "" {
		out += indent(e, 11) + "\n"
	}
	return out
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
