package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adminconsole/internal/logging"
	"adminconsole/internal/state/session"
	"adminconsole/internal/store"
	"adminconsole/internal/workflow"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// storeChangedMsg is sent after each dispatch so the view re-renders.
type storeChangedMsg struct{}

// sessionChangedMsg carries a session reloaded from disk.
type sessionChangedMsg struct{ session session.State }

// workflowDoneMsg reports a finished workflow.
type workflowDoneMsg struct {
	name    string
	outcome workflow.Outcome
}

// Options wires the model.
type Options struct {
	Store  *store.Store
	Runner *workflow.Runner
	Router *Router
	Styles Styles
	// Now is the clock used for session expiry. Defaults to time.Now.
	Now func() time.Time
}

// Model is the root bubbletea model.
type Model struct {
	store  *store.Store
	runner *workflow.Runner
	router *Router
	styles Styles
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	page    Page
	spinner spinner.Model
	help    help.Model
	login   loginPage
	users   usersPage
	edit    editPage
	docs    helpPage

	width  int
	height int
	status string
}

// NewModel builds the root model. The starting page follows the router.
func NewModel(o Options) Model {
	if o.Now == nil {
		o.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		store:   o.Store,
		runner:  o.Runner,
		router:  o.Router,
		styles:  o.Styles,
		now:     o.Now,
		ctx:     ctx,
		cancel:  cancel,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(o.Styles.Spinner)),
		help:    help.New(),
		login:   newLoginPage(o.Styles),
		users:   newUsersPage(o.Styles),
		edit:    newEditPage(o.Styles),
		docs:    newHelpPage(o.Styles),
		width:   80,
		height:  24,
	}
	m.page = m.router.Page()
	m.enter(m.page)
	return m
}

// Page returns the page being shown.
func (m Model) Page() Page { return m.page }

// Init starts the spinner and, for a restored session, the first page load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.page == PageUsers {
		cmds = append(cmds, m.loadUsers(1))
	}
	return tea.Batch(cmds...)
}

// Update routes messages to the active page.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.users.setSize(msg.Width, msg.Height)
		m.docs.setSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		if m.page == PageHelp {
			m.docs.render(msg.Width)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case storeChangedMsg:
		m.refresh()
		return m, nil

	case sessionChangedMsg:
		m.runner.Restore(msg.session, m.now)
		return m, m.syncRoute()

	case workflowDoneMsg:
		logging.UIDebug("workflow %s finished: %s", msg.name, msg.outcome)
		m.status = ""
		if msg.outcome == workflow.OutcomeOK {
			m.status = doneStatus(msg.name)
		}
		return m, m.syncRoute()
	}

	var cmd tea.Cmd
	switch m.page {
	case PageLogin:
		cmd = m.updateLogin(msg)
	case PageUsers:
		cmd = m.updateUsers(msg)
	case PageEdit:
		cmd = m.updateEdit(msg)
	case PageHelp:
		cmd = m.updateHelp(msg)
	}
	if nav := m.syncRoute(); nav != nil {
		return m, tea.Batch(cmd, nav)
	}
	return m, cmd
}

// syncRoute switches to the router's page, returning the command the new page
// starts with.
func (m *Model) syncRoute() tea.Cmd {
	next := m.router.Page()
	if next == m.page {
		m.refresh()
		return nil
	}
	logging.UIDebug("page %s -> %s (%s)", m.page, next, m.router.Path())
	m.page = next
	return m.enter(next)
}

// enter prepares a page when it becomes visible.
func (m *Model) enter(p Page) tea.Cmd {
	st := m.store.State()
	switch p {
	case PageLogin:
		return m.login.reset(st.Login)
	case PageUsers:
		m.users.sync(st.Users)
		if len(st.Users.Entities) == 0 && !st.Users.Meta.Loading {
			return m.loadUsers(1)
		}
	case PageEdit:
		return m.edit.load(st.Users)
	case PageHelp:
		m.docs.render(m.width)
	}
	return nil
}

// refresh pulls store state into the visible page's widgets.
func (m *Model) refresh() {
	if m.page == PageUsers {
		m.users.sync(m.store.State().Users)
	}
}

// run executes a workflow off the event loop.
func (m Model) run(name string, fn func(ctx context.Context) workflow.Outcome) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return workflowDoneMsg{name: name, outcome: fn(ctx)}
	}
}

func (m Model) loadUsers(page int) tea.Cmd {
	return m.run("load", func(ctx context.Context) workflow.Outcome {
		return m.runner.LoadUsers(ctx, page)
	})
}

func doneStatus(name string) string {
	switch name {
	case "create":
		return "User created."
	case "update":
		return "User updated."
	case "delete":
		return "User deleted."
	default:
		return ""
	}
}

// View renders the active page with the header and footer.
func (m Model) View() string {
	st := m.store.State()

	var body string
	var keys helpKeys
	switch m.page {
	case PageLogin:
		body, keys = m.login.view(st.Login, m.spinner.View()), loginHelp
	case PageUsers:
		body, keys = m.users.view(st.Users, m.spinner.View()), usersHelp
	case PageEdit:
		body, keys = m.edit.view(st.Users, m.spinner.View()), editHelp
	case PageHelp:
		body, keys = m.docs.view(), pageHelp
	}

	var b strings.Builder
	b.WriteString(m.header(st.Session))
	b.WriteString("\n")
	b.WriteString(m.styles.Content.Render(body))
	b.WriteString("\n")
	b.WriteString(m.styles.RenderDivider(m.width))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.styles.Footer.Render(m.styles.Success.Render(m.status)))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Footer.Render(m.help.View(keys)))
	return b.String()
}

func (m Model) header(s session.State) string {
	title := "Admin Console"
	if s.Authenticated() {
		who := s.Email
		if who == "" {
			who = fmt.Sprintf("user %d", s.ID)
		}
		title = fmt.Sprintf("%s · %s", title, who)
		if s.Role != "" {
			title += " " + m.styles.Badge.Render(s.Role)
		}
	}
	return m.styles.Header.Render(title)
}
