package ui

import (
	_ "embed"

	"adminconsole/internal/logging"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

//go:embed help.md
var helpMarkdown string

type helpPage struct {
	styles   Styles
	viewport viewport.Model
	width    int
}

func newHelpPage(s Styles) helpPage {
	return helpPage{styles: s, viewport: viewport.New(80, 16), width: 80}
}

func (p *helpPage) setSize(w, h int) {
	p.width = w
	p.viewport.Width = w
	p.viewport.Height = h - 6 // Reserve space for header/footer
}

// render converts the help markdown for the current width.
func (p *helpPage) render(width int) {
	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(p.styles.Theme.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("help renderer: %v", err)
		p.viewport.SetContent(helpMarkdown)
		return
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("help render: %v", err)
		out = helpMarkdown
	}
	p.viewport.SetContent(out)
	p.viewport.GotoTop()
}

func (m *Model) updateHelp(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && (key.Matches(k, keys.Back) || key.Matches(k, keys.Help)) {
		m.router.Back()
		return nil
	}
	var cmd tea.Cmd
	m.docs.viewport, cmd = m.docs.viewport.Update(msg)
	return cmd
}

func (p helpPage) view() string {
	return p.viewport.View()
}
