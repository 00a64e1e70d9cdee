package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Prev    key.Binding
	Next    key.Binding
	Reload  key.Binding
	Logout  key.Binding
	Help    key.Binding
	Back    key.Binding
	Submit  key.Binding
	NextIn  key.Binding
	PrevIn  key.Binding
	Role    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new user")),
	Edit:    key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	Prev:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
	Next:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
	Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	NextIn:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevIn:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	Role:    key.NewBinding(key.WithKeys("left", "right", " "), key.WithHelp("←/→", "role")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// helpKeys adapts a binding list to help.KeyMap.
type helpKeys []key.Binding

func (h helpKeys) ShortHelp() []key.Binding  { return h }
func (h helpKeys) FullHelp() [][]key.Binding { return [][]key.Binding{h} }

var (
	loginHelp = helpKeys{keys.NextIn, keys.Submit, keys.Quit}
	usersHelp = helpKeys{keys.New, keys.Edit, keys.Delete, keys.Prev, keys.Next, keys.Reload, keys.Logout, keys.Help, keys.Quit}
	editHelp  = helpKeys{keys.NextIn, keys.Role, keys.Submit, keys.Back}
	pageHelp  = helpKeys{keys.Back}
)
