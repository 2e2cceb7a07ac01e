package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up   key.Binding
	Down key.Binding
	Open key.Binding
	Back key.Binding

	Search     key.Binding
	SortNewest key.Binding
	SortOldest key.Binding
	ResetView  key.Binding
	Refresh    key.Binding

	New    key.Binding
	Edit   key.Binding
	Delete key.Binding

	Confirm   key.Binding
	Decline   key.Binding
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding

	Quit key.Binding
}

var DefaultKeyMap = KeyMap{
	Up:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Open: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	SortNewest: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "newest")),
	SortOldest: key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "oldest")),
	ResetView:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset view")),
	Refresh:    key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),

	New:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new post")),
	Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),

	Confirm:   key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	Decline:   key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("S-tab", "previous field")),
	Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "save")),

	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// listHelp is the key help shown under the card list.
type listHelp struct{ keys KeyMap }

func (h listHelp) ShortHelp() []key.Binding {
	k := h.keys
	return []key.Binding{k.Up, k.Down, k.Open, k.Search, k.SortNewest, k.SortOldest, k.ResetView, k.New, k.Edit, k.Delete, k.Refresh, k.Quit}
}

func (h listHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

type formHelp struct{ keys KeyMap }

func (h formHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.keys.NextField, h.keys.PrevField, h.keys.Submit, h.keys.Back}
}

func (h formHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
