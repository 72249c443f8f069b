package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the normal-mode bindings shown in the help bar.
// Dispatch itself lives in input/modes.
type KeyMap struct {
	Search     key.Binding
	Files      key.Binding
	Advanced   key.Binding
	Repos      key.Binding
	IgnoreCase key.Binding
	Filter     key.Binding
	Open       key.Binding
	More       key.Binding
	Delete     key.Binding
	Browse     key.Binding
	Share      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var Keys = KeyMap{
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Files:      key.NewBinding(key.WithKeys("f", "x"), key.WithHelp("f/x", "paths")),
	Advanced:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "advanced")),
	Repos:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repos")),
	IgnoreCase: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "ignore case")),
	Filter:     key.NewBinding(key.WithKeys("F", "X", "c"), key.WithHelp("F/X/c", "filter")),
	Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
	More:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load all")),
	Delete:     key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d/D", "remove")),
	Browse:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
	Share:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp is the single-line help bar
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Files, k.Repos, k.IgnoreCase, k.Filter, k.Open, k.More, k.Delete, k.Browse, k.Help, k.Quit}
}
