package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	esc       key.Binding
	tab       key.Binding
	backtab   key.Binding
	quit      key.Binding
	forceQuit key.Binding
	logout    key.Binding
	plans     key.Binding
	approve   key.Binding
	twoFA     key.Binding
	cancelSub key.Binding
	resumeSub key.Binding
	copyItem  key.Binding
	refresh   key.Binding
	yes       key.Binding
	no        key.Binding
}

var keys = keyMap{
	up:        key.NewBinding(key.WithKeys("up", "k")),
	down:      key.NewBinding(key.WithKeys("down", "j")),
	enter:     key.NewBinding(key.WithKeys("enter")),
	esc:       key.NewBinding(key.WithKeys("esc")),
	tab:       key.NewBinding(key.WithKeys("tab")),
	backtab:   key.NewBinding(key.WithKeys("shift+tab")),
	quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
	forceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	logout:    key.NewBinding(key.WithKeys("l")),
	plans:     key.NewBinding(key.WithKeys("p")),
	approve:   key.NewBinding(key.WithKeys("a")),
	twoFA:     key.NewBinding(key.WithKeys("f")),
	cancelSub: key.NewBinding(key.WithKeys("c")),
	resumeSub: key.NewBinding(key.WithKeys("r")),
	copyItem:  key.NewBinding(key.WithKeys("t")),
	refresh:   key.NewBinding(key.WithKeys("r")),
	yes:       key.NewBinding(key.WithKeys("y")),
	no:        key.NewBinding(key.WithKeys("n")),
}
