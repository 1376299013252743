package tui

import "strings"

type welcomeModel struct {
	items   []string
	idx     int
	status  string
	version string
}

func newWelcomeModel(version string) welcomeModel {
	return welcomeModel{
		items: []string{
			"Sign in",
			"Sign in with QR code",
			"Create account",
			"Browse plans",
		},
		version: version,
	}
}

func (m welcomeModel) View() string {
	var b strings.Builder

	if m.status != "" {
		b.WriteString("OK: ")
		b.WriteString(m.status)
		b.WriteString("\n\n")
	}

	for i, item := range m.items {
		cursor := "  "
		if i == m.idx {
			cursor = "> "
		}
		b.WriteString(cursor)
		b.WriteString(item)
		b.WriteString("\n")
	}

	if m.version != "" {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("client " + m.version))
	}

	return renderPage("NEXUS", strings.TrimRight(b.String(), "\n"), "enter: select │ ↑/↓: move │ q: quit")
}
