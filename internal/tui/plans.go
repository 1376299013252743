// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/galionhq/nexus/models"
)

// plansModel lists the active plans. Signed-in users subscribe (or switch
// plans) with enter; visitors can only browse.
type plansModel struct {
	spinner spinner.Model
	loading bool

	items       []models.Plan
	idx         int
	currentCode string
	submitting  bool
	status      string
}

func newPlansModel() plansModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return plansModel{spinner: sp, loading: true}
}

func (m plansModel) selected() (models.Plan, bool) {
	if m.idx < 0 || m.idx >= len(m.items) {
		return models.Plan{}, false
	}
	return m.items[m.idx], true
}

func (m plansModel) View() string {
	hotKeys := "enter: subscribe │ ↑/↓: move │ esc: back"

	if m.loading {
		return renderPage("PLANS", m.spinner.View()+" Loading plans...", hotKeys)
	}
	if len(m.items) == 0 {
		return renderPage("PLANS", "No plans are available right now.", hotKeys)
	}

	var b strings.Builder
	for i, p := range m.items {
		cursor := "  "
		if i == m.idx {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%s — %s", cursor, p.Name, formatPrice(p))
		if p.TrialDays > 0 {
			line += fmt.Sprintf(", %d-day trial", p.TrialDays)
		}
		if p.Code == m.currentCode {
			line += "  (current)"
		}
		b.WriteString(line)
		b.WriteString("\n")

		if i == m.idx && p.Description != "" {
			b.WriteString("    ")
			b.WriteString(helpStyle.Render(fitText(p.Description, 50)))
			b.WriteString("\n")
		}
	}

	if m.submitting {
		b.WriteString("\n[Subscribing...]")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString("OK: " + m.status)
	}

	return renderPage("PLANS", strings.TrimRight(b.String(), "\n"), hotKeys)
}
