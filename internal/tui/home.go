// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/galionhq/nexus/models"
)

// homeModel is the signed-in landing screen: profile, second-factor state
// and the current subscription, with hotkeys into every other screen.
type homeModel struct {
	spinner spinner.Model
	loading bool

	me     models.MeResponse
	twoFA  models.TwoFAStatus
	status string
}

func newHomeModel() homeModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return homeModel{spinner: sp, loading: true}
}

func (m homeModel) View() string {
	hotKeys := "p: plans │ f: 2fa │ a: approve device │ t: copy token │ c: cancel sub │ r: resume sub │ l: log out"

	if m.loading {
		return renderPage("ACCOUNT", m.spinner.View()+" Loading your account...", hotKeys)
	}

	var b strings.Builder

	user := m.me.User
	b.WriteString("Email  │ ")
	b.WriteString(user.Email)
	if user.EmailVerified {
		b.WriteString("  (verified)")
	} else {
		b.WriteString("  (not verified)")
	}
	b.WriteString("\n")
	b.WriteString("Name   │ ")
	b.WriteString(user.Name)
	b.WriteString("\n")
	b.WriteString("Role   │ ")
	b.WriteString(user.Role)
	b.WriteString("\n")
	b.WriteString("2FA    │ ")
	if m.twoFA.Enabled {
		b.WriteString(fmt.Sprintf("on  (%d backup codes left)", m.twoFA.BackupCodesRemaining))
	} else {
		b.WriteString("off — press f to set it up")
	}
	b.WriteString("\n\n")

	if sub := m.me.Subscription; sub != nil {
		b.WriteString("Plan   │ ")
		b.WriteString(fmt.Sprintf("%s (%s)", sub.Plan.Name, sub.Plan.Code))
		b.WriteString("\n")
		b.WriteString("Status │ ")
		b.WriteString(sub.Status)
		b.WriteString("\n")
		b.WriteString("Price  │ ")
		b.WriteString(formatPrice(sub.Plan))
		b.WriteString("\n")
		b.WriteString("Period │ until ")
		b.WriteString(formatDate(sub.CurrentPeriodEnd))
		if sub.CancelAtPeriodEnd {
			b.WriteString("  (lapses — press r to resume)")
		} else {
			b.WriteString("  (renews)")
		}
	} else {
		b.WriteString("No subscription — press p to browse plans.")
	}

	if m.status != "" {
		b.WriteString("\n\n")
		b.WriteString("OK: " + m.status)
	}

	return renderPage("ACCOUNT", b.String(), hotKeys)
}
