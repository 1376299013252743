// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/galionhq/nexus/models"
)

type twoFASetupStage int

const (
	twoFAStageLoading twoFASetupStage = iota
	twoFAStageConfirm
	twoFAStageCodes
)

// twoFASetupModel walks 2FA enrollment: fetch a secret, show it as a QR
// code, confirm with the first TOTP code, then hand over the backup codes.
type twoFASetupModel struct {
	spinner spinner.Model
	stage   twoFASetupStage

	setup models.TwoFASetup
	qrArt string

	input      textinput.Model
	submitting bool

	codes  []string
	status string
}

func newTwoFASetupModel() twoFASetupModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	codeInput := textinput.New()
	codeInput.Placeholder = "123456"
	codeInput.CharLimit = 6
	codeInput.Width = 12
	codeInput.Focus()

	return twoFASetupModel{spinner: sp, stage: twoFAStageLoading, input: codeInput}
}

func (m twoFASetupModel) View() string {
	switch m.stage {
	case twoFAStageLoading:
		return renderPage("TWO-FACTOR SETUP", m.spinner.View()+" Generating a secret...", "esc: back")

	case twoFAStageCodes:
		var b strings.Builder
		b.WriteString("Two-factor authentication is ON.\n\n")
		b.WriteString("Backup codes (each works once):\n\n")
		for _, code := range m.codes {
			b.WriteString("  ")
			b.WriteString(code)
			b.WriteString("\n")
		}
		b.WriteString("\nStore them somewhere safe; they are shown only now.")
		if m.status != "" {
			b.WriteString("\n\nOK: " + m.status)
		}
		return renderPage("TWO-FACTOR SETUP", b.String(), "t: copy codes │ enter: done")

	default:
		var b strings.Builder
		if m.qrArt != "" {
			b.WriteString(m.qrArt)
			b.WriteString("\n\n")
		}
		b.WriteString("Secret │ ")
		b.WriteString(m.setup.Secret)
		b.WriteString("\n\n")
		b.WriteString("Scan the code with your authenticator app (or enter the\n")
		b.WriteString("secret manually), then type the 6-digit code it shows:\n\n")
		b.WriteString("Code   │ [")
		b.WriteString(m.input.View())
		b.WriteString("]\n")
		if m.submitting {
			b.WriteString("\n[Activating...]")
		} else {
			b.WriteString("\n[Activate]")
		}
		if m.status != "" {
			b.WriteString("\nOK: " + m.status)
		}
		return renderPage("TWO-FACTOR SETUP", strings.TrimRight(b.String(), "\n"), "t: copy secret │ esc: back │ enter: activate")
	}
}
