// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

// twoFAPromptModel is the second factor step of sign-in. The ticket comes
// from the password step and is exchanged together with a TOTP or backup
// code.
type twoFAPromptModel struct {
	ticket     string
	input      textinput.Model
	submitting bool
}

func newTwoFAPromptModel() twoFAPromptModel {
	codeInput := textinput.New()
	codeInput.Placeholder = "123456 or backup code"
	codeInput.CharLimit = 32
	codeInput.Width = 24
	codeInput.Focus()

	return twoFAPromptModel{input: codeInput}
}

func (m twoFAPromptModel) View() string {
	var b strings.Builder

	b.WriteString("This account is protected by two-factor authentication.\n")
	b.WriteString("Enter the code from your authenticator app, or one of\n")
	b.WriteString("your backup codes.\n\n")
	b.WriteString("Code │ [")
	b.WriteString(m.input.View())
	b.WriteString("]\n")

	if m.submitting {
		b.WriteString("\n[Verifying...]")
	} else {
		b.WriteString("\n[Verify]")
	}

	return renderPage("TWO-FACTOR CODE", strings.TrimRight(b.String(), "\n"), "esc: back │ enter: submit")
}
