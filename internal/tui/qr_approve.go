// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/galionhq/nexus/models"
)

const qrContentScheme = "nexus"

// qrApproveModel is the signed-in side of QR sign-in: the user pastes the
// content of a scanned code, the session is claimed, and the initiating
// device is shown for an approve/deny decision.
type qrApproveModel struct {
	input      textinput.Model
	submitting bool

	sessionID string
	claimed   bool
	info      models.QRSessionInfo
	resolving bool
}

func newQRApproveModel() qrApproveModel {
	contentInput := textinput.New()
	contentInput.Placeholder = "nexus://qr-login?session=...&token=..."
	contentInput.CharLimit = 512
	contentInput.Width = 60
	contentInput.Focus()

	return qrApproveModel{input: contentInput}
}

func (m qrApproveModel) View() string {
	var b strings.Builder

	if !m.claimed {
		b.WriteString("Paste the content of the QR code shown on the device\n")
		b.WriteString("you want to sign in:\n\n")
		b.WriteString("Code │ [")
		b.WriteString(m.input.View())
		b.WriteString("]\n")

		if m.submitting {
			b.WriteString("\n[Checking...]")
		} else {
			b.WriteString("\n[Check]")
		}

		return renderPage("APPROVE A DEVICE", strings.TrimRight(b.String(), "\n"), "esc: back │ enter: submit")
	}

	b.WriteString("A device is asking to sign in to your account:\n\n")
	b.WriteString("Device │ ")
	b.WriteString(m.info.DeviceName)
	b.WriteString("\n")
	b.WriteString("IP     │ ")
	b.WriteString(m.info.IP)
	b.WriteString("\n")
	b.WriteString("Since  │ ")
	b.WriteString(formatDate(m.info.CreatedAt) + " " + m.info.CreatedAt.Format("15:04:05"))
	b.WriteString("\n")

	if m.resolving {
		b.WriteString("\n[Sending decision...]")
	}

	return renderPage("APPROVE A DEVICE", strings.TrimRight(b.String(), "\n"), "y: approve │ n: deny │ esc: back")
}

// parseQRContent splits a pasted sign-in code into its session identifier
// and scan token.
func parseQRContent(raw string) (sessionID, scanToken string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("not a sign-in code: %w", err)
	}
	if u.Scheme != qrContentScheme || u.Host != "qr-login" {
		return "", "", fmt.Errorf("not a sign-in code")
	}

	q := u.Query()
	sessionID, scanToken = q.Get("session"), q.Get("token")
	if sessionID == "" || scanToken == "" {
		return "", "", fmt.Errorf("sign-in code is missing its session or token")
	}

	return sessionID, scanToken, nil
}
