// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// qrLoginModel drives QR sign-in on the device without a session: it shows
// the code for another, signed-in device to scan and polls the session until
// it is approved, denied or expired.
type qrLoginModel struct {
	spinner spinner.Model

	sessionID string
	secret    string
	qrArt     string
	expiresAt time.Time

	loading bool
	polling bool
	claimed bool
	denied  bool
	expired bool
}

func newQRLoginModel() qrLoginModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return qrLoginModel{spinner: s}
}

// reset clears per-session state before a fresh code is requested.
func (m qrLoginModel) reset() qrLoginModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return qrLoginModel{spinner: s, loading: true}
}

func (m qrLoginModel) View() string {
	var b strings.Builder

	switch {
	case m.loading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Requesting a sign-in code...")
	case m.expired:
		b.WriteString("The sign-in code expired.")
	case m.denied:
		b.WriteString("Sign-in was denied on the other device.")
	default:
		b.WriteString("Scan this code from a signed-in device:\n\n")
		b.WriteString(m.qrArt)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("session " + m.sessionID))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View())
		if m.claimed {
			b.WriteString(" Scanned — waiting for approval...")
		} else {
			b.WriteString(" Waiting for the code to be scanned...")
		}
		if !m.expiresAt.IsZero() {
			left := time.Until(m.expiresAt).Round(time.Second)
			if left > 0 {
				b.WriteString("\n")
				b.WriteString(helpStyle.Render("expires in " + left.String()))
			}
		}
	}

	return renderPage("QR SIGN-IN", strings.TrimRight(b.String(), "\n"), "r: new code │ esc: back")
}
