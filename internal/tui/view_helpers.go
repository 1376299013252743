package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/galionhq/nexus/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

func renderPage(title, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		lines := strings.Split(data, "\n")
		for _, line := range lines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  -\n")
	}

	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(hotKeys) != "" {
		b.WriteString("  ")
		b.WriteString(helpStyle.Render(hotKeys))
		b.WriteString("\n")
	}
	b.WriteString("  ")
	b.WriteString(helpStyle.Render("ctrl+c: quit"))

	return b.String()
}

func fitText(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	if max <= 3 {
		return v[:max]
	}
	return v[:max-3] + "..."
}

// formatPrice renders cents as a decimal amount with its currency, e.g.
// "9.90 USD/month".
func formatPrice(p models.Plan) string {
	return fmt.Sprintf("%d.%02d %s/%s", p.PriceCents/100, p.PriceCents%100, p.Currency, p.Interval)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// qrAsciiArt renders content as a terminal QR code. Falls back to an empty
// string when the content does not fit a QR code; callers still show the
// textual form next to it.
func qrAsciiArt(content string) string {
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return ""
	}
	return strings.TrimRight(code.ToSmallString(false), "\n")
}
