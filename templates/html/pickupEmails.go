package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderPickupReminderEmail lists tomorrow's pickup addresses for a driver
func RenderPickupReminderEmail(addresses []string) string {
	var b strings.Builder
	if len(addresses) == 1 {
		b.WriteString("<p>You have a pickup scheduled for tomorrow:</p>")
	} else {
		b.WriteString(fmt.Sprintf("<p>You have %d pickups scheduled for tomorrow:</p>", len(addresses)))
	}
	b.WriteString("<ul>")
	for _, a := range addresses {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(a))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return wrap("Pickup Reminder", b.String())
}

// RenderAdminFallbackEmail summarises an email no provider would accept so an admin
// can relay it by hand. The original body is shown escaped, not rendered.
func RenderAdminFallbackEmail(to, subject, originalHTML string) string {
	content := fmt.Sprintf(`<p>Every outbound email provider rejected the message below. Please forward it manually.</p>
      <p><strong>Intended recipient:</strong> %s<br><strong>Subject:</strong> %s</p>
      <pre style="white-space: pre-wrap; background: #f4f6f5; padding: 12px;">%s</pre>`,
		html.EscapeString(to), html.EscapeString(subject), html.EscapeString(originalHTML))
	return wrap("Undelivered email needs manual relay", content)
}
