package dispatch

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/mikey/cold-outreach/internal/core"
)

// GomailTransport delivers messages over SMTP with TLS and static
// credentials. Each message carries a plain text part plus a simple
// HTML alternative produced by converting line breaks.
type GomailTransport struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewGomailTransport creates a transport for the configured relay.
// Port 465 uses implicit TLS; other ports negotiate STARTTLS.
func NewGomailTransport(host string, port int, username, password, fromName string) *GomailTransport {
	d := gomail.NewDialer(host, port, username, password)
	if port == 465 {
		d.SSL = true
	}
	return &GomailTransport{
		dialer:   d,
		from:     username,
		fromName: fromName,
	}
}

// Deliver composes and sends one multipart message
func (t *GomailTransport) Deliver(ctx context.Context, msg core.OutboundEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	if t.fromName != "" {
		m.SetAddressHeader("From", t.from, t.fromName)
	} else {
		m.SetHeader("From", t.from)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	m.AddAlternative("text/html", renderHTML(msg.Body))

	if err := t.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send to %s: %w", msg.To, err)
	}
	return nil
}

// renderHTML produces the simple HTML alternative of a plain text body
func renderHTML(body string) string {
	escaped := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(body)
	return "<html><body><p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p></body></html>"
}
