package verify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

// Prober performs a protocol-level recipient probe for one address
type Prober interface {
	// Probe returns the verification status and a human-readable diagnostic
	Probe(ctx context.Context, email string) (core.VerificationStatus, string)
}

// SMTPProber verifies deliverability by resolving MX records and
// issuing a RCPT probe against the domain's mail exchangers. No mail
// is ever sent and no authentication is performed.
type SMTPProber struct {
	resolver   *net.Resolver
	fromEmail  string
	heloDomain string
	timeout    time.Duration
	maxHosts   int
	logger     *zap.Logger
}

// NewSMTPProber creates a new SMTP prober. When heloDomain is empty the
// domain of fromEmail is used for the EHLO handshake.
func NewSMTPProber(fromEmail, heloDomain string, timeout time.Duration, logger *zap.Logger) *SMTPProber {
	if heloDomain == "" {
		if at := strings.LastIndex(fromEmail, "@"); at >= 0 {
			heloDomain = fromEmail[at+1:]
		} else {
			heloDomain = "localhost"
		}
	}
	return &SMTPProber{
		resolver:   net.DefaultResolver,
		fromEmail:  fromEmail,
		heloDomain: heloDomain,
		timeout:    timeout,
		maxHosts:   2,
		logger:     logger,
	}
}

// Probe checks whether the mailbox behind email is accepted by the
// domain's mail exchangers. Connection failures across all attempted
// exchangers yield "unknown", never "invalid": an unreachable exchanger
// is evidence of network or IP blocking, not of a bad mailbox.
func (p *SMTPProber) Probe(ctx context.Context, email string) (core.VerificationStatus, string) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return core.VerificationInvalid, "malformed address"
	}
	domain := email[at+1:]

	hosts, status, msg := p.lookupMX(ctx, domain)
	if status != "" {
		return status, msg
	}

	if len(hosts) > p.maxHosts {
		hosts = hosts[:p.maxHosts]
	}

	lastErr := ""
	for _, host := range hosts {
		status, msg, final := p.probeHost(ctx, host, email)
		if final {
			return status, msg
		}
		lastErr = msg
		p.logger.Debug("Mail exchanger probe inconclusive",
			zap.String("host", host),
			zap.String("email", email),
			zap.String("reason", msg))
	}

	return core.VerificationUnknown, "could not verify via SMTP: " + lastErr
}

// lookupMX resolves the domain's mail exchangers ordered by preference.
// A non-empty status means the lookup itself settled the verification.
func (p *SMTPProber) lookupMX(ctx context.Context, domain string) ([]string, core.VerificationStatus, string) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	records, err := p.resolver.LookupMX(ctx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, core.VerificationInvalid, fmt.Sprintf("no MX records found for domain %s", domain)
		}
		// Resolver timeouts and server failures are transient, not a
		// statement about the mailbox
		return nil, core.VerificationUnknown, fmt.Sprintf("MX lookup failed for domain %s: %v", domain, err)
	}
	if len(records) == 0 {
		return nil, core.VerificationInvalid, fmt.Sprintf("no MX records found for domain %s", domain)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})

	hosts := make([]string, 0, len(records))
	for _, r := range records {
		host := strings.TrimSuffix(r.Host, ".")
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	if len(hosts) == 0 {
		return nil, core.VerificationInvalid, fmt.Sprintf("no MX records found for domain %s", domain)
	}

	return hosts, "", ""
}

// probeHost runs the EHLO/MAIL/RCPT exchange against one exchanger.
// final is false when the next exchanger should be tried.
func (p *SMTPProber) probeHost(ctx context.Context, host, email string) (core.VerificationStatus, string, bool) {
	dialer := &net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, "25"))
	if err != nil {
		return core.VerificationUnknown, fmt.Sprintf("connection failed: %v", err), false
	}
	_ = conn.SetDeadline(time.Now().Add(p.timeout))

	c := smtp.NewClient(conn)
	c.CommandTimeout = p.timeout
	defer c.Close()

	if err := c.Hello(p.heloDomain); err != nil {
		return core.VerificationUnknown, fmt.Sprintf("EHLO rejected: %v", err), false
	}

	if err := c.Mail(p.fromEmail, nil); err != nil {
		return core.VerificationUnknown, fmt.Sprintf("MAIL FROM rejected: %v", err), false
	}

	err = c.Rcpt(email, nil)
	if err == nil {
		_ = c.Quit()
		return core.VerificationValid, "mailbox exists", true
	}

	var smtpErr *smtp.SMTPError
	if !errors.As(err, &smtpErr) {
		return core.VerificationUnknown, fmt.Sprintf("connection failed: %v", err), false
	}

	switch {
	case smtpErr.Code == 550:
		return core.VerificationInvalid, "mailbox does not exist", true
	case smtpErr.Code >= 551 && smtpErr.Code <= 554:
		return core.VerificationInvalid, fmt.Sprintf("rejected (%d): %s", smtpErr.Code, smtpErr.Message), true
	case smtpErr.Code >= 400 && smtpErr.Code < 500:
		// Greylisting or a temporary block, common from residential IPs
		return core.VerificationUnknown, fmt.Sprintf("temporary failure or rate limit (%d)", smtpErr.Code), true
	default:
		return core.VerificationUnknown, fmt.Sprintf("unexpected response (%d): %s", smtpErr.Code, smtpErr.Message), false
	}
}
