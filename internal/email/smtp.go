package email

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"curator/internal/config"
)

// Transport sends a rendered message to a recipient.
type Transport interface {
	Send(to string, msg Message) error
}

// SMTPTransport delivers mail over SMTP with PLAIN auth. Port 465 uses
// implicit TLS; other ports rely on STARTTLS when the server offers it.
type SMTPTransport struct {
	cfg config.Email
}

// NewSMTPTransport creates a transport from the email configuration.
func NewSMTPTransport(cfg config.Email) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send delivers the message as a multipart/alternative mail with text and
// HTML parts.
func (t *SMTPTransport) Send(to string, msg Message) error {
	addr := fmt.Sprintf("%s:%d", t.cfg.SMTP.Host, t.cfg.SMTP.Port)
	body := t.buildMIME(to, msg)

	var auth smtp.Auth
	if t.cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", t.cfg.SMTP.Username, t.cfg.SMTP.Password, t.cfg.SMTP.Host)
	}

	if t.cfg.SMTP.TLSEnabled && t.cfg.SMTP.Port == 465 {
		return t.sendImplicitTLS(addr, auth, to, body)
	}

	if err := smtp.SendMail(addr, auth, t.cfg.FromAddress, []string{to}, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (t *SMTPTransport) sendImplicitTLS(addr string, auth smtp.Auth, to string, body []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: t.cfg.SMTP.Host})
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, t.cfg.SMTP.Host)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}
	if err := client.Mail(t.cfg.FromAddress); err != nil {
		return fmt.Errorf("smtp mail command failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt command failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data command failed: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish email body: %w", err)
	}

	return nil
}

func (t *SMTPTransport) buildMIME(to string, msg Message) []byte {
	from := t.cfg.FromAddress
	if t.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", t.cfg.FromName), t.cfg.FromAddress)
	}

	boundary := fmt.Sprintf("curator-%d", time.Now().UnixNano())

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Markdown)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}
