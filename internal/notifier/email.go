package notifier

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/cgv-watch/internal/config"
)

const (
	implicitTLSPort = 465
	smtpTimeout     = 30 * time.Second
)

// sendFunc delivers a fully built message
type sendFunc func(ctx context.Context, cfg config.MailConfig, msg []byte) error

// EmailNotifier sends reports by SMTP
type EmailNotifier struct {
	cfg  config.MailConfig
	send sendFunc
}

// NewEmailNotifier creates an email notifier. Every mail setting must be present.
func NewEmailNotifier(cfg config.MailConfig) (*EmailNotifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &EmailNotifier{cfg: cfg, send: sendSMTP}, nil
}

// Name returns "email"
func (n *EmailNotifier) Name() string {
	return "email"
}

// Notify sends msg to the configured recipient
func (n *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	data := buildMessage(n.cfg, msg, time.Now())
	if err := n.send(ctx, n.cfg, data); err != nil {
		return fmt.Errorf("sending mail via %s:%d: %w", n.cfg.Host, n.cfg.Port, err)
	}
	return nil
}

// buildMessage renders RFC 5322 headers and a base64 UTF-8 text body
func buildMessage(cfg config.MailConfig, msg Message, now time.Time) []byte {
	var b strings.Builder

	b.WriteString("From: " + cfg.From + "\r\n")
	b.WriteString("To: " + cfg.To + "\r\n")
	b.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	if msg.ID != "" {
		b.WriteString("Message-ID: <" + msg.ID + "@cgv-watch>\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(msg.Body))
	for len(encoded) > 76 {
		b.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded + "\r\n")

	return []byte(b.String())
}

// sendSMTP uses implicit TLS on port 465 and STARTTLS when offered otherwise.
// Both paths share the dial timeout and stop when ctx is done.
func sendSMTP(ctx context.Context, cfg config.MailConfig, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	tlsConfig := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	netDialer := &net.Dialer{Timeout: smtpTimeout}

	var (
		conn net.Conn
		err  error
	)
	if cfg.Port == implicitTLSPort {
		conn, err = (&tls.Dialer{NetDialer: netDialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = netDialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dialing: %w", err)
	}

	deadline := time.Now().Add(smtpTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("setting deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("starting session: %w", err)
	}
	defer client.Close()

	if cfg.Port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starting TLS: %w", err)
			}
		}
	}

	auth := smtp.PlainAuth("", cfg.From, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	if err := client.Mail(cfg.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := client.Rcpt(cfg.To); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("opening data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data: %w", err)
	}

	return client.Quit()
}
