// Package smtpmail delivers HTML email over SMTP
package smtpmail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/interfaces"
	"github.com/finbrief/finbrief/internal/models"
)

// sendFunc matches smtp.SendMail, injectable for tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Client implements the Mailer interface over plain SMTP
type Client struct {
	host        string
	port        int
	username    string
	password    string
	fromAddress string
	logger      *common.Logger
	send        sendFunc
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSendFunc overrides the SMTP send call (tests only)
func WithSendFunc(fn sendFunc) ClientOption {
	return func(c *Client) {
		c.send = fn
	}
}

// NewClient creates a new SMTP mailer
func NewClient(cfg common.EmailConfig, opts ...ClientOption) *Client {
	c := &Client{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.Username,
		password:    cfg.Password,
		fromAddress: cfg.FromAddress,
		logger:      common.NewSilentLogger(),
		send:        smtp.SendMail,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send delivers one HTML email to one recipient. Errors surface to the
// caller; no retry happens at this layer.
func (c *Client) Send(ctx context.Context, msg models.EmailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("recipient address is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	headers := [][2]string{
		{"From", c.fromAddress},
		{"To", msg.To},
		{"Subject", msg.Subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var sb strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&sb, "%s: %s\r\n", h[0], h[1])
	}
	sb.WriteString("\r\n")
	sb.WriteString(msg.HTMLBody)

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}
	addr := fmt.Sprintf("%s:%d", c.host, c.port)

	if err := c.send(addr, auth, c.fromAddress, []string{msg.To}, []byte(sb.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	c.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("Email delivered")
	return nil
}

// Ensure Client implements Mailer
var _ interfaces.Mailer = (*Client)(nil)
