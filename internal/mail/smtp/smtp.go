// Package smtp delivers messages through an SMTP relay using go-mail.
package smtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DAN6256/EmailServer/internal/mail"
	gomail "github.com/wneessen/go-mail"
)

// Options configures a Client.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string

	// TLS is "mandatory", "opportunistic" or "none".
	TLS string

	// Timeout bounds dialing and each SMTP command.
	Timeout time.Duration
}

// Client is a mail.Transport backed by an SMTP relay. A fresh go-mail
// client is created per operation because a go-mail client holds one
// connection and is not meant to be shared between goroutines.
type Client struct {
	opts Options
}

var _ mail.Transport = (*Client)(nil)

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	if _, err := tlsPolicy(opts.TLS); err != nil {
		return nil, err
	}
	if opts.Port == 0 {
		opts.Port = 587
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{opts: opts}, nil
}

func (c *Client) Name() string { return "smtp" }

// Send builds a MIME message and submits it in a single session.
func (c *Client) Send(ctx context.Context, msg mail.Message) (mail.Receipt, error) {
	m, err := buildMessage(msg)
	if err != nil {
		return mail.Receipt{}, fmt.Errorf("smtp.Send: build message: %w", err)
	}

	client, err := c.dialer()
	if err != nil {
		return mail.Receipt{}, fmt.Errorf("smtp.Send: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return mail.Receipt{}, fmt.Errorf("smtp.Send: %w", err)
	}

	var id string
	if ids := m.GetGenHeader(gomail.HeaderMessageID); len(ids) > 0 {
		id = ids[0]
	}
	return mail.Receipt{ID: id, SentAt: time.Now().UTC()}, nil
}

// Verify connects and authenticates, then quits without sending.
func (c *Client) Verify(ctx context.Context) error {
	if c.opts.Host == "" {
		return fmt.Errorf("smtp.Verify: host is not configured")
	}
	client, err := c.dialer()
	if err != nil {
		return fmt.Errorf("smtp.Verify: %w", err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp.Verify: dial: %w", err)
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("smtp.Verify: close: %w", err)
	}
	return nil
}

func (c *Client) dialer() (*gomail.Client, error) {
	policy, _ := tlsPolicy(c.opts.TLS)
	opts := []gomail.Option{
		gomail.WithPort(c.opts.Port),
		gomail.WithTLSPolicy(policy),
		gomail.WithTimeout(c.opts.Timeout),
	}
	if c.opts.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(c.opts.Username),
			gomail.WithPassword(c.opts.Password),
		)
	}
	client, err := gomail.NewClient(c.opts.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	return client, nil
}

func tlsPolicy(s string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mandatory":
		return gomail.TLSMandatory, nil
	case "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "none":
		return gomail.NoTLS, nil
	default:
		return gomail.TLSMandatory, fmt.Errorf("smtp: unknown tls policy %q", s)
	}
}
