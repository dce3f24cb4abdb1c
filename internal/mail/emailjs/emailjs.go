// Package emailjs delivers messages through the EmailJS REST API.
//
// EmailJS stores the email layout as a template on its side; this client
// sends the template id for the message kind plus a flat map of template
// variables. The rendered subject and bodies travel as variables too, so
// an EmailJS template can simply print {{{message_html}}}.
package emailjs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DAN6256/EmailServer/internal/mail"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the public EmailJS send API.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// maxErrorBody caps how much of a rejection body is kept.
const maxErrorBody = 4 << 10

// Options configures a Client.
type Options struct {
	Endpoint   string
	ServiceID  string
	PublicKey  string
	PrivateKey string

	// Templates maps each message kind to an EmailJS template id.
	Templates map[mail.Kind]string

	// RatePerSecond and Burst bound outbound requests. A zero rate
	// disables limiting.
	RatePerSecond float64
	Burst         int

	HTTPClient *http.Client
}

// Client is a mail.Transport backed by EmailJS.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
}

var _ mail.Transport = (*Client)(nil)

// New returns a Client. It never fails: missing credentials surface from
// Verify and Send so the service can still boot and report them.
func New(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	return &Client{opts: opts, http: hc, limiter: limiter}
}

func (c *Client) Name() string { return "emailjs" }

type payload struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts msg to EmailJS. Any non-2xx answer is returned as a
// *mail.ProviderError carrying the status and body.
func (c *Client) Send(ctx context.Context, msg mail.Message) (mail.Receipt, error) {
	templateID := c.opts.Templates[msg.Kind]
	if templateID == "" {
		return mail.Receipt{}, fmt.Errorf("emailjs.Send: no template configured for %s", msg.Kind)
	}
	if err := c.credentials(); err != nil {
		return mail.Receipt{}, fmt.Errorf("emailjs.Send: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return mail.Receipt{}, fmt.Errorf("emailjs.Send: rate limit: %w", err)
		}
	}

	body, err := json.Marshal(payload{
		ServiceID:      c.opts.ServiceID,
		TemplateID:     templateID,
		UserID:         c.opts.PublicKey,
		AccessToken:    c.opts.PrivateKey,
		TemplateParams: templateParams(msg),
	})
	if err != nil {
		return mail.Receipt{}, fmt.Errorf("emailjs.Send: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return mail.Receipt{}, fmt.Errorf("emailjs.Send: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return mail.Receipt{}, fmt.Errorf("emailjs.Send: do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mail.Receipt{}, &mail.ProviderError{
			Provider: c.Name(),
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(respBody)),
		}
	}

	return mail.Receipt{
		ID:     resp.Header.Get("X-Request-Id"),
		SentAt: time.Now().UTC(),
	}, nil
}

// Verify reports missing credentials or template ids. EmailJS has no
// side-effect-free endpoint to probe, so nothing is sent.
func (c *Client) Verify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.credentials(); err != nil {
		return err
	}
	for _, kind := range []mail.Kind{mail.KindApplication, mail.KindTutorBooking, mail.KindStudentBooking} {
		if c.opts.Templates[kind] == "" {
			return fmt.Errorf("emailjs: no template configured for %s", kind)
		}
	}
	return nil
}

var errMissingKeys = errors.New("emailjs: missing service id or public/private key")

func (c *Client) credentials() error {
	if c.opts.ServiceID == "" || c.opts.PublicKey == "" || c.opts.PrivateKey == "" {
		return errMissingKeys
	}
	return nil
}

// templateParams flattens msg into EmailJS template variables. Request
// fields come first so the rendered values below always win.
func templateParams(msg mail.Message) map[string]string {
	params := make(map[string]string, len(msg.Params)+8)
	for k, v := range msg.Params {
		params[k] = v
	}

	params["to_email"] = msg.To.Email
	params["to_name"] = msg.To.Name
	params["from_name"] = msg.From.Name
	params["reply_to"] = msg.From.Email
	params["email_subject"] = msg.Subject
	params["message_text"] = msg.Text
	params["message_html"] = msg.HTML

	if msg.Link != "" {
		params["calendar_link"] = msg.Link
	}
	if msg.Invite != nil {
		params["calendar_ics"] = msg.Invite.Content
		params["calendar_filename"] = msg.Invite.Filename
	}
	return params
}
