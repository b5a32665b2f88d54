package email

import (
	"context"
	"fmt"

	"github.com/invobase/invobase/internal/config"
	"github.com/resend/resend-go/v2"
)

// Sender sends outbound mail. The notification pipeline depends on this
// interface so tests can capture sends without a provider.
type Sender interface {
	IsEnabled() bool
	Send(ctx context.Context, to, subject, htmlContent, textContent string) (string, error)
}

// Client wraps the resend API client. A client without an API key is
// disabled and rejects sends, which the notification handler treats as a
// skip rather than a delivery failure.
type Client struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	replyTo     string
}

// NewClient creates a new email client from configuration
func NewClient(cfg *config.Configuration) *Client {
	if !cfg.Email.Enabled || cfg.Email.APIKey == "" {
		return &Client{enabled: false}
	}

	return &Client{
		client:      resend.NewClient(cfg.Email.APIKey),
		enabled:     true,
		fromAddress: cfg.Email.FromAddress,
		replyTo:     cfg.Email.ReplyTo,
	}
}

// IsEnabled returns whether the email client is enabled
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// Send sends a plain text or HTML email
func (c *Client) Send(ctx context.Context, to, subject, htmlContent, textContent string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("email client is disabled")
	}

	params := &resend.SendEmailRequest{
		From:    c.fromAddress,
		To:      []string{to},
		Subject: subject,
		Html:    htmlContent,
		Text:    textContent,
	}
	if c.replyTo != "" {
		params.ReplyTo = c.replyTo
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", err
	}

	return sent.Id, nil
}
