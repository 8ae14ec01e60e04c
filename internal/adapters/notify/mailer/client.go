package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-vaccination-tracker/internal/platform/httpclient"
)

var (
	ErrMailerNotConfigured = errors.New("mailer client not configured")
	ErrMailerUpstream      = errors.New("mailer upstream error")
)

// Config del cliente del servicio de correo.
// BaseURL y APIKey vienen de env vars en quien lo instancia (main/router).
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header donde viaja la API key. Default "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

type sendEmailRequest struct {
	To      string `json:"to"`
	ToName  string `json:"to_name,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendEmail entrega un correo al servicio de mailing.
func (c *Client) SendEmail(ctx context.Context, to, toName, subject, body string) error {
	if !c.IsConfigured() {
		return ErrMailerNotConfigured
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("mailer: recipient email required")
	}

	err := c.http.DoJSON(ctx, "POST", "/v1/emails", map[string]string{
		c.apiKeyHeader: c.apiKey,
	}, sendEmailRequest{
		To:      strings.TrimSpace(to),
		ToName:  strings.TrimSpace(toName),
		Subject: subject,
		Body:    body,
	}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailerUpstream, err)
	}
	return nil
}
