// Package notify implements the status-change notification path: the webhook
// payload raised on every appointment status transition, the handler that
// decides whether an email goes out, and the transactional-email client.
//
// Delivery is best effort end to end. A failed send never rolls back or
// retries the status transition that triggered it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrAPIKeyUnset = errors.New("email API key is not configured")

// Email is the transactional-email API request body.
type Email struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// RetryPolicy caps delivery attempts per send. The default is a single
// attempt: appointment emails are not worth a retry queue.
type RetryPolicy struct {
	MaxAttempts int
}

var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 1}

// HTTPMailer posts emails to a transactional-email HTTP API with a bearer
// key, one JSON document per send.
type HTTPMailer struct {
	APIURL string
	APIKey string
	Client *http.Client
	Retry  RetryPolicy
}

func NewHTTPMailer(apiURL, apiKey string) *HTTPMailer {
	return &HTTPMailer{
		APIURL: apiURL,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 10 * time.Second},
		Retry:  DefaultRetryPolicy,
	}
}

func (m *HTTPMailer) Send(ctx context.Context, email Email) error {
	if m.APIKey == "" {
		return ErrAPIKeyUnset
	}

	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	attempts := m.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = m.post(ctx, body)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (m *HTTPMailer) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email API responded %d", resp.StatusCode)
	}
	return nil
}
