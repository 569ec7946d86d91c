package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Email posts to a Resend-compatible transactional email API.
type Email struct {
	Endpoint string
	APIKey   string
	From     string
	To       []string
	Client   *http.Client
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

func NewEmail(endpoint, apiKey, from string, to []string, client *http.Client) *Email {
	if client == nil {
		client = http.DefaultClient
	}
	return &Email{Endpoint: endpoint, APIKey: apiKey, From: from, To: to, Client: client}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(emailRequest{
		From:    e.From,
		To:      e.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+e.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", msg.RequestID)

	resp, err := e.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkResponse(e.Name(), resp)
}
