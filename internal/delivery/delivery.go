package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound delivery call.
const DefaultTimeout = 8 * time.Second

const maxErrorBody = 2 << 10

// Message is one lead rendered for every channel.
type Message struct {
	Kind      string
	RequestID string
	Payload   any // webhook JSON body
	Subject   string
	Text      string
	ReplyTo   string
}

type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Channel    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s responded %d", e.Channel, e.StatusCode)
	}
	return fmt.Sprintf("%s responded %d: %s", e.Channel, e.StatusCode, e.Body)
}

func checkResponse(channel string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Channel: channel, StatusCode: resp.StatusCode, Body: string(body)}
}
