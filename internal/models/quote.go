package models

import "time"

// QuoteRequest only lives for the duration of one request.
type QuoteRequest struct {
	RequestID  string    `json:"requestId"`
	ReceivedAt time.Time `json:"receivedAt"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email,omitempty"`
	Coverage   string    `json:"coverage,omitempty"`
	Zip        string    `json:"zip,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Source     string    `json:"source,omitempty"`
	FillTimeMs int64     `json:"fillTimeMs"`
}
