package models

import "time"

type LeadKind string

const (
	KindQuote       LeadKind = "quote"
	KindApplication LeadKind = "application"
)

type ChannelOutcome struct {
	Configured bool   `bson:"configured" json:"configured"`
	OK         bool   `bson:"ok" json:"ok"`
	Error      string `bson:"error,omitempty" json:"error,omitempty"`
}

// DeliveryRecord is the audit entry for one submission. It never holds
// submitter PII.
type DeliveryRecord struct {
	RequestID       string         `bson:"request_id" json:"requestId"`
	Kind            LeadKind       `bson:"kind" json:"kind"`
	ApplicationID   string         `bson:"application_id,omitempty" json:"applicationId,omitempty"`
	StoreConfigured bool           `bson:"store_configured" json:"storeConfigured"`
	Stored          bool           `bson:"stored" json:"stored"`
	Webhook         ChannelOutcome `bson:"webhook" json:"webhook"`
	Email           ChannelOutcome `bson:"email" json:"email"`
	Delivered       bool           `bson:"delivered" json:"delivered"`
	Suppressed      string         `bson:"suppressed,omitempty" json:"suppressed,omitempty"`
	Suspicious      bool           `bson:"suspicious" json:"suspicious"`
	ReceivedAt      time.Time      `bson:"received_at" json:"receivedAt"`
	ExpiresAt       time.Time      `bson:"expires_at" json:"expiresAt"`
}
