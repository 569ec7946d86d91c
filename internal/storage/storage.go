package storage

import (
	"context"
	"time"
)

// Presigner issues time-limited URLs for a single object. Bytes never pass
// through this service.
type Presigner interface {
	PresignPut(ctx context.Context, objectName, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}
