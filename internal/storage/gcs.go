package storage

import (
	"context"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSPresigner struct {
	client *gcs.Client
	bucket string
}

// NewGCSPresigner uses application default credentials unless a service
// account key file is given. Signing needs a key or the IAM signBlob permission.
func NewGCSPresigner(ctx context.Context, bucket, credentialsFile string) (*GCSPresigner, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSPresigner{client: c, bucket: bucket}, nil
}

func (p *GCSPresigner) Close() error { return p.client.Close() }

func (p *GCSPresigner) PresignPut(_ context.Context, objectName, contentType string, ttl time.Duration) (string, error) {
	return p.client.Bucket(p.bucket).SignedURL(objectName, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(ttl),
	})
}

func (p *GCSPresigner) PresignGet(_ context.Context, objectName string, ttl time.Duration) (string, error) {
	return p.client.Bucket(p.bucket).SignedURL(objectName, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
}
