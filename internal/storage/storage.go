// Package storage writes exported documents to remote object storage.
package storage

import (
	"context"
	"time"
)

// Service stores JSON documents and hands out time-limited links to them.
type Service interface {
	// PutJSON uploads v encoded as JSON and returns the s3:// location.
	PutJSON(ctx context.Context, bucket, key string, v any) (string, error)
	ObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
