package storage

import (
	"context"
	"io"
	"time"
)

// Service stores user-supplied blobs such as profile pictures.
type Service interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	GetObjectURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
