package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the object does not exist.
var ErrNotFound = errors.New("object not found")

// PresignedUpload describes where a client should PUT a file.
type PresignedUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type FileService interface {
	GetUploadURL(ctx context.Context, fileName, prefix string) (PresignedUpload, error)
	GetURL(ctx context.Context, key string) (string, error)
	IsExists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
