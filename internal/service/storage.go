package service

import (
	"context"
	"errors"
	"io"
)

// ErrStorageDisabled is returned by the no-op storage used when
// storage.type is "none"
var ErrStorageDisabled = errors.New("object storage is disabled")

// ObjectStorage is where avatars live. *aws.S3Client implements it
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, keys ...string) error
}

type NoStorage struct{}

func (NoStorage) Put(context.Context, string, string, io.Reader, int64) error {
	return ErrStorageDisabled
}

// Delete succeeds so cleanup paths don't have to special case disabled storage
func (NoStorage) Delete(context.Context, ...string) error {
	return nil
}
