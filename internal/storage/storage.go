// Package storage contains S3-compatible object storage abstractions.
// Implementations rely on streaming I/O only and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnavailable is returned by every call on a storage built without an endpoint.
var ErrUnavailable = errors.New("object storage is not configured")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the
// backend buffers/chunks as supported.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Check verifies that the configured bucket is reachable and returns its name.
	Check(ctx context.Context) (string, error)
}

// Disabled returns a Storage that fails every call with ErrUnavailable.
func Disabled() Storage { return disabled{} }

type disabled struct{}

func (disabled) Put(context.Context, string, io.Reader, PutObjectOptions) (ObjectInfo, error) {
	return ObjectInfo{}, ErrUnavailable
}

func (disabled) Get(context.Context, string) (io.ReadCloser, ObjectInfo, error) {
	return nil, ObjectInfo{}, ErrUnavailable
}

func (disabled) Delete(context.Context, string) error { return ErrUnavailable }

func (disabled) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", ErrUnavailable
}

func (disabled) Check(context.Context) (string, error) { return "", ErrUnavailable }
