// Package minio provides a MinIO/S3-compatible section backend.
//
// Each section is one object; its key is the section name below an optional
// prefix. Objects are streamed on read and never buffered by the backend.
package minio

import (
	"bytes"
	"context"
	"errors"
	"io"

	perrors "github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/section/internal/keys"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultContentType = "text/plain; charset=utf-8"

// Backend stores sections as objects in a MinIO bucket.
type Backend struct {
	client      *minio.Client
	bucket      string
	prefix      string
	contentType string
}

// New creates a MinIO-backed section backend.
// Returns an INVALID_ARGUMENT error if the configuration is incomplete.
func New(cfg Config) (*Backend, error) {
	if err := cfg.validate(); err != nil {
		return nil, perrors.Wrap(err, perrors.KindInvalidArgument, "newBackend", "invalid minio config")
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, perrors.Wrap(err, perrors.KindInvalidArgument, "newBackend", "failed to create minio client")
		}
	}

	contentType := cfg.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	return &Backend{
		client:      client,
		bucket:      cfg.Bucket,
		prefix:      keys.NormalizePrefix(cfg.Prefix),
		contentType: contentType,
	}, nil
}

// Open returns a streaming reader over the section's object.
//
// GetObject is lazy, so the object is stat'ed first to surface a missing key
// here rather than on the first Read.
func (b *Backend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, keys.Join(b.prefix, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

// List returns the name of every object below the prefix.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	var names []string
	for object := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    keys.ListPrefix(b.prefix),
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, object.Err
		}
		if name, ok := keys.Name(b.prefix, object.Key); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Write uploads data as the section's object.
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	_, err := b.client.PutObject(ctx, b.bucket, keys.Join(b.prefix, name),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: b.contentType},
	)
	return err
}

// Remove deletes the section's object.
//
// Object deletion is idempotent in S3, so the key is stat'ed first to report
// a missing section.
func (b *Backend) Remove(ctx context.Context, name string) error {
	key := keys.Join(b.prefix, name)
	if _, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{}); err != nil {
		return err
	}
	return b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{})
}

// Rules maps MinIO error response codes to error kinds.
func (b *Backend) Rules() perrors.Rules {
	return Rules
}

// Rules is the MinIO failure table.
var Rules = perrors.Rules{
	perrors.MatchFunc(hasCode("NoSuchKey"), perrors.KindNotFound, "section does not exist"),
	perrors.MatchFunc(hasCode("NoSuchBucket"), perrors.KindStorageFailure, "bucket does not exist"),
	perrors.MatchFunc(
		hasCode("AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch"),
		perrors.KindPermissionDenied, "access to bucket denied",
	),
	perrors.MatchFunc(
		hasCode("SlowDown", "ServiceUnavailable", "InternalError", "XMinioServerNotInitialized"),
		perrors.KindStorageFailure, "object store unavailable",
	),
}

// hasCode returns a predicate matching MinIO error responses with one of codes.
func hasCode(codes ...string) func(error) bool {
	return func(err error) bool {
		var resp minio.ErrorResponse
		if !errors.As(err, &resp) {
			return false
		}
		for _, c := range codes {
			if resp.Code == c {
				return true
			}
		}
		return false
	}
}
