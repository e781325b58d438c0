// Package s3 provides an Amazon S3 section backend built on aws-sdk-go-v2.
//
// Each section is one object; its key is the section name below an optional
// prefix. The backend talks to S3 through the narrow API interface, which the
// SDK's *s3.Client satisfies and tests can fake.
package s3

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	perrors "github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/section/internal/keys"
)

// API is the subset of the S3 client the backend uses.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var _ API = (*s3.Client)(nil)

// Backend stores sections as objects in an S3 bucket.
type Backend struct {
	client API
	bucket string
	prefix string
}

// NewWithClient creates a backend over an existing client.
func NewWithClient(client API, bucket, prefix string) *Backend {
	return &Backend{
		client: client,
		bucket: bucket,
		prefix: keys.NormalizePrefix(prefix),
	}
}

// Open returns the body of the section's object.
func (b *Backend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(keys.Join(b.prefix, name)),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// List returns the name of every object below the prefix.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(keys.ListPrefix(b.prefix)),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if name, ok := keys.Name(b.prefix, aws.ToString(obj.Key)); ok {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// Write uploads data as the section's object.
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(keys.Join(b.prefix, name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("text/plain; charset=utf-8"),
	})
	return err
}

// Remove deletes the section's object. Deletion is idempotent in S3, so the
// object is checked first to report a missing section.
func (b *Backend) Remove(ctx context.Context, name string) error {
	key := aws.String(keys.Join(b.prefix, name))

	if _, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(b.bucket), Key: key}); err != nil {
		return err
	}
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(b.bucket), Key: key})
	return err
}

// Rules maps S3 failures to error kinds.
func (b *Backend) Rules() perrors.Rules {
	return Rules
}

// Rules is the S3 failure table. Any API error not matched earlier is treated
// as a storage failure.
var Rules = perrors.Rules{
	perrors.MatchType[*types.NoSuchKey](perrors.KindNotFound, "section does not exist"),
	perrors.MatchType[*types.NotFound](perrors.KindNotFound, "section does not exist"),
	perrors.MatchType[*types.NoSuchBucket](perrors.KindStorageFailure, "bucket does not exist"),
	perrors.MatchFunc(hasCode("AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch"),
		perrors.KindPermissionDenied, "access to bucket denied"),
	perrors.MatchType[smithy.APIError](perrors.KindStorageFailure, "object store request failed"),
}

// hasCode returns a predicate matching smithy API errors with one of codes.
func hasCode(codes ...string) func(error) bool {
	return func(err error) bool {
		var apiErr smithy.APIError
		if !errors.As(err, &apiErr) {
			return false
		}
		for _, c := range codes {
			if apiErr.ErrorCode() == c {
				return true
			}
		}
		return false
	}
}
