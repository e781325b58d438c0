package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	perrors "github.com/jmgilman/go/boundary/errors"
)

// Config holds S3 section backend configuration.
type Config struct {
	// Bucket is the bucket holding the sections
	Bucket string

	// Prefix is an optional key prefix under which sections are stored
	Prefix string

	// Region is the AWS region. Empty uses the default credential chain's region.
	Region string

	// Endpoint overrides the S3 endpoint (for S3-compatible stores)
	Endpoint string

	// UsePathStyle forces path-style addressing (required by most S3-compatible stores)
	UsePathStyle bool

	// AccessKey and SecretKey set static credentials. When both are empty the
	// default credential chain is used.
	AccessKey string
	SecretKey string

	// Client is an optional pre-configured client.
	// If provided, all connection fields are ignored
	Client API
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return fmt.Errorf("access key and secret key must be provided together")
	}
	return nil
}

// New creates an S3-backed section backend.
// Returns an INVALID_ARGUMENT error if the configuration is incomplete or the
// AWS configuration cannot be loaded.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if err := cfg.validate(); err != nil {
		return nil, perrors.Wrap(err, perrors.KindInvalidArgument, "newBackend", "invalid s3 config")
	}

	if cfg.Client != nil {
		return NewWithClient(cfg.Client, cfg.Bucket, cfg.Prefix), nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.KindInvalidArgument, "newBackend", "failed to load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}
