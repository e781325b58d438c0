package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmgilman/go/boundary/device"
	"github.com/jmgilman/go/boundary/device/sim"
	"github.com/jmgilman/go/boundary/device/term"
	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/retry"
	"github.com/jmgilman/go/boundary/section"
	billybackend "github.com/jmgilman/go/boundary/section/billy"
	gitbackend "github.com/jmgilman/go/boundary/section/git"
	githubbackend "github.com/jmgilman/go/boundary/section/github"
	miniobackend "github.com/jmgilman/go/boundary/section/minio"
	ocibackend "github.com/jmgilman/go/boundary/section/oci"
	s3backend "github.com/jmgilman/go/boundary/section/s3"
)

// Operation names attached to build failures.
const (
	OpBuildStore = "buildStore"
	OpBuildPort  = "buildPort"
)

// check parses the values the schema only constrains by shape.
func (c *Config) check() error {
	if _, err := c.Retry.Policy(); err != nil {
		return err
	}
	if c.Device != nil {
		if _, err := time.ParseDuration(c.Device.ReadTimeout); err != nil {
			return fmt.Errorf("device.readTimeout: %w", err)
		}
	}
	return nil
}

// Backend creates the configured section backend.
func (c *Config) Backend(ctx context.Context) (section.Backend, error) {
	s := c.Section
	var (
		backend section.Backend
		err     error
	)

	switch s.Backend {
	case "memory":
		backend = billybackend.NewMemory()
	case "local":
		if s.Local == nil {
			return nil, missing(OpBuildStore, "section.local")
		}
		backend = billybackend.NewLocal(s.Local.Root)
	case "minio":
		if s.Minio == nil {
			return nil, missing(OpBuildStore, "section.minio")
		}
		backend, err = miniobackend.New(miniobackend.Config{
			Endpoint:  s.Minio.Endpoint,
			Bucket:    s.Minio.Bucket,
			AccessKey: s.Minio.AccessKey,
			SecretKey: s.Minio.SecretKey,
			UseSSL:    s.Minio.UseSSL,
			Prefix:    s.Minio.Prefix,
		})
	case "s3":
		if s.S3 == nil {
			return nil, missing(OpBuildStore, "section.s3")
		}
		backend, err = s3backend.New(ctx, s3backend.Config{
			Bucket:       s.S3.Bucket,
			Prefix:       s.S3.Prefix,
			Region:       s.S3.Region,
			Endpoint:     s.S3.Endpoint,
			UsePathStyle: s.S3.UsePathStyle,
			AccessKey:    s.S3.AccessKey,
			SecretKey:    s.S3.SecretKey,
		})
	case "git":
		if s.Git == nil {
			return nil, missing(OpBuildStore, "section.git")
		}
		backend, err = gitbackend.Open(s.Git.Path, gitbackend.WithRevision(s.Git.Revision), gitbackend.WithDir(s.Git.Dir))
	case "github":
		if s.GitHub == nil {
			return nil, missing(OpBuildStore, "section.github")
		}
		opts := []githubbackend.Option{
			githubbackend.WithRef(s.GitHub.Ref),
			githubbackend.WithDir(s.GitHub.Dir),
		}
		if s.GitHub.Token != "" {
			opts = append(opts, githubbackend.WithToken(s.GitHub.Token))
		}
		backend, err = githubbackend.New(s.GitHub.Owner, s.GitHub.Repo, opts...)
	case "oci":
		if s.OCI == nil {
			return nil, missing(OpBuildStore, "section.oci")
		}
		backend, err = ocibackend.NewRemote(ocibackend.Config{
			Reference: s.OCI.Reference,
			PlainHTTP: s.OCI.PlainHTTP,
			Username:  s.OCI.Username,
			Password:  s.OCI.Password,
		})
	default:
		return nil, errors.Newf(errors.KindInvalidArgument, OpBuildStore, "unknown section backend %q", s.Backend)
	}

	if err != nil {
		return nil, errors.WithContext(errors.Translate(OpBuildStore, err), "backend", s.Backend)
	}
	return backend, nil
}

// Store creates a section store over the configured backend.
func (c *Config) Store(ctx context.Context, opts ...section.Option) (*section.Store, error) {
	backend, err := c.Backend(ctx)
	if err != nil {
		return nil, err
	}

	if c.Section.Concurrency > 0 {
		opts = append([]section.Option{section.WithConcurrency(c.Section.Concurrency)}, opts...)
	}
	return section.New(backend, opts...), nil
}

// Driver creates the configured device driver.
func (c *Config) Driver() (device.Driver, error) {
	d := c.Device
	if d == nil {
		return nil, errors.New(errors.KindInvalidArgument, OpBuildPort, "no device is configured")
	}

	switch d.Driver {
	case "sim":
		driver := sim.New()
		driver.Attach(d.Address, sim.NewDevice(sim.Echo()))
		return driver, nil
	case "term":
		timeout, err := time.ParseDuration(d.ReadTimeout)
		if err != nil {
			return nil, errors.Wrap(err, errors.KindInvalidArgument, OpBuildPort, "invalid device read timeout")
		}
		return term.New(term.WithBaud(d.Baud), term.WithReadTimeout(timeout)), nil
	default:
		return nil, errors.Newf(errors.KindInvalidArgument, OpBuildPort, "unknown device driver %q", d.Driver)
	}
}

// Port creates a device port for the configured device.
func (c *Config) Port(opts ...device.Option) (*device.Port, error) {
	driver, err := c.Driver()
	if err != nil {
		return nil, err
	}

	if c.Device.ReadSize > 0 {
		opts = append([]device.Option{device.WithReadSize(c.Device.ReadSize)}, opts...)
	}
	return device.NewPort(driver, c.Device.Address, opts...), nil
}

// Policy converts the retry settings into a retry.Policy.
func (r Retry) Policy() (retry.Policy, error) {
	p := retry.DefaultPolicy()
	if r.MaxAttempts >= 0 {
		p.MaxAttempts = uint64(r.MaxAttempts)
	}

	for _, d := range []struct {
		name   string
		value  string
		target *time.Duration
	}{
		{"retry.initialInterval", r.InitialInterval, &p.InitialInterval},
		{"retry.maxInterval", r.MaxInterval, &p.MaxInterval},
		{"retry.maxElapsedTime", r.MaxElapsedTime, &p.MaxElapsedTime},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return retry.Policy{}, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.target = parsed
	}

	return p, nil
}

// Handler creates the slog handler writing to w.
func (l Log) Handler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: l.level()}
	if strings.EqualFold(l.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func (l Log) level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func missing(op, field string) errors.TranslatedError {
	return errors.Newf(errors.KindInvalidArgument, op, "%s is required", field)
}
