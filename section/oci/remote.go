package oci

import (
	"fmt"
	"strings"

	"github.com/jmgilman/go/boundary/errors"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"
)

const defaultTag = "latest"

// Config configures a backend over a remote registry.
type Config struct {
	// Reference names the artifact, e.g. "ghcr.io/org/sections:v1".
	// The tag defaults to "latest".
	Reference string

	// PlainHTTP talks to the registry over HTTP instead of HTTPS.
	PlainHTTP bool

	// Username and Password set static credentials for the registry.
	// When both are empty the registry is accessed anonymously.
	Username string
	Password string
}

func (c *Config) validate() error {
	if c.Reference == "" {
		return fmt.Errorf("reference is required")
	}
	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("username and password must be set together")
	}
	return nil
}

// NewRemote creates a backend over the registry repository named in cfg.
func NewRemote(cfg Config) (*Backend, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, errors.KindInvalidArgument, "newBackend", "invalid OCI configuration")
	}

	repoPath, tag := splitReference(cfg.Reference)
	repo, err := remote.NewRepository(repoPath)
	if err != nil {
		return nil, errors.WithContext(
			errors.Wrap(err, errors.KindInvalidArgument, "newBackend", "invalid OCI reference"),
			"reference", cfg.Reference,
		)
	}
	repo.PlainHTTP = cfg.PlainHTTP

	client := &auth.Client{
		Client: retry.DefaultClient,
		Cache:  auth.NewCache(),
	}
	if cfg.Username != "" {
		client.Credential = auth.StaticCredential(repo.Reference.Registry, auth.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	repo.Client = client

	return New(repo, tag), nil
}

// splitReference splits "registry/repo:tag" or "registry/repo@digest" into the
// repository path and the tag or digest. Only the last path element is
// searched for a tag so registry ports are kept.
func splitReference(ref string) (repoPath, tag string) {
	if at := strings.LastIndex(ref, "@"); at != -1 {
		return ref[:at], ref[at+1:]
	}
	slash := strings.LastIndex(ref, "/")
	tail := ref[slash+1:]
	if colon := strings.LastIndex(tail, ":"); colon != -1 {
		return ref[:slash+1] + tail[:colon], tail[colon+1:]
	}
	return ref, defaultTag
}

