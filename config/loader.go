package config

import (
	"context"
	_ "embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jmgilman/go/boundary/errors"
	"gopkg.in/yaml.v3"
)

// OpLoadConfig is the operation name attached to load failures.
const OpLoadConfig = "loadConfig"

//go:embed schema.cue
var schemaSource []byte

var fileRules = errors.Rules{
	errors.Match(fs.ErrNotExist, errors.KindNotFound, "configuration file does not exist"),
	errors.Match(fs.ErrPermission, errors.KindPermissionDenied, "configuration file is not readable"),
}

// Loader decodes configuration files against the embedded schema.
type Loader struct {
	fs      billy.Filesystem
	cueCtx  *cue.Context
	env     func(string) (string, bool)
	secrets SecretResolver
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLookupEnv replaces os.LookupEnv for @env attributes.
func WithLookupEnv(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		l.env = lookup
	}
}

// WithSecrets sets the resolver for @secret attributes.
func WithSecrets(secrets SecretResolver) LoaderOption {
	return func(l *Loader) {
		l.secrets = secrets
	}
}

// NewLoader creates a loader reading from filesystem.
func NewLoader(filesystem billy.Filesystem, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:     filesystem,
		cueCtx: cuecontext.New(),
		env:    lookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile loads the configuration file at path on the local filesystem.
func LoadFile(ctx context.Context, path string, opts ...LoaderOption) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInvalidArgument, OpLoadConfig, "invalid configuration path")
	}
	return NewLoader(osfs.New(filepath.Dir(abs)), opts...).Load(ctx, filepath.Base(abs))
}

// Load reads, validates, and decodes the configuration file at path.
// The format is chosen by extension: .yaml and .yml are YAML, anything else
// is CUE (which includes JSON).
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Translate(OpLoadConfig, err)
	}

	data, err := util.ReadFile(l.fs, path)
	if err != nil {
		return nil, errors.WithContext(errors.Translate(OpLoadConfig, err, fileRules...), "path", path)
	}

	cfg, err := l.Parse(ctx, data, path)
	if err != nil {
		return nil, errors.WithContext(err, "path", path)
	}
	return cfg, nil
}

// Parse validates and decodes configuration source. filename selects the
// format and appears in error positions.
func (l *Loader) Parse(ctx context.Context, source []byte, filename string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Translate(OpLoadConfig, err)
	}

	value, err := l.compile(source, filename)
	if err != nil {
		return nil, err
	}

	value, err = l.resolveAttributes(ctx, value)
	if err != nil {
		var translated errors.TranslatedError
		if errors.As(err, &translated) {
			return nil, translated
		}
		return nil, errors.Wrap(err, errors.KindInvalidArgument, OpLoadConfig, "invalid attribute")
	}

	schema := l.cueCtx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, OpLoadConfig, "embedded schema does not compile")
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true), cue.Final(), cue.All()); err != nil {
		return nil, invalid(err, "configuration does not match the schema")
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, invalid(err, "configuration could not be decoded")
	}

	if err := cfg.check(); err != nil {
		return nil, errors.Wrap(err, errors.KindInvalidArgument, OpLoadConfig, "configuration is invalid")
	}

	return &cfg, nil
}

func (l *Loader) compile(source []byte, filename string) (cue.Value, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		var doc map[string]interface{}
		if err := yaml.Unmarshal(source, &doc); err != nil {
			return cue.Value{}, errors.Wrap(err, errors.KindInvalidArgument, OpLoadConfig, "configuration is not valid YAML")
		}
		if doc == nil {
			doc = map[string]interface{}{}
		}
		value := l.cueCtx.Encode(doc)
		if err := value.Err(); err != nil {
			return cue.Value{}, invalid(err, "configuration could not be converted")
		}
		return value, nil
	default:
		value := l.cueCtx.CompileBytes(source, cue.Filename(filename))
		if err := value.Err(); err != nil {
			return cue.Value{}, invalid(err, "configuration does not compile")
		}
		return value, nil
	}
}

// invalid wraps a CUE error as INVALID_ARGUMENT listing every issue.
func invalid(err error, message string) errors.TranslatedError {
	return errors.WrapWithContext(err, errors.KindInvalidArgument, OpLoadConfig, message, map[string]interface{}{
		"issues": issues(err),
	})
}

func issues(err error) []string {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		out = append(out, msg)
	}
	return out
}
