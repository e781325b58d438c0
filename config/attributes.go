package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"github.com/jmgilman/go/boundary/errors"
)

// argPattern matches one key=value argument at the start of the remaining
// text. Values are either double quoted or run to the next comma.
var argPattern = regexp.MustCompile(`^\s*(\w+)\s*=\s*("(?:[^"\\]|\\.)*"|[^,"=]*)\s*(?:,|$)`)

func lookupEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// resolver produces a field value from attribute arguments. ok is false when
// the field should be left as written.
type resolver func(ctx context.Context, args map[string]string) (value string, ok bool, err error)

type fill struct {
	path  cue.Path
	value string
}

func (l *Loader) resolvers() map[string]resolver {
	return map[string]resolver{
		"env":    l.resolveEnv,
		"secret": l.resolveSecret,
	}
}

func (l *Loader) resolveEnv(_ context.Context, args map[string]string) (string, bool, error) {
	name := args["name"]
	if name == "" {
		return "", false, fmt.Errorf("@env requires a name")
	}
	if v, ok := l.env(name); ok {
		return v, true, nil
	}
	if def, ok := args["default"]; ok {
		return def, true, nil
	}
	return "", false, nil
}

func (l *Loader) resolveSecret(ctx context.Context, args map[string]string) (string, bool, error) {
	id := args["id"]
	if id == "" {
		id = args["name"]
	}
	if id == "" {
		return "", false, fmt.Errorf("@secret requires an id")
	}
	if l.secrets == nil {
		return "", false, errors.New(errors.KindInvalidArgument, OpResolveSecret, "no secret resolver is configured")
	}

	v, err := l.secrets.Resolve(ctx, id, args["key"])
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// resolveAttributes fills every field carrying a known attribute.
func (l *Loader) resolveAttributes(ctx context.Context, value cue.Value) (cue.Value, error) {
	var (
		fills []fill
		err   error
	)
	resolvers := l.resolvers()

	value.Walk(func(v cue.Value) bool {
		if err != nil {
			return false
		}
		for name, resolve := range resolvers {
			attr := v.Attribute(name)
			if attr.Err() != nil {
				continue
			}

			args, perr := parseArgs(attr.Contents())
			if perr != nil {
				err = fmt.Errorf("%s: %w", v.Path(), perr)
				return false
			}

			resolved, ok, rerr := resolve(ctx, args)
			if rerr != nil {
				err = rerr
				var translated errors.TranslatedError
				if !errors.As(rerr, &translated) {
					err = fmt.Errorf("%s: %w", v.Path(), rerr)
				}
				return false
			}
			if ok {
				fills = append(fills, fill{path: v.Path(), value: resolved})
			}
			break
		}
		return true
	}, nil)
	if err != nil {
		return cue.Value{}, err
	}

	for _, f := range fills {
		value = value.FillPath(f.path, f.value)
	}
	return value, nil
}

// parseArgs parses key=value pairs separated by commas. Values may be
// quoted. A lone bare argument is taken as the name. Text that is not part of
// an argument is an error.
func parseArgs(text string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]string{}, nil
	}
	if !strings.ContainsAny(text, `=",`) {
		return map[string]string{"name": text}, nil
	}

	args := make(map[string]string)
	for rest := text; rest != ""; {
		m := argPattern.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("malformed attribute arguments %q", text)
		}

		value := strings.TrimSpace(m[2])
		if strings.HasPrefix(value, `"`) {
			unquoted, err := strconv.Unquote(value)
			if err != nil {
				return nil, fmt.Errorf("malformed attribute value %s: %w", value, err)
			}
			value = unquoted
		}
		args[m[1]] = value
		rest = rest[len(m[0]):]
	}
	return args, nil
}
