package section

import (
	"path"
	"strings"

	"github.com/jmgilman/go/boundary/errors"
)

// ValidateName reports whether name can address a section.
//
// Names are slash-separated relative paths. Empty names, absolute names, names
// with a ".." segment, names ending in a slash, and names containing NUL are
// rejected with KindInvalidArgument. Spaces and dashes are allowed, so
// "invalid - file" is a valid name.
func ValidateName(operation, name string) error {
	reject := func(reason string) error {
		err := errors.New(errors.KindInvalidArgument, operation, reason)
		return errors.WithContext(err, "section", name)
	}

	switch {
	case name == "":
		return reject("section name is empty")
	case strings.ContainsRune(name, 0):
		return reject("section name contains NUL")
	case path.IsAbs(name):
		return reject("section name must be relative")
	case strings.HasSuffix(name, "/"):
		return reject("section name must not end with a slash")
	}

	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return reject("section name escapes the store")
		}
	}
	return nil
}
