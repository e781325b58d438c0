// Package keys maps section names to object-store keys under a prefix.
package keys

import (
	"path"
	"strings"
)

// NormalizePrefix cleans an object key prefix:
//   - converts backslashes to forward slashes
//   - removes leading and trailing slashes
//   - returns an empty string for "" and "."
func NormalizePrefix(prefix string) string {
	if prefix == "" || prefix == "." {
		return ""
	}

	prefix = strings.ReplaceAll(prefix, "\\", "/")
	prefix = path.Clean(prefix)
	prefix = strings.Trim(prefix, "/")
	if prefix == "." {
		return ""
	}
	return prefix
}

// Join returns the object key for name under prefix.
func Join(prefix, name string) string {
	name = strings.TrimPrefix(path.Clean(name), "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// ListPrefix returns the prefix to list every section under prefix.
func ListPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// Name returns the section name for key, and false for keys outside prefix
// or directory markers.
func Name(prefix, key string) (string, bool) {
	if strings.HasSuffix(key, "/") {
		return "", false
	}
	if prefix == "" {
		return key, key != ""
	}
	name, ok := strings.CutPrefix(key, prefix+"/")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
