package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{".", ""},
		{"/", ""},
		{"sections", "sections"},
		{"/sections/", "sections"},
		{"docs\\sections", "docs/sections"},
		{"a//b/./c", "a/b/c"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrefix(tt.in))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "intro", Join("", "intro"))
	assert.Equal(t, "docs/intro", Join("docs", "intro"))
	assert.Equal(t, "docs/a/b", Join("docs", "a//b"))
}

func TestListPrefix(t *testing.T) {
	assert.Equal(t, "", ListPrefix(""))
	assert.Equal(t, "docs/", ListPrefix("docs"))
}

func TestName(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
		ok     bool
	}{
		{"", "intro", "intro", true},
		{"", "dir/", "", false},
		{"docs", "docs/intro", "intro", true},
		{"docs", "docs/a/b", "a/b", true},
		{"docs", "docsextra/intro", "", false},
		{"docs", "docs/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.key, func(t *testing.T) {
			got, ok := Name(tt.prefix, tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
