package special

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	var nilSlice []string

	got := Slice(nilSlice)
	require.NotNil(t, got)
	require.Empty(t, got)

	in := []string{"a", "b"}
	require.Equal(t, in, Slice(in))

	// Serializes as an empty list rather than null.
	data, err := json.Marshal(Slice(nilSlice))
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}

func TestEmpty(t *testing.T) {
	got := Empty[int]()
	require.NotNil(t, got)
	require.Len(t, got, 0)

	// Usable like any other result.
	got = append(got, 1)
	require.Equal(t, []int{1}, got)
}

func TestMap(t *testing.T) {
	var nilMap map[string]int

	got := Map(nilMap)
	require.NotNil(t, got)
	got["a"] = 1 // writable, unlike a nil map

	in := map[string]int{"x": 2}
	require.Equal(t, in, Map(in))
}

func TestValue(t *testing.T) {
	type record struct {
		Name string
		Size int
	}

	require.Equal(t, record{}, Value[record](nil))

	r := &record{Name: "intro", Size: 4}
	require.Equal(t, *r, Value(r))
}

func TestOr(t *testing.T) {
	tests := []struct {
		name     string
		v        string
		fallback string
		want     string
	}{
		{"zero uses fallback", "", "default", "default"},
		{"value kept", "set", "default", "set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Or(tt.v, tt.fallback))
		})
	}

	assert.Equal(t, 4096, Or(0, 4096))
}
