package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"standard error", stderrors.New("plain"), KindUnknown},
		{"translated", New(KindNotFound, "op", "msg"), KindNotFound},
		{"wrapped translated", fmt.Errorf("outer: %w", New(KindPermissionDenied, "op", "msg")), KindPermissionDenied},
		{"outermost wins", Wrap(New(KindNotFound, "inner", "msg"), KindStorageFailure, "outer", "msg"), KindStorageFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, GetKind(tt.err))
		})
	}
}

func TestIsKind(t *testing.T) {
	err := New(KindDeviceUnavailable, "open", "busy")
	require.True(t, IsKind(err, KindDeviceUnavailable))
	require.False(t, IsKind(err, KindNotFound))
	require.False(t, IsKind(nil, KindUnknown))
}

func TestGetOperation(t *testing.T) {
	require.Equal(t, "open", GetOperation(New(KindDeviceUnavailable, "open", "busy")))
	require.Equal(t, "", GetOperation(stderrors.New("plain")))
	require.Equal(t, "", GetOperation(nil))
}

func TestGetClassification(t *testing.T) {
	require.Equal(t, ClassificationRetryable, GetClassification(New(KindTimeout, "op", "msg")))
	require.Equal(t, ClassificationPermanent, GetClassification(stderrors.New("plain")))
	require.Equal(t, ClassificationPermanent, GetClassification(nil))
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(New(KindStorageFailure, "op", "msg")))
	require.False(t, IsRetryable(New(KindNotFound, "op", "msg")))
	require.False(t, IsRetryable(stderrors.New("plain")))
	require.False(t, IsRetryable(nil))
}

func TestIsAndAs(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := Wrap(sentinel, KindUnknown, "op", "msg")

	require.True(t, Is(err, sentinel))

	var translated TranslatedError
	require.True(t, As(fmt.Errorf("outer: %w", err), &translated))
	require.Equal(t, KindUnknown, translated.Kind())
}
