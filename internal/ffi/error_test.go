package ffi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNativeErrorMessageVerbatim(t *testing.T) {
	err := &NativeError{Message: "ManifestNotFound: no JUMBF data found"}
	require.Equal(t, "ManifestNotFound: no JUMBF data found", err.Error())
}

func TestNativeErrorUnwrapsThroughAs(t *testing.T) {
	wrapped := fmt.Errorf("reading asset: %w", &NativeError{Message: "Io: short read"})

	var nerr *NativeError
	require.True(t, errors.As(wrapped, &nerr))
	require.Equal(t, "Io: short read", nerr.Message)
}
