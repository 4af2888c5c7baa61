//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package ffi

import (
	"bytes"
	"io"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// sputterReader returns (0, nil) a number of times before yielding data,
// which the io.Reader contract allows.
type sputterReader struct {
	empty int
	data  *bytes.Reader
}

func (s *sputterReader) Read(p []byte) (int, error) {
	if s.empty > 0 {
		s.empty--
		return 0, nil
	}
	return s.data.Read(p)
}

func TestReadStreamRetriesEmptyReads(t *testing.T) {
	r := &sputterReader{empty: 3, data: bytes.NewReader([]byte("payload"))}
	buf := make([]byte, 16)

	n, err := readStream(r, buf)
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, "payload", string(buf[:n]))
}

func TestReadStreamEOF(t *testing.T) {
	n, err := readStream(bytes.NewReader(nil), make([]byte, 4))
	require.Zero(t, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadStreamGivesUpWithoutProgress(t *testing.T) {
	r := &sputterReader{empty: 1000, data: bytes.NewReader([]byte("x"))}
	n, err := readStream(r, make([]byte, 4))
	require.Zero(t, n)
	require.ErrorIs(t, err, io.ErrNoProgress)
}

func TestCopyNativeBytes(t *testing.T) {
	src := []byte("manifest bytes")
	out := copyNativeBytes(unsafe.Pointer(&src[0]), int64(len(src)))
	require.Equal(t, src, out)

	// independent copy
	out[0] = 'x'
	require.Equal(t, byte('m'), src[0])
}
