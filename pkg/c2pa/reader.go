//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package c2pa

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/contentauth/c2pa-go/internal/ffi"
)

// Reader parses the manifest store of a single asset. It keeps the source
// stream open for resource extraction until Close is called; the stream
// passed to NewReader must stay valid for the Reader's lifetime.
type Reader struct {
	ffi    *ffi.Reader
	stream *ffi.Stream
	file   *os.File
	ctx    *Context
}

// NewReader parses the manifest store of the asset in source. The format is
// a MIME type or file extension such as "image/jpeg" or "jpg". A nil ctx
// uses process-global settings.
func NewReader(ctx *Context, format string, source io.ReadSeeker) (*Reader, error) {
	return newReader(ctx, format, source, nil)
}

// NewReaderFromFile opens path and parses its manifest store, deriving the
// format from the file extension.
func NewReaderFromFile(ctx *Context, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("FileNotFound: %s", path)}
	}
	r, err := newReader(ctx, formatFromPath(path), f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func newReader(ctx *Context, format string, source io.ReadSeeker, file *os.File) (*Reader, error) {
	stream, err := ffi.NewReadStream(source)
	if err != nil {
		return nil, err
	}
	var (
		fr     *ffi.Reader
		rdrErr error
	)
	if ctx == nil {
		fr, rdrErr = ffi.NewReaderFromStream(format, stream)
	} else {
		if err := ctx.retain(); err != nil {
			stream.Close()
			return nil, err
		}
		fr, rdrErr = ffi.NewReaderFromContext(ctx.handle(), format, stream)
		if rdrErr != nil {
			ctx.release()
		}
	}
	if rdrErr != nil {
		stream.Close()
		return nil, rdrErr
	}
	return &Reader{ffi: fr, stream: stream, file: file, ctx: ctx}, nil
}

func (r *Reader) live() error {
	if r.ffi == nil {
		return &Error{Message: "reader already closed"}
	}
	return nil
}

// JSON returns the manifest store as a JSON report.
func (r *Reader) JSON() (string, error) {
	if err := r.live(); err != nil {
		return "", err
	}
	return r.ffi.JSON()
}

// IsEmbedded reports whether the manifest was embedded in the asset rather
// than fetched from a remote reference.
func (r *Reader) IsEmbedded() (bool, error) {
	if err := r.live(); err != nil {
		return false, err
	}
	return r.ffi.IsEmbedded()
}

// RemoteURL returns the manifest's remote reference URL, or "" if the
// manifest carries none.
func (r *Reader) RemoteURL() (string, error) {
	if err := r.live(); err != nil {
		return "", err
	}
	return r.ffi.RemoteURL()
}

// ResourceToStream writes the resource identified by uri to dest and returns
// the number of bytes written. The uri comes from the manifest JSON, for
// example a thumbnail identifier.
func (r *Reader) ResourceToStream(uri string, dest io.WriteSeeker) (int64, error) {
	if err := r.live(); err != nil {
		return 0, err
	}
	stream, err := ffi.NewWriteStream(dest)
	if err != nil {
		return 0, err
	}
	defer stream.Close()
	return r.ffi.ResourceToStream(uri, stream)
}

// ResourceToFile writes the resource identified by uri to a new file at path,
// creating parent directories as needed.
func (r *Reader) ResourceToFile(uri string, path string) (int64, error) {
	if err := r.live(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.ResourceToStream(uri, f)
}

// Close releases the native reader and the source stream. Safe to call more
// than once.
func (r *Reader) Close() error {
	if r.ffi != nil {
		r.ffi.Close()
		r.ffi = nil
	}
	if r.stream != nil {
		r.stream.Close()
		r.stream = nil
	}
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
	if r.ctx != nil {
		r.ctx.release()
		r.ctx = nil
	}
	return nil
}

func formatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
