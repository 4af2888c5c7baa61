//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package ffi

/*
#include <stdlib.h>
#include <c2pa.h>

extern struct C2paStream *c2pa_go_stream_new(struct StreamContext *context);
*/
import "C"

import (
	"context"
	"errors"
	"io"
	"sync"
	"unsafe"
)

// flusher is implemented by host streams that buffer writes.
type flusher interface {
	Flush() error
}

// streamAdapter binds the four native callbacks to a host stream. A nil
// field marks the corresponding callback illegal for this variant; calling
// it returns -1 with an invalid-argument meaning, mirroring a read on a
// write-only stream.
type streamAdapter struct {
	reader io.Reader
	seeker io.Seeker
	writer io.Writer
}

// streamRegistry maps the C-side context token to the Go adapter. The token
// is a C allocation so it stays stable across the boundary; Go pointers must
// not be handed to C directly.
var streamRegistry sync.Map

func lookupStream(token unsafe.Pointer) *streamAdapter {
	v, ok := streamRegistry.Load(token)
	if !ok {
		return nil
	}
	return v.(*streamAdapter)
}

// Stream owns a native stream descriptor built over a host stream. The host
// stream is borrowed, never owned: the caller must keep it alive and valid
// for every native call that uses this Stream, and must not touch it while
// a native call is in flight.
type Stream struct {
	cStream *C.C2paStream
	token   unsafe.Pointer
}

func newStream(adapter *streamAdapter) (*Stream, error) {
	token := C.malloc(1)
	if token == nil {
		return nil, errors.New("failed to allocate stream context")
	}
	streamRegistry.Store(token, adapter)
	cStream := C.c2pa_go_stream_new((*C.StreamContext)(token))
	if cStream == nil {
		streamRegistry.Delete(token)
		C.free(token)
		return nil, lastError()
	}
	return &Stream{cStream: cStream, token: token}, nil
}

// NewReadStream wraps a read-only host stream. Writes through the native
// descriptor fail.
func NewReadStream(r io.ReadSeeker) (*Stream, error) {
	return newStream(&streamAdapter{reader: r, seeker: r})
}

// NewWriteStream wraps a write-only host stream. Reads through the native
// descriptor fail.
func NewWriteStream(w io.WriteSeeker) (*Stream, error) {
	return newStream(&streamAdapter{writer: w, seeker: w})
}

// NewReadWriteStream wraps a bidirectional host stream.
func NewReadWriteStream(rw io.ReadWriteSeeker) (*Stream, error) {
	return newStream(&streamAdapter{reader: rw, seeker: rw, writer: rw})
}

// Close releases the native descriptor. The host stream is untouched.
func (s *Stream) Close() {
	if s.cStream != nil {
		C.c2pa_release_stream(s.cStream)
		s.cStream = nil
	}
	if s.token != nil {
		streamRegistry.Delete(s.token)
		C.free(s.token)
		s.token = nil
	}
}

func (s *Stream) ptr() *C.C2paStream {
	return s.cStream
}

// readStream reads into buf, retrying bare (0, nil) returns, which the
// io.Reader contract permits to mean "nothing yet, try again". Gives up
// after 100 empty reads with io.ErrNoProgress, mirroring io.Copy.
func readStream(r io.Reader, buf []byte) (int, error) {
	for i := 0; i < 100; i++ {
		n, err := r.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
	return 0, io.ErrNoProgress
}

//export c2paGoStreamRead
func c2paGoStreamRead(streamCtx *C.StreamContext, data *C.uint8_t, length C.intptr_t) C.intptr_t {
	adapter := lookupStream(unsafe.Pointer(streamCtx))
	if adapter == nil || adapter.reader == nil {
		return -1
	}
	if length <= 0 {
		return 0
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(data)), int(length))
	n, err := readStream(adapter.reader, buf)
	if err != nil && !errors.Is(err, io.EOF) {
		if logger != nil {
			logger.Debug(context.Background(), "stream read failed", "err", err)
		}
		return -1
	}
	// 0 with io.EOF means end of stream; partial reads are fine.
	return C.intptr_t(n)
}

//export c2paGoStreamSeek
func c2paGoStreamSeek(streamCtx *C.StreamContext, offset C.intptr_t, mode C.C2paSeekMode) C.intptr_t {
	adapter := lookupStream(unsafe.Pointer(streamCtx))
	if adapter == nil || adapter.seeker == nil {
		return -1
	}
	var whence int
	switch mode {
	case C.Start:
		whence = io.SeekStart
	case C.Current:
		whence = io.SeekCurrent
	case C.End:
		whence = io.SeekEnd
	default:
		return -1
	}
	pos, err := adapter.seeker.Seek(int64(offset), whence)
	if err != nil {
		if logger != nil {
			logger.Debug(context.Background(), "stream seek failed", "offset", int64(offset), "whence", whence, "err", err)
		}
		return -1
	}
	return C.intptr_t(pos)
}

//export c2paGoStreamWrite
func c2paGoStreamWrite(streamCtx *C.StreamContext, data *C.uint8_t, length C.intptr_t) C.intptr_t {
	adapter := lookupStream(unsafe.Pointer(streamCtx))
	if adapter == nil || adapter.writer == nil {
		return -1
	}
	if length <= 0 {
		return 0
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(data)), int(length))
	n, err := adapter.writer.Write(buf)
	if err != nil {
		if logger != nil {
			logger.Debug(context.Background(), "stream write failed", "err", err)
		}
		return -1
	}
	if n < int(length) {
		// io.Writer must not do this without an error, but the native side
		// requires all-or-nothing.
		return -1
	}
	return C.intptr_t(n)
}

//export c2paGoStreamFlush
func c2paGoStreamFlush(streamCtx *C.StreamContext) C.intptr_t {
	adapter := lookupStream(unsafe.Pointer(streamCtx))
	if adapter == nil {
		return -1
	}
	if f, ok := adapter.writer.(flusher); ok {
		if err := f.Flush(); err != nil {
			return -1
		}
	}
	return 0
}
