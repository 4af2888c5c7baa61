//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package ffi

/*
#include <stdlib.h>
#include <c2pa.h>
*/
import "C"

import "unsafe"

// Reader owns a native manifest-reading handle bound to one asset stream.
// The stream used to populate it must outlive every call on the handle.
type Reader struct {
	ptr *C.C2paReader
}

// NewReaderFromStream creates and verifies a reader over the asset stream
// using process-global settings.
//
// Deprecated: use NewReaderFromContext with an explicit Context.
func NewReaderFromStream(format string, stream *Stream) (*Reader, error) {
	cFormat := C.CString(format)
	defer C.free(unsafe.Pointer(cFormat))
	ptr := C.c2pa_reader_from_stream(cFormat, stream.ptr())
	if ptr == nil {
		return nil, lastError()
	}
	return &Reader{ptr: ptr}, nil
}

// NewReaderFromContext creates an empty reader bound to the context's
// configuration, then consumes the asset stream with the given format hint.
func NewReaderFromContext(ctx *Context, format string, stream *Stream) (*Reader, error) {
	if !ctx.Valid() {
		return nil, &NativeError{Message: "context handle is not valid"}
	}
	ptr := C.c2pa_reader_from_context(ctx.ptr)
	if ptr == nil {
		return nil, lastError()
	}
	cFormat := C.CString(format)
	defer C.free(unsafe.Pointer(cFormat))
	if C.c2pa_reader_with_stream(ptr, cFormat, stream.ptr()) < 0 {
		err := lastError()
		C.c2pa_reader_free(ptr)
		return nil, err
	}
	return &Reader{ptr: ptr}, nil
}

// JSON returns the manifest store as JSON text. Idempotent.
func (r *Reader) JSON() (string, error) {
	if r.ptr == nil {
		return "", &NativeError{Message: "reader already freed"}
	}
	result := C.c2pa_reader_json(r.ptr)
	if result == nil {
		return "", lastError()
	}
	return goString(result), nil
}

// IsEmbedded reports whether the manifest was embedded in the asset rather
// than referenced remotely.
func (r *Reader) IsEmbedded() (bool, error) {
	if r.ptr == nil {
		return false, &NativeError{Message: "reader already freed"}
	}
	return bool(C.c2pa_reader_is_embedded(r.ptr)), nil
}

// RemoteURL returns the manifest's remote URL, or "" when the manifest is
// not remote.
func (r *Reader) RemoteURL() (string, error) {
	if r.ptr == nil {
		return "", &NativeError{Message: "reader already freed"}
	}
	result := C.c2pa_reader_remote_url(r.ptr)
	if result == nil {
		return "", nil
	}
	return goString(result), nil
}

// ResourceToStream writes the resource identified by uri to the destination
// stream and returns the number of bytes written.
func (r *Reader) ResourceToStream(uri string, dest *Stream) (int64, error) {
	if r.ptr == nil {
		return 0, &NativeError{Message: "reader already freed"}
	}
	cURI := C.CString(uri)
	defer C.free(unsafe.Pointer(cURI))
	written := C.c2pa_reader_resource_to_stream(r.ptr, cURI, dest.ptr())
	if written < 0 {
		return 0, lastError()
	}
	return int64(written), nil
}

// Close frees the native handle. Safe to call more than once.
func (r *Reader) Close() {
	if r.ptr != nil {
		C.c2pa_reader_free(r.ptr)
		r.ptr = nil
	}
}
