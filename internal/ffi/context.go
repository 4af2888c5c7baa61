//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package ffi

/*
#include <c2pa.h>
*/
import "C"

// Context owns an immutable native configuration snapshot. It is never
// mutated after construction; the owning wrapper must keep it alive while
// any reader or builder is bound to it.
type Context struct {
	ptr *C.C2paContext
}

// NewContext creates a context with default configuration.
func NewContext() (*Context, error) {
	ptr := C.c2pa_context_new()
	if ptr == nil {
		return nil, lastError()
	}
	return &Context{ptr: ptr}, nil
}

// Close frees the native handle. Safe to call more than once.
func (c *Context) Close() {
	if c.ptr != nil {
		C.c2pa_context_free(c.ptr)
		c.ptr = nil
	}
}

// Valid reports whether the handle is live.
func (c *Context) Valid() bool {
	return c != nil && c.ptr != nil
}

// ContextBuilder accumulates settings and is consumed by Build.
type ContextBuilder struct {
	ptr *C.C2paContextBuilder
}

// NewContextBuilder creates an empty context builder.
func NewContextBuilder() (*ContextBuilder, error) {
	ptr := C.c2pa_context_builder_new()
	if ptr == nil {
		return nil, lastError()
	}
	return &ContextBuilder{ptr: ptr}, nil
}

// SetSettings copies the settings configuration into the builder. The
// settings handle stays usable afterwards.
func (cb *ContextBuilder) SetSettings(s *Settings) error {
	if cb.ptr == nil {
		return &NativeError{Message: "context builder already consumed"}
	}
	if s == nil || s.ptr == nil {
		return &NativeError{Message: "settings handle is not valid"}
	}
	if C.c2pa_context_builder_set_settings(cb.ptr, s.ptr) < 0 {
		return lastError()
	}
	return nil
}

// Build consumes the builder and produces a context. The builder handle is
// invalid afterwards whether or not the build succeeded.
func (cb *ContextBuilder) Build() (*Context, error) {
	if cb.ptr == nil {
		return nil, &NativeError{Message: "context builder already consumed"}
	}
	ptr := C.c2pa_context_builder_build(cb.ptr)
	cb.ptr = nil
	if ptr == nil {
		return nil, lastError()
	}
	return &Context{ptr: ptr}, nil
}

// Consumed reports whether Build has already taken the handle.
func (cb *ContextBuilder) Consumed() bool {
	return cb.ptr == nil
}
