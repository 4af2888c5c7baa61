//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package c2pa

import (
	"sync"

	"github.com/contentauth/c2pa-go/internal/ffi"
)

// Context is an immutable configuration snapshot shared by readers and
// builders. A Context is safe for concurrent use: it is never mutated after
// construction, and the native handle is reference-counted so it outlives
// every Reader and Builder bound to it even if Close is called first.
type Context struct {
	mu     sync.Mutex
	ffi    *ffi.Context
	refs   int
	closed bool
}

// NewContext creates a context with the native library's default
// configuration.
func NewContext() (*Context, error) {
	h, err := ffi.NewContext()
	if err != nil {
		return nil, err
	}
	return &Context{ffi: h}, nil
}

// ContextFromJSON creates a context from a JSON settings string.
func ContextFromJSON(data string) (*Context, error) {
	return contextFromString(data, FormatJSON)
}

// ContextFromTOML creates a context from a TOML settings string.
func ContextFromTOML(data string) (*Context, error) {
	return contextFromString(data, FormatTOML)
}

func contextFromString(data, format string) (*Context, error) {
	settings, err := NewSettingsFromString(data, format)
	if err != nil {
		return nil, err
	}
	defer settings.Close()
	builder, err := NewContextBuilder()
	if err != nil {
		return nil, err
	}
	if err := builder.WithSettings(settings); err != nil {
		return nil, err
	}
	return builder.CreateContext()
}

// HasContext reports whether the native handle is live.
func (c *Context) HasContext() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.ffi.Valid()
}

// retain binds a reader or builder to the context. Fails once closed.
func (c *Context) retain() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &Error{Message: "context already closed"}
	}
	c.refs++
	return nil
}

// release undoes retain, freeing the native handle if Close already ran.
func (c *Context) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs--
	if c.closed && c.refs == 0 {
		c.ffi.Close()
	}
}

// Close marks the context closed. The native handle is freed immediately
// when no reader or builder references it, otherwise when the last one is
// closed. Safe to call more than once.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.refs == 0 {
		c.ffi.Close()
	}
}

func (c *Context) handle() *ffi.Context {
	return c.ffi
}

// ContextBuilder assembles a Context from settings fragments. Fragments
// applied later override earlier ones for the paths they mention.
// CreateContext consumes the builder; any use afterwards fails.
type ContextBuilder struct {
	ffi *ffi.ContextBuilder
}

// NewContextBuilder creates an empty context builder.
func NewContextBuilder() (*ContextBuilder, error) {
	h, err := ffi.NewContextBuilder()
	if err != nil {
		return nil, err
	}
	return &ContextBuilder{ffi: h}, nil
}

// WithSettings copies the settings configuration into the builder. The
// Settings stays usable afterwards.
func (cb *ContextBuilder) WithSettings(s *Settings) error {
	return cb.ffi.SetSettings(s.ffi)
}

// WithJSON merges a JSON settings fragment into the builder.
func (cb *ContextBuilder) WithJSON(data string) error {
	return cb.withString(data, FormatJSON)
}

// WithTOML merges a TOML settings fragment into the builder.
func (cb *ContextBuilder) WithTOML(data string) error {
	return cb.withString(data, FormatTOML)
}

func (cb *ContextBuilder) withString(data, format string) error {
	if cb.ffi.Consumed() {
		return &Error{Message: "context builder already consumed"}
	}
	settings, err := NewSettingsFromString(data, format)
	if err != nil {
		return err
	}
	defer settings.Close()
	return cb.ffi.SetSettings(settings.ffi)
}

// CreateContext consumes the builder and returns the immutable context.
// Subsequent calls on the builder fail.
func (cb *ContextBuilder) CreateContext() (*Context, error) {
	h, err := cb.ffi.Build()
	if err != nil {
		return nil, err
	}
	return &Context{ffi: h}, nil
}
