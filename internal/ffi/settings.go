//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package ffi

/*
#include <stdlib.h>
#include <c2pa.h>
*/
import "C"

import "unsafe"

// Settings owns a native settings handle, a mutable configuration
// accumulator fed to a ContextBuilder.
type Settings struct {
	ptr *C.C2paSettings
}

// NewSettings creates an empty settings handle.
func NewSettings() (*Settings, error) {
	ptr := C.c2pa_settings_new()
	if ptr == nil {
		return nil, lastError()
	}
	return &Settings{ptr: ptr}, nil
}

// Set assigns a JSON literal value to a dotted configuration path, e.g.
// ("verify.verify_after_sign", "false"). The native library validates both.
func (s *Settings) Set(path, valueJSON string) error {
	if s.ptr == nil {
		return &NativeError{Message: "settings already freed"}
	}
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	cValue := C.CString(valueJSON)
	defer C.free(unsafe.Pointer(cValue))
	if C.c2pa_settings_set(s.ptr, cPath, cValue) < 0 {
		return lastError()
	}
	return nil
}

// Update merges additional configuration in the given format ("json" or
// "toml"). Paths not mentioned retain their prior values.
func (s *Settings) Update(data, format string) error {
	if s.ptr == nil {
		return &NativeError{Message: "settings already freed"}
	}
	cData := C.CString(data)
	defer C.free(unsafe.Pointer(cData))
	cFormat := C.CString(format)
	defer C.free(unsafe.Pointer(cFormat))
	if C.c2pa_settings_update(s.ptr, cData, cFormat) < 0 {
		return lastError()
	}
	return nil
}

// Close frees the native handle. Safe to call more than once.
func (s *Settings) Close() {
	if s.ptr != nil {
		C.c2pa_settings_free(s.ptr)
		s.ptr = nil
	}
}
