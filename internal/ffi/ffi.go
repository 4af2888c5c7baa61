//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package ffi

/*
#cgo LDFLAGS: -lc2pa_c -lm
#include <stdlib.h>
#include <c2pa.h>

extern intptr_t c2paGoStreamRead(struct StreamContext *context, uint8_t *data, intptr_t len);
extern intptr_t c2paGoStreamSeek(struct StreamContext *context, intptr_t offset, C2paSeekMode mode);
extern intptr_t c2paGoStreamWrite(struct StreamContext *context, uint8_t *data, intptr_t len);
extern intptr_t c2paGoStreamFlush(struct StreamContext *context);

extern intptr_t c2paGoSignerSign(void *context, unsigned char *data, uintptr_t len, unsigned char *signed_bytes, uintptr_t signed_len);

// The vtable is wired here rather than in stream.go: a file containing
// //export directives must keep a definition-free preamble. Other files in
// this package reference these helpers through extern declarations.
struct C2paStream *c2pa_go_stream_new(struct StreamContext *context) {
	return c2pa_create_stream(context,
		(ReadCallback)c2paGoStreamRead,
		(SeekCallback)c2paGoStreamSeek,
		(WriteCallback)c2paGoStreamWrite,
		(FlushCallback)c2paGoStreamFlush);
}

struct C2paSigner *c2pa_go_signer_new(const void *context, C2paSigningAlg alg, const char *certs, const char *tsa_url) {
	return c2pa_signer_create(context, (SignerCallback)c2paGoSignerSign, alg, certs, tsa_url);
}
*/
import "C"

import (
	"unsafe"

	"github.com/contentauth/c2pa-go/pkg/c2pa/logging"
)

// logger receives debug traces from the binding layer. Nil disables them.
var logger logging.Logger

// SetLogger installs a logger for callback and native-error debug traces.
// Not safe to call concurrently with native operations.
func SetLogger(l logging.Logger) {
	logger = l
}

// lastError fetches and frees the library's last-error string. It must be
// called on the same goroutine as the failing native call, before any other
// native call is made.
func lastError() error {
	cmsg := C.c2pa_error()
	if cmsg == nil {
		return &NativeError{Message: "unknown error"}
	}
	msg := C.GoString(cmsg)
	C.c2pa_string_free(cmsg)
	return &NativeError{Message: msg}
}

// goString copies a native string and frees it through c2pa_string_free.
func goString(cstr *C.char) string {
	s := C.GoString(cstr)
	C.c2pa_string_free(cstr)
	return s
}

// goStringList copies a native string array and frees it.
func goStringList(arr **C.char, count C.uintptr_t) []string {
	out := make([]string, 0, int(count))
	for _, p := range unsafe.Slice(arr, int(count)) {
		out = append(out, C.GoString(p))
	}
	C.c2pa_free_string_array(arr, count)
	return out
}

// copyNativeBytes copies size bytes out of a native buffer. The size stays
// in 64-bit arithmetic the whole way so buffers over 2 GiB survive.
func copyNativeBytes(p unsafe.Pointer, size int64) []byte {
	bs := make([]byte, size)
	copy(bs, unsafe.Slice((*byte)(p), size))
	return bs
}

// goManifestBytes copies a native manifest buffer of the given size and
// frees it through c2pa_manifest_bytes_free.
func goManifestBytes(ptr *C.uchar, size int64) []byte {
	if ptr == nil {
		return nil
	}
	bs := copyNativeBytes(unsafe.Pointer(ptr), size)
	C.c2pa_manifest_bytes_free(ptr)
	return bs
}

// cString returns a NUL-terminated copy of s in C memory, or nil for "".
// Callers free it with freeCString. An empty string maps to a NULL pointer
// so optional ABI arguments can be omitted.
func cStringOpt(s string) *C.char {
	if s == "" {
		return nil
	}
	return C.CString(s)
}

func freeCString(cs *C.char) {
	if cs != nil {
		C.free(unsafe.Pointer(cs))
	}
}

// Version returns the native library version string.
func Version() string {
	return goString(C.c2pa_version())
}

// LoadSettings loads process-global settings from a string.
//
// Deprecated: process-global settings interfere across threads; use the
// Settings and Context handles instead.
func LoadSettings(data, format string) error {
	cData := C.CString(data)
	defer C.free(unsafe.Pointer(cData))
	cFormat := C.CString(format)
	defer C.free(unsafe.Pointer(cFormat))
	if C.c2pa_load_settings(cData, cFormat) < 0 {
		return lastError()
	}
	return nil
}

// ReadFile returns the manifest store JSON for the asset at path. Binary
// resources are written to dataDir when non-empty. Paths cross the ABI as
// UTF-8.
func ReadFile(path, dataDir string) (string, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	cDir := cStringOpt(dataDir)
	defer freeCString(cDir)
	result := C.c2pa_read_file(cPath, cDir)
	if result == nil {
		return "", lastError()
	}
	return goString(result), nil
}

// ReadIngredientFile returns ingredient JSON for the asset at path, writing
// thumbnails and C2PA data to dataDir when non-empty.
func ReadIngredientFile(path, dataDir string) (string, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	cDir := cStringOpt(dataDir)
	defer freeCString(cDir)
	result := C.c2pa_read_ingredient_file(cPath, cDir)
	if result == nil {
		return "", lastError()
	}
	return goString(result), nil
}

// SignFile signs the asset at sourcePath with the given signer info and
// writes the result to destPath.
func SignFile(sourcePath, destPath, manifestJSON string, info *SignerInfo, dataDir string) error {
	cSource := C.CString(sourcePath)
	defer C.free(unsafe.Pointer(cSource))
	cDest := C.CString(destPath)
	defer C.free(unsafe.Pointer(cDest))
	cManifest := C.CString(manifestJSON)
	defer C.free(unsafe.Pointer(cManifest))
	cDir := cStringOpt(dataDir)
	defer freeCString(cDir)

	cInfo, free := info.cSignerInfo()
	defer free()

	result := C.c2pa_sign_file(cSource, cDest, cManifest, cInfo, cDir)
	if result == nil {
		return lastError()
	}
	C.c2pa_string_free(result)
	return nil
}

// ReaderSupportedMimeTypes lists the MIME types the native library can read.
func ReaderSupportedMimeTypes() ([]string, error) {
	var count C.uintptr_t
	arr := C.c2pa_reader_supported_mime_types(&count)
	if arr == nil {
		return nil, lastError()
	}
	return goStringList(arr, count), nil
}

// BuilderSupportedMimeTypes lists the MIME types the native library can
// sign and embed into.
func BuilderSupportedMimeTypes() ([]string, error) {
	var count C.uintptr_t
	arr := C.c2pa_builder_supported_mime_types(&count)
	if arr == nil {
		return nil, lastError()
	}
	return goStringList(arr, count), nil
}

// Ed25519Sign signs data with a PEM-encoded Ed25519 private key using the
// native implementation. The signature is always 64 bytes.
func Ed25519Sign(data []byte, privateKeyPEM string) ([]byte, error) {
	cKey := C.CString(privateKeyPEM)
	defer C.free(unsafe.Pointer(cKey))
	var pData *C.uchar
	if len(data) > 0 {
		pData = (*C.uchar)(unsafe.Pointer(&data[0]))
	}
	sig := C.c2pa_ed25519_sign(pData, C.uintptr_t(len(data)), cKey)
	if sig == nil {
		return nil, lastError()
	}
	bs := C.GoBytes(unsafe.Pointer(sig), 64)
	C.c2pa_signature_free((*C.uint8_t)(sig))
	return bs, nil
}
