//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package ffi

/*
#include <stdlib.h>
#include <c2pa.h>
*/
import "C"

import "unsafe"

// Builder owns a native manifest-construction handle.
type Builder struct {
	ptr *C.C2paBuilder
}

// NewBuilderFromJSON creates a builder from a manifest definition using
// process-global settings.
//
// Deprecated: use NewBuilderFromContext with an explicit Context.
func NewBuilderFromJSON(manifestJSON string) (*Builder, error) {
	cJSON := C.CString(manifestJSON)
	defer C.free(unsafe.Pointer(cJSON))
	ptr := C.c2pa_builder_from_json(cJSON)
	if ptr == nil {
		return nil, lastError()
	}
	return &Builder{ptr: ptr}, nil
}

// NewBuilderFromContext creates a builder with an empty manifest definition
// bound to the context's configuration.
func NewBuilderFromContext(ctx *Context) (*Builder, error) {
	if !ctx.Valid() {
		return nil, &NativeError{Message: "context handle is not valid"}
	}
	ptr := C.c2pa_builder_from_context(ctx.ptr)
	if ptr == nil {
		return nil, lastError()
	}
	return &Builder{ptr: ptr}, nil
}

// NewBuilderFromArchive restores a builder from a previously serialized
// archive stream.
func NewBuilderFromArchive(stream *Stream) (*Builder, error) {
	ptr := C.c2pa_builder_from_archive(stream.ptr())
	if ptr == nil {
		return nil, lastError()
	}
	return &Builder{ptr: ptr}, nil
}

func (b *Builder) live() error {
	if b.ptr == nil {
		return &NativeError{Message: "builder already freed"}
	}
	return nil
}

// WithDefinition replaces or augments the manifest definition from JSON.
func (b *Builder) WithDefinition(manifestJSON string) error {
	if err := b.live(); err != nil {
		return err
	}
	cJSON := C.CString(manifestJSON)
	defer C.free(unsafe.Pointer(cJSON))
	if C.c2pa_builder_with_definition(b.ptr, cJSON) < 0 {
		return lastError()
	}
	return nil
}

// SetNoEmbed configures the builder to leave the asset unchanged when
// signing; the manifest becomes a sidecar payload.
func (b *Builder) SetNoEmbed() {
	if b.ptr != nil {
		C.c2pa_builder_set_no_embed(b.ptr)
	}
}

// SetRemoteURL annotates signed assets with the URL of a remotely hosted
// manifest.
func (b *Builder) SetRemoteURL(url string) error {
	if err := b.live(); err != nil {
		return err
	}
	cURL := C.CString(url)
	defer C.free(unsafe.Pointer(cURL))
	if C.c2pa_builder_set_remote_url(b.ptr, cURL) < 0 {
		return lastError()
	}
	return nil
}

// SetBasePath sets the directory resolved against relative resource
// references in the manifest definition.
func (b *Builder) SetBasePath(path string) error {
	if err := b.live(); err != nil {
		return err
	}
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	if C.c2pa_builder_set_base_path(b.ptr, cPath) < 0 {
		return lastError()
	}
	return nil
}

// AddResource attaches a named binary resource read from the stream.
func (b *Builder) AddResource(uri string, stream *Stream) error {
	if err := b.live(); err != nil {
		return err
	}
	cURI := C.CString(uri)
	defer C.free(unsafe.Pointer(cURI))
	if C.c2pa_builder_add_resource(b.ptr, cURI, stream.ptr()) < 0 {
		return lastError()
	}
	return nil
}

// AddIngredient attaches a parent or component asset described by
// ingredientJSON, reading the asset from the stream.
func (b *Builder) AddIngredient(ingredientJSON, format string, stream *Stream) error {
	if err := b.live(); err != nil {
		return err
	}
	cJSON := C.CString(ingredientJSON)
	defer C.free(unsafe.Pointer(cJSON))
	cFormat := C.CString(format)
	defer C.free(unsafe.Pointer(cFormat))
	if C.c2pa_builder_add_ingredient_from_stream(b.ptr, cJSON, cFormat, stream.ptr()) < 0 {
		return lastError()
	}
	return nil
}

// AddAction appends an action assertion from JSON.
func (b *Builder) AddAction(actionJSON string) error {
	if err := b.live(); err != nil {
		return err
	}
	cJSON := C.CString(actionJSON)
	defer C.free(unsafe.Pointer(cJSON))
	if C.c2pa_builder_add_action(b.ptr, cJSON) < 0 {
		return lastError()
	}
	return nil
}

// ToArchive serializes the builder's in-progress state to the destination
// stream. The builder remains usable.
func (b *Builder) ToArchive(dest *Stream) error {
	if err := b.live(); err != nil {
		return err
	}
	if C.c2pa_builder_to_archive(b.ptr, dest.ptr()) < 0 {
		return lastError()
	}
	return nil
}

// Sign streams the source asset through the native library, writes the
// signed output to dest, and returns a copy of the manifest bytes.
func (b *Builder) Sign(format string, source, dest *Stream, signer *Signer) ([]byte, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	if !signer.valid() {
		return nil, &NativeError{Message: "signer handle is not valid"}
	}
	cFormat := C.CString(format)
	defer C.free(unsafe.Pointer(cFormat))
	var manifestBytes *C.uchar
	size := C.c2pa_builder_sign(b.ptr, cFormat, source.ptr(), dest.ptr(), signer.ptr, &manifestBytes)
	if size < 0 {
		return nil, lastError()
	}
	return goManifestBytes(manifestBytes, int64(size)), nil
}

// DataHashedPlaceholder produces a placeholder manifest whose byte length
// equals the eventual signed manifest for the same configuration, enabling
// in-place patching.
func (b *Builder) DataHashedPlaceholder(reservedSize uint64, format string) ([]byte, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	cFormat := C.CString(format)
	defer C.free(unsafe.Pointer(cFormat))
	var manifestBytes *C.uchar
	size := C.c2pa_builder_data_hashed_placeholder(b.ptr, C.uintptr_t(reservedSize), cFormat, &manifestBytes)
	if size < 0 {
		return nil, lastError()
	}
	return goManifestBytes(manifestBytes, int64(size)), nil
}

// SignDataHashedEmbeddable signs using a data-hash descriptor. asset may be
// nil when dataHashJSON carries a pre-computed hash; otherwise the native
// library streams the asset, honoring the descriptor's exclusions.
func (b *Builder) SignDataHashedEmbeddable(signer *Signer, dataHashJSON, format string, asset *Stream) ([]byte, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	if !signer.valid() {
		return nil, &NativeError{Message: "signer handle is not valid"}
	}
	cHash := C.CString(dataHashJSON)
	defer C.free(unsafe.Pointer(cHash))
	cFormat := C.CString(format)
	defer C.free(unsafe.Pointer(cFormat))
	var assetPtr *C.C2paStream
	if asset != nil {
		assetPtr = asset.ptr()
	}
	var manifestBytes *C.uchar
	size := C.c2pa_builder_sign_data_hashed_embeddable(b.ptr, signer.ptr, cHash, cFormat, assetPtr, &manifestBytes)
	if size < 0 {
		return nil, lastError()
	}
	return goManifestBytes(manifestBytes, int64(size)), nil
}

// FormatEmbeddable converts raw manifest bytes (application/c2pa) into the
// container-specific embeddable form for the given format.
func FormatEmbeddable(format string, manifest []byte) ([]byte, error) {
	cFormat := C.CString(format)
	defer C.free(unsafe.Pointer(cFormat))
	var pManifest *C.uchar
	if len(manifest) > 0 {
		pManifest = (*C.uchar)(unsafe.Pointer(&manifest[0]))
	}
	var resultBytes *C.uchar
	size := C.c2pa_format_embeddable(cFormat, pManifest, C.uintptr_t(len(manifest)), &resultBytes)
	if size < 0 {
		return nil, lastError()
	}
	return goManifestBytes(resultBytes, int64(size)), nil
}

// Close frees the native handle. Safe to call more than once.
func (b *Builder) Close() {
	if b.ptr != nil {
		C.c2pa_builder_free(b.ptr)
		b.ptr = nil
	}
}
