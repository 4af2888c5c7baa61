//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

// Package c2pa wraps the c2pa native library, exposing content credentials
// reading, building, and signing over Go streams and files.
//
// The package adapts memory ownership, error signalling, byte streams, and
// configuration between Go and the C ABI; the cryptography, manifest
// formats, and asset parsing live entirely in the native library.
package c2pa

import (
	"log/slog"

	"github.com/contentauth/c2pa-go/internal/ffi"
	"github.com/contentauth/c2pa-go/pkg/c2pa/logging"
)

// Version returns the native library version string.
func Version() string {
	return ffi.Version()
}

// SetLogger installs a logger for binding-layer debug traces. Passing a nil
// slog.Logger binds slog.Default. Call before starting native operations.
func SetLogger(logger *slog.Logger) {
	ffi.SetLogger(logging.New(logger))
}

// LoadSettings loads settings into process-global state in the given
// format ("json" or "toml").
//
// Deprecated: process-global settings interfere across threads. Build a
// Context and pass it to readers and builders instead.
func LoadSettings(data, format string) error {
	return ffi.LoadSettings(data, format)
}

// ReadFile reads the manifest store of the asset at path and returns it as
// JSON. Binary resources referenced by the manifest are written to dataDir
// when it is non-empty. If the asset carries no manifest, ReadFile returns
// ("", nil); all other failures surface as errors.
func ReadFile(path, dataDir string) (string, error) {
	manifest, err := ffi.ReadFile(path, dataDir)
	if err != nil {
		if IsManifestNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return manifest, nil
}

// ReadIngredientFile reads the asset at path as an ingredient and returns
// its JSON description. Thumbnails and C2PA data are written to dataDir
// when it is non-empty.
func ReadIngredientFile(path, dataDir string) (string, error) {
	return ffi.ReadIngredientFile(path, dataDir)
}

// SignerInfo carries signing credentials: the algorithm name, the
// certificate chain and private key in PEM form, and an optional RFC 3161
// timestamp authority URL.
type SignerInfo = ffi.SignerInfo

// SignFile embeds a signed manifest into the asset at sourcePath and
// writes the result to destPath.
func SignFile(sourcePath, destPath, manifestJSON string, info *SignerInfo, dataDir string) error {
	return ffi.SignFile(sourcePath, destPath, manifestJSON, info, dataDir)
}

// SupportedReadMIMETypes lists the MIME types the native library can read
// manifests from.
func SupportedReadMIMETypes() ([]string, error) {
	return ffi.ReaderSupportedMimeTypes()
}

// SupportedBuildMIMETypes lists the MIME types the native library can sign
// and embed manifests into.
func SupportedBuildMIMETypes() ([]string, error) {
	return ffi.BuilderSupportedMimeTypes()
}

// Ed25519Sign signs data with a PEM-encoded Ed25519 private key using the
// native implementation. Useful for building callback signers without
// parsing the key in Go.
func Ed25519Sign(data []byte, privateKeyPEM string) ([]byte, error) {
	return ffi.Ed25519Sign(data, privateKeyPEM)
}

// FormatEmbeddable converts raw manifest bytes (format "application/c2pa",
// as returned by Builder.SignDataHashedEmbeddable) into the
// container-specific form that can be embedded into an asset of the given
// format.
func FormatEmbeddable(format string, manifest []byte) ([]byte, error) {
	return ffi.FormatEmbeddable(format, manifest)
}
