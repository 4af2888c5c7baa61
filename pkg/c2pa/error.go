//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package c2pa

import (
	"errors"
	"strings"

	"github.com/contentauth/c2pa-go/internal/ffi"
)

// Error is the failure value surfaced for errors reported by the native
// library. The message is opaque text; the well-known prefixes
// ("ManifestNotFound", "Remote:", "FileNotFound", "NotSupported") may be
// probed with the helpers below.
type Error = ffi.NativeError

func hasErrorPrefix(err error, prefix string) bool {
	var nerr *Error
	if !errors.As(err, &nerr) {
		return false
	}
	return strings.Contains(nerr.Message, prefix)
}

// IsManifestNotFound reports whether err means the asset carries no
// manifest, as opposed to a read failure.
func IsManifestNotFound(err error) bool {
	return hasErrorPrefix(err, "ManifestNotFound")
}

// IsRemoteError reports whether err is a reachability or validation
// failure against a remote URL or timestamp authority. Callers that sign
// with a placeholder remote URL may choose to treat this as success.
func IsRemoteError(err error) bool {
	return hasErrorPrefix(err, "Remote:")
}

// IsFileNotFound reports whether err means a file path did not resolve.
func IsFileNotFound(err error) bool {
	return hasErrorPrefix(err, "FileNotFound")
}

// IsNotSupported reports whether err means the MIME type or extension is
// not recognized by the native library.
func IsNotSupported(err error) bool {
	return hasErrorPrefix(err, "NotSupported")
}
