//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package c2pa

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/contentauth/c2pa-go/internal/ffi"
)

// Configuration formats accepted by Settings and Context constructors.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// Settings is a mutable configuration accumulator. Configuration paths are
// dotted addresses documented by the native library (for example
// "verify.verify_after_sign" or "builder.thumbnail.enabled"); the wrapper
// does not know the full set and validates only the data format.
//
// Settings is consumed by value into a ContextBuilder: the builder copies
// the configuration, and the Settings stays usable afterwards. Close frees
// the native handle.
type Settings struct {
	ffi *ffi.Settings
}

// NewSettings creates empty settings.
func NewSettings() (*Settings, error) {
	h, err := ffi.NewSettings()
	if err != nil {
		return nil, err
	}
	return &Settings{ffi: h}, nil
}

// NewSettingsFromString creates settings parsed from data in the given
// format (FormatJSON or FormatTOML).
func NewSettingsFromString(data, format string) (*Settings, error) {
	s, err := NewSettings()
	if err != nil {
		return nil, err
	}
	if err := s.Update(data, format); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Set assigns a JSON literal value to a dotted configuration path. The
// native library rejects unknown paths and malformed values.
func (s *Settings) Set(path, valueJSON string) error {
	return s.ffi.Set(path, valueJSON)
}

// Update merges additional configuration in the given format. Paths not
// mentioned in data keep their prior values; later updates win over
// earlier Set calls for the paths they mention.
func (s *Settings) Update(data, format string) error {
	return s.ffi.Update(data, format)
}

// UpdateFile merges configuration from a file, inferring the format from
// the extension (.json, .jsonc, or .toml). JSONC comments and trailing
// commas are stripped before the data crosses the ABI.
func (s *Settings) UpdateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading settings file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return s.Update(string(jsonc.ToJSON(data)), FormatJSON)
	case ".toml":
		return s.Update(string(data), FormatTOML)
	default:
		return fmt.Errorf("unsupported settings file extension: %s", filepath.Ext(path))
	}
}

// Close frees the native handle. Safe to call more than once.
func (s *Settings) Close() {
	s.ffi.Close()
}
