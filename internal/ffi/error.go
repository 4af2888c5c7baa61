package ffi

// NativeError is a failure reported by the c2pa native library. The message
// is the library's last-error string, copied verbatim. It is opaque text;
// the only structured probes callers perform are substring checks for the
// well-known prefixes ("ManifestNotFound", "Remote:", "FileNotFound",
// "NotSupported").
type NativeError struct {
	Message string
}

func (e *NativeError) Error() string {
	return e.Message
}
