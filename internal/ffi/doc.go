// Package ffi contains all cgo bindings to the c2pa native library.
//
// # Design Principles
//
//  1. Isolation: ALL cgo code lives in this package. No other package
//     imports "C".
//
//  2. Ownership: every native handle has exactly one owner. Handle types
//     wrap the raw pointer and null it on Close; a second Close is a no-op.
//     Returned native buffers are copied into Go-owned memory and released
//     through the paired native free function before the call returns.
//
//  3. Error Handling: every native call that returns NULL or a negative
//     sentinel is converted to a Go error immediately by fetching the
//     library's last-error string on the calling goroutine.
//
//  4. Callbacks: the native library calls back into Go for stream I/O and
//     signing. Callbacks never panic across the boundary; any failure
//     becomes a negative return and the library publishes the error.
//
// # Threading
//
// Handles are not safe for concurrent use. The last-error channel is
// process-global, so a failing call must be paired with the error fetch on
// the same goroutine, which this package does inside each binding.
package ffi
