//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package ffi

/*
#include <stdlib.h>
#include <c2pa.h>

extern struct C2paSigner *c2pa_go_signer_new(const void *context, C2paSigningAlg alg, const char *certs, const char *tsa_url);
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"
)

// SigningAlg mirrors the native signing algorithm enumeration. The values
// are part of the ABI.
type SigningAlg int

const (
	AlgEs256   SigningAlg = SigningAlg(C.Es256)
	AlgEs384   SigningAlg = SigningAlg(C.Es384)
	AlgEs512   SigningAlg = SigningAlg(C.Es512)
	AlgPs256   SigningAlg = SigningAlg(C.Ps256)
	AlgPs384   SigningAlg = SigningAlg(C.Ps384)
	AlgPs512   SigningAlg = SigningAlg(C.Ps512)
	AlgEd25519 SigningAlg = SigningAlg(C.Ed25519)
)

// SignerInfo carries signing credentials across the ABI. The native library
// performs the signing itself.
type SignerInfo struct {
	Alg        string
	SignCert   string
	PrivateKey string
	TAURL      string
}

// cSignerInfo lowers the info into a C struct. The returned func frees the
// C strings; the struct must not be used after calling it.
func (info *SignerInfo) cSignerInfo() (*C.C2paSignerInfo, func()) {
	cAlg := C.CString(info.Alg)
	cCert := C.CString(info.SignCert)
	cKey := C.CString(info.PrivateKey)
	cTA := cStringOpt(info.TAURL)
	cInfo := &C.C2paSignerInfo{
		alg:         cAlg,
		sign_cert:   cCert,
		private_key: cKey,
		ta_url:      cTA,
	}
	return cInfo, func() {
		C.free(unsafe.Pointer(cAlg))
		C.free(unsafe.Pointer(cCert))
		C.free(unsafe.Pointer(cKey))
		freeCString(cTA)
	}
}

// SignFunc produces a signature over data using the host's credentials.
type SignFunc func(data []byte) ([]byte, error)

// signerRegistry maps the C-side context token to the host sign function,
// the same discipline as the stream registry.
var signerRegistry sync.Map

func lookupSigner(token unsafe.Pointer) SignFunc {
	v, ok := signerRegistry.Load(token)
	if !ok {
		return nil
	}
	return v.(SignFunc)
}

// Signer owns a native signer handle.
type Signer struct {
	ptr   *C.C2paSigner
	token unsafe.Pointer
}

// NewSigner creates a signer from credentials. The native library signs
// internally.
func NewSigner(info *SignerInfo) (*Signer, error) {
	cInfo, free := info.cSignerInfo()
	defer free()
	ptr := C.c2pa_signer_from_info(cInfo)
	if ptr == nil {
		return nil, lastError()
	}
	return &Signer{ptr: ptr}, nil
}

// NewCallbackSigner creates a signer that delegates signature generation to
// the host function. certsPEM is the certificate chain; taURL may be empty.
func NewCallbackSigner(sign SignFunc, alg SigningAlg, certsPEM, taURL string) (*Signer, error) {
	if sign == nil {
		return nil, errors.New("sign callback cannot be nil")
	}
	token := C.malloc(1)
	if token == nil {
		return nil, errors.New("failed to allocate signer context")
	}
	signerRegistry.Store(token, sign)

	cCerts := C.CString(certsPEM)
	defer C.free(unsafe.Pointer(cCerts))
	cTA := cStringOpt(taURL)
	defer freeCString(cTA)

	ptr := C.c2pa_go_signer_new(token, C.C2paSigningAlg(alg), cCerts, cTA)
	if ptr == nil {
		signerRegistry.Delete(token)
		C.free(token)
		return nil, lastError()
	}
	return &Signer{ptr: ptr, token: token}, nil
}

// ReserveSize returns the upper bound on signature size a builder must
// reserve for this signer. Stable over the signer's lifetime.
func (s *Signer) ReserveSize() (uint64, error) {
	if s.ptr == nil {
		return 0, &NativeError{Message: "signer already freed"}
	}
	size := C.c2pa_signer_reserve_size(s.ptr)
	if size < 0 {
		return 0, lastError()
	}
	return uint64(size), nil
}

// Close frees the native handle and unregisters the callback, if any. Safe
// to call more than once.
func (s *Signer) Close() {
	if s.ptr != nil {
		C.c2pa_signer_free(s.ptr)
		s.ptr = nil
	}
	if s.token != nil {
		signerRegistry.Delete(s.token)
		C.free(s.token)
		s.token = nil
	}
}

func (s *Signer) valid() bool {
	return s != nil && s.ptr != nil
}

//export c2paGoSignerSign
func c2paGoSignerSign(token unsafe.Pointer, data *C.uchar, length C.uintptr_t, out *C.uchar, maxLen C.uintptr_t) C.intptr_t {
	sign := lookupSigner(token)
	if sign == nil {
		return -1
	}
	input := C.GoBytes(unsafe.Pointer(data), C.int(length))
	sig, err := sign(input)
	if err != nil {
		return -1
	}
	if uint64(len(sig)) > uint64(maxLen) {
		// Signature would overflow the reserved buffer.
		return -1
	}
	if len(sig) > 0 {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(out)), len(sig))
		copy(dst, sig)
	}
	return C.intptr_t(len(sig))
}
