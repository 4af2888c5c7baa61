//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package c2pa

import (
	"crypto"
	"crypto/rand"
	"fmt"

	"github.com/contentauth/c2pa-go/internal/ffi"
)

// SignFunc produces a signature over data using host credentials. It runs
// on the goroutine executing the native sign call and must not re-enter the
// wrapper.
type SignFunc = ffi.SignFunc

// Signer owns a native signer handle. A Signer is not safe for concurrent
// use and must not be shared by builders signing in parallel. ReserveSize
// is stable over the signer's lifetime.
type Signer struct {
	ffi *ffi.Signer
}

// NewSigner creates a signer from credentials; the native library performs
// the signing internally.
func NewSigner(info *SignerInfo) (*Signer, error) {
	h, err := ffi.NewSigner(info)
	if err != nil {
		return nil, err
	}
	return &Signer{ffi: h}, nil
}

// NewCallbackSigner creates a signer that calls sign for every signature.
// The signature returned by sign must not exceed the signer's reserve
// size; oversized signatures are rejected. certsPEM is the certificate
// chain; taURL may be empty.
func NewCallbackSigner(algName string, certsPEM []byte, taURL string, sign SignFunc) (*Signer, error) {
	alg, err := GetSigningAlgorithm(algName)
	if err != nil {
		return nil, err
	}
	h, err := ffi.NewCallbackSigner(sign, alg.FFIAlg, string(certsPEM), taURL)
	if err != nil {
		return nil, err
	}
	return &Signer{ffi: h}, nil
}

// NewKeySigner creates a callback signer backed by any crypto.Signer, for
// keys held outside the native library (HSMs, external key stores, or keys
// parsed with ParsePrivateKey). The data is digested per the algorithm
// before key.Sign is called.
func NewKeySigner(algName string, certsPEM []byte, taURL string, key crypto.Signer) (*Signer, error) {
	alg, err := GetSigningAlgorithm(algName)
	if err != nil {
		return nil, err
	}
	sign := func(data []byte) ([]byte, error) {
		digest, opts, err := alg.Digest(data)
		if err != nil {
			return nil, err
		}
		sig, err := key.Sign(rand.Reader, digest, opts)
		if err != nil {
			return nil, fmt.Errorf("signing failed: %w", err)
		}
		return sig, nil
	}
	h, err := ffi.NewCallbackSigner(sign, alg.FFIAlg, string(certsPEM), taURL)
	if err != nil {
		return nil, err
	}
	return &Signer{ffi: h}, nil
}

// ReserveSize returns the upper bound on signature size a Builder must
// reserve when producing a placeholder for this signer.
func (s *Signer) ReserveSize() (uint64, error) {
	return s.ffi.ReserveSize()
}

// Close frees the native handle. Safe to call more than once.
func (s *Signer) Close() {
	s.ffi.Close()
}
