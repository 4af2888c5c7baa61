//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package c2pa

import (
	"crypto"
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/contentauth/c2pa-go/internal/ffi"
)

// SigningAlgName is the lowercase name of a signing algorithm, matching
// the "alg" field of SignerInfo.
type SigningAlgName string

const (
	ES256   SigningAlgName = "es256"
	ES384   SigningAlgName = "es384"
	ES512   SigningAlgName = "es512"
	PS256   SigningAlgName = "ps256"
	PS384   SigningAlgName = "ps384"
	PS512   SigningAlgName = "ps512"
	ED25519 SigningAlgName = "ed25519"
)

// SigningAlgorithm pairs an algorithm name with its native enumeration
// value and the hash used to digest data before signing.
type SigningAlgorithm struct {
	Name   SigningAlgName
	FFIAlg ffi.SigningAlg
	Hash   crypto.Hash
}

// GetSigningAlgorithm resolves an algorithm name (case-insensitive) to its
// descriptor.
func GetSigningAlgorithm(algStr string) (*SigningAlgorithm, error) {
	switch SigningAlgName(strings.ToLower(algStr)) {
	case ES256:
		return &SigningAlgorithm{ES256, ffi.AlgEs256, crypto.SHA256}, nil
	case ES384:
		return &SigningAlgorithm{ES384, ffi.AlgEs384, crypto.SHA384}, nil
	case ES512:
		return &SigningAlgorithm{ES512, ffi.AlgEs512, crypto.SHA512}, nil
	case PS256:
		return &SigningAlgorithm{PS256, ffi.AlgPs256, crypto.SHA256}, nil
	case PS384:
		return &SigningAlgorithm{PS384, ffi.AlgPs384, crypto.SHA384}, nil
	case PS512:
		return &SigningAlgorithm{PS512, ffi.AlgPs512, crypto.SHA512}, nil
	case ED25519:
		return &SigningAlgorithm{ED25519, ffi.AlgEd25519, crypto.Hash(0)}, nil
	default:
		return nil, fmt.Errorf("algorithm not found: %s", algStr)
	}
}

// Digest prepares data for a crypto.Signer: the digest bytes and the opts
// to pass alongside them.
func (alg *SigningAlgorithm) Digest(data []byte) ([]byte, crypto.SignerOpts, error) {
	switch alg.Name {
	case ED25519:
		// ed25519 handles its own hashing
		return data, alg.Hash, nil
	case ES256, ES384, ES512:
		h := alg.Hash.New()
		h.Write(data)
		return h.Sum(nil), alg.Hash, nil
	case PS256, PS384, PS512:
		h := alg.Hash.New()
		h.Write(data)
		opts := &rsa.PSSOptions{
			Hash:       alg.Hash,
			SaltLength: rsa.PSSSaltLengthEqualsHash,
		}
		return h.Sum(nil), opts, nil
	}
	return nil, nil, fmt.Errorf("unknown algorithm: %s", alg.Name)
}
