package c2pa

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1"
)

// ParsePrivateKey decodes a PEM private key into a crypto.Signer for use
// with NewKeySigner. It accepts PKCS#1, SEC 1, and PKCS#8 encodings, and
// falls back to a secp256k1 parser for EC keys on curves Go's x509 package
// rejects.
func ParsePrivateKey(pemBytes []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the private key")
	}
	key, err := parsePrivateKeyDER(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return key, nil
}

func parsePrivateKeyDER(der []byte) (crypto.Signer, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		switch key := key.(type) {
		case *rsa.PrivateKey:
			return key, nil
		case *ecdsa.PrivateKey:
			return key, nil
		case ed25519.PrivateKey:
			return &key, nil
		default:
			return nil, errors.New("unknown private key type in PKCS#8 wrapping")
		}
	}
	// Last resort: key types Go's x509 package doesn't know about.
	return parsePKCS8Fallback(der)
}

var (
	oidRSAPSS    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 10}
	oidEC        = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidSecp256k1 = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

type pkcs8 struct {
	Version    int
	Algo       pkix.AlgorithmIdentifier
	PrivateKey []byte
}

type ecPrivateKey struct {
	Version       int
	PrivateKey    []byte
	NamedCurveOID asn1.ObjectIdentifier `asn1:"optional,explicit,tag:0"`
	PublicKey     asn1.BitString        `asn1:"optional,explicit,tag:1"`
}

func parsePKCS8Fallback(der []byte) (crypto.Signer, error) {
	var privKey pkcs8
	if _, err := asn1.Unmarshal(der, &privKey); err != nil {
		return nil, fmt.Errorf("unmarshaling PKCS#8 structure: %w", err)
	}
	switch {
	case privKey.Algo.Algorithm.Equal(oidRSAPSS):
		return x509.ParsePKCS1PrivateKey(privKey.PrivateKey)
	case privKey.Algo.Algorithm.Equal(oidEC):
		return parseSecp256k1PrivateKey(privKey)
	default:
		return nil, fmt.Errorf("unknown PKCS#8 OID: %s", privKey.Algo.Algorithm)
	}
}

func parseSecp256k1PrivateKey(privKey pkcs8) (crypto.Signer, error) {
	var namedCurveOID asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(privKey.Algo.Parameters.FullBytes, &namedCurveOID); err != nil {
		return nil, fmt.Errorf("unmarshaling curve OID: %w", err)
	}
	if !namedCurveOID.Equal(oidSecp256k1) {
		return nil, fmt.Errorf("unknown named curve OID: %s", namedCurveOID)
	}
	var curveKey ecPrivateKey
	if _, err := asn1.Unmarshal(privKey.PrivateKey, &curveKey); err != nil {
		return nil, fmt.Errorf("unmarshaling EC private key: %w", err)
	}
	key, _ := secp256k1.PrivKeyFromBytes(curveKey.PrivateKey)
	return key.ToECDSA(), nil
}
