package c2pa

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

func pemEncode(t *testing.T, blockType string, der []byte) []byte {
	t.Helper()
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

func TestParsePrivateKeyPKCS1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(pemEncode(t, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key)))
	require.NoError(t, err)
	require.True(t, key.Equal(parsed))
}

func TestParsePrivateKeySEC1(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(pemEncode(t, "EC PRIVATE KEY", der))
	require.NoError(t, err)
	require.True(t, key.Equal(parsed))
}

func TestParsePrivateKeyPKCS8(t *testing.T) {
	tests := []struct {
		name string
		key  any
	}{}

	ecKey, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)
	tests = append(tests, struct {
		name string
		key  any
	}{"ecdsa", ecKey})

	_, edKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	tests = append(tests, struct {
		name string
		key  any
	}{"ed25519", edKey})

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tests = append(tests, struct {
		name string
		key  any
	}{"rsa", rsaKey})

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			der, err := x509.MarshalPKCS8PrivateKey(test.key)
			require.NoError(t, err)

			parsed, err := ParsePrivateKey(pemEncode(t, "PRIVATE KEY", der))
			require.NoError(t, err)
			require.NotNil(t, parsed.Public())
		})
	}
}

func TestParsePrivateKeySecp256k1(t *testing.T) {
	// Go's x509 package rejects the secp256k1 curve, so build the PKCS#8
	// wrapping by hand and exercise the fallback parser.
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	raw[0] &= 0x7f

	inner, err := asn1.Marshal(ecPrivateKey{Version: 1, PrivateKey: raw})
	require.NoError(t, err)

	params, err := asn1.Marshal(oidSecp256k1)
	require.NoError(t, err)

	der, err := asn1.Marshal(pkcs8{
		Version: 0,
		Algo: pkix.AlgorithmIdentifier{
			Algorithm:  oidEC,
			Parameters: asn1.RawValue{FullBytes: params},
		},
		PrivateKey: inner,
	})
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(pemEncode(t, "PRIVATE KEY", der))
	require.NoError(t, err)

	ecKey, ok := parsed.(*ecdsa.PrivateKey)
	require.True(t, ok)

	digest := sha256.Sum256([]byte("signed bytes"))
	sig, err := ecdsa.SignASN1(rand.Reader, ecKey, digest[:])
	require.NoError(t, err)
	require.True(t, ecdsa.VerifyASN1(&ecKey.PublicKey, digest[:], sig))
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	_, err := ParsePrivateKey([]byte("not a pem block"))
	require.Error(t, err)

	_, err = ParsePrivateKey(pemEncode(t, "PRIVATE KEY", []byte{0x01, 0x02}))
	require.Error(t, err)
}
