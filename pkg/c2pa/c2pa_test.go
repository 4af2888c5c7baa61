//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package c2pa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func getFixtures() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	return filepath.Join(dir, "..", "..", "tests", "fixtures")
}

func requireFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(getFixtures(), name)
	if _, err := os.Stat(path); err != nil {
		t.Skipf("fixture %s not present", name)
	}
	return path
}

func getPair(t *testing.T, name string) ([]byte, []byte) {
	t.Helper()
	certBytes, err := os.ReadFile(requireFixture(t, fmt.Sprintf("%s_certs.pem", name)))
	require.NoError(t, err)
	keyBytes, err := os.ReadFile(requireFixture(t, fmt.Sprintf("%s_private.key", name)))
	require.NoError(t, err)
	return certBytes, keyBytes
}

const testManifest = `{
	"title": "Image File",
	"assertions": [
		{
			"label": "c2pa.actions",
			"data": { "actions": [{ "action": "c2pa.published" }] }
		}
	]
}`

func TestVersion(t *testing.T) {
	require.NotEmpty(t, Version())
}

func TestSupportedMIMETypes(t *testing.T) {
	read, err := SupportedReadMIMETypes()
	require.NoError(t, err)
	require.Contains(t, read, "image/jpeg")

	build, err := SupportedBuildMIMETypes()
	require.NoError(t, err)
	require.Contains(t, build, "image/jpeg")
}

func TestReadFileWithNoManifest(t *testing.T) {
	manifest, err := ReadFile(requireFixture(t, "A.jpg"), "")
	require.NoError(t, err)
	require.Empty(t, manifest)
}

func TestReadFileWithManifest(t *testing.T) {
	manifest, err := ReadFile(requireFixture(t, "C.jpg"), "")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(manifest), &report))
	require.Contains(t, report, "manifests")
	require.Contains(t, report, "active_manifest")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.jpg"), "")
	require.Error(t, err)
	require.True(t, IsFileNotFound(err))
}

func TestReaderFromFile(t *testing.T) {
	reader, err := NewReaderFromFile(nil, requireFixture(t, "C.jpg"))
	require.NoError(t, err)
	defer reader.Close()

	report, err := reader.JSON()
	require.NoError(t, err)
	require.Contains(t, report, "active_manifest")

	embedded, err := reader.IsEmbedded()
	require.NoError(t, err)
	require.True(t, embedded)

	url, err := reader.RemoteURL()
	require.NoError(t, err)
	require.Empty(t, url)
}

func TestReaderNoManifest(t *testing.T) {
	_, err := NewReaderFromFile(nil, requireFixture(t, "A.jpg"))
	require.Error(t, err)
	require.True(t, IsManifestNotFound(err))
}

func TestReaderMissingFile(t *testing.T) {
	_, err := NewReaderFromFile(nil, filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, err)
	require.True(t, IsFileNotFound(err))
}

func TestReaderBadFormat(t *testing.T) {
	f, err := os.Open(requireFixture(t, "C.jpg"))
	require.NoError(t, err)
	defer f.Close()

	_, err = NewReader(nil, "not/a-type", f)
	require.Error(t, err)
	require.True(t, IsNotSupported(err))
}

func TestReaderResourceToFile(t *testing.T) {
	reader, err := NewReaderFromFile(nil, requireFixture(t, "C.jpg"))
	require.NoError(t, err)
	defer reader.Close()

	report, err := reader.JSON()
	require.NoError(t, err)
	uri := thumbnailURI(t, report)
	if uri == "" {
		t.Skip("manifest has no thumbnail resource")
	}

	dest := filepath.Join(t.TempDir(), "nested", "thumbnail.jpg")
	n, err := reader.ResourceToFile(uri, dest)
	require.NoError(t, err)
	require.Greater(t, n, int64(0))

	st, err := os.Stat(dest)
	require.NoError(t, err)
	require.Equal(t, n, st.Size())
}

func thumbnailURI(t *testing.T, report string) string {
	t.Helper()
	var parsed struct {
		ActiveManifest string `json:"active_manifest"`
		Manifests      map[string]struct {
			Thumbnail struct {
				Identifier string `json:"identifier"`
			} `json:"thumbnail"`
		} `json:"manifests"`
	}
	require.NoError(t, json.Unmarshal([]byte(report), &parsed))
	return parsed.Manifests[parsed.ActiveManifest].Thumbnail.Identifier
}

func TestSignFileAndReread(t *testing.T) {
	certBytes, keyBytes := getPair(t, "es256")
	input := requireFixture(t, "A.jpg")
	output := filepath.Join(t.TempDir(), "A-signed.jpg")

	err := SignFile(input, output, testManifest, &SignerInfo{
		Alg:        "es256",
		SignCert:   string(certBytes),
		PrivateKey: string(keyBytes),
	}, "")
	require.NoError(t, err)

	manifest, err := ReadFile(output, "")
	require.NoError(t, err)
	require.Contains(t, manifest, "c2pa.published")
}

func TestBuilderSign(t *testing.T) {
	tests := []struct {
		alg string
	}{
		{"es256"},
		{"ed25519"},
	}

	for _, test := range tests {
		t.Run(test.alg, func(t *testing.T) {
			certBytes, keyBytes := getPair(t, test.alg)
			key, err := ParsePrivateKey(keyBytes)
			require.NoError(t, err)

			signer, err := NewKeySigner(test.alg, certBytes, "", key)
			require.NoError(t, err)
			defer signer.Close()

			b, err := NewBuilder(nil, testManifest)
			require.NoError(t, err)
			defer b.Close()

			output := filepath.Join(t.TempDir(), "signed.jpg")
			manifestBytes, err := b.SignFile(requireFixture(t, "A.jpg"), output, signer)
			require.NoError(t, err)
			require.NotEmpty(t, manifestBytes)

			reader, err := NewReaderFromFile(nil, output)
			require.NoError(t, err)
			defer reader.Close()

			report, err := reader.JSON()
			require.NoError(t, err)
			require.Contains(t, report, "c2pa.published")
		})
	}
}

func TestBuilderSignStreams(t *testing.T) {
	certBytes, keyBytes := getPair(t, "es256")
	key, err := ParsePrivateKey(keyBytes)
	require.NoError(t, err)

	signer, err := NewKeySigner("es256", certBytes, "", key)
	require.NoError(t, err)
	defer signer.Close()

	b, err := NewBuilder(nil, testManifest)
	require.NoError(t, err)
	defer b.Close()

	source, err := os.Open(requireFixture(t, "A.jpg"))
	require.NoError(t, err)
	defer source.Close()

	dest, err := os.OpenFile(filepath.Join(t.TempDir(), "signed.jpg"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer dest.Close()

	manifestBytes, err := b.Sign("image/jpeg", source, dest, signer)
	require.NoError(t, err)
	require.NotEmpty(t, manifestBytes)

	_, err = dest.Seek(0, 0)
	require.NoError(t, err)
	reader, err := NewReader(nil, "image/jpeg", dest)
	require.NoError(t, err)
	defer reader.Close()

	report, err := reader.JSON()
	require.NoError(t, err)
	require.Contains(t, report, "c2pa.published")
}

func TestBuilderCallbackSigner(t *testing.T) {
	certBytes, keyBytes := getPair(t, "ed25519")

	signer, err := NewCallbackSigner("ed25519", certBytes, "", func(data []byte) ([]byte, error) {
		return Ed25519Sign(data, string(keyBytes))
	})
	require.NoError(t, err)
	defer signer.Close()

	reserve, err := signer.ReserveSize()
	require.NoError(t, err)
	require.Greater(t, reserve, uint64(0))

	b, err := NewBuilder(nil, testManifest)
	require.NoError(t, err)
	defer b.Close()

	output := filepath.Join(t.TempDir(), "signed.jpg")
	_, err = b.SignFile(requireFixture(t, "A.jpg"), output, signer)
	require.NoError(t, err)
}

func TestBuilderArchiveRoundTrip(t *testing.T) {
	certBytes, keyBytes := getPair(t, "es256")
	key, err := ParsePrivateKey(keyBytes)
	require.NoError(t, err)

	signer, err := NewKeySigner("es256", certBytes, "", key)
	require.NoError(t, err)
	defer signer.Close()

	b, err := NewBuilder(nil, testManifest)
	require.NoError(t, err)
	defer b.Close()

	archivePath := filepath.Join(t.TempDir(), "builder.zip")
	require.NoError(t, b.ToArchiveFile(archivePath))

	restored, err := NewBuilderFromArchiveFile(nil, archivePath)
	require.NoError(t, err)
	defer restored.Close()

	output := filepath.Join(t.TempDir(), "signed.jpg")
	_, err = restored.SignFile(requireFixture(t, "A.jpg"), output, signer)
	require.NoError(t, err)

	manifest, err := ReadFile(output, "")
	require.NoError(t, err)
	require.Contains(t, manifest, "c2pa.published")
}

func TestBuilderNoEmbedRemoteURL(t *testing.T) {
	certBytes, keyBytes := getPair(t, "es256")
	key, err := ParsePrivateKey(keyBytes)
	require.NoError(t, err)

	signer, err := NewKeySigner("es256", certBytes, "", key)
	require.NoError(t, err)
	defer signer.Close()

	b, err := NewBuilder(nil, testManifest)
	require.NoError(t, err)
	defer b.Close()

	b.SetNoEmbed()
	require.NoError(t, b.SetRemoteURL("http://this_does_not_exist/manifest.c2pa"))

	output := filepath.Join(t.TempDir(), "signed.jpg")
	manifestBytes, err := b.SignFile(requireFixture(t, "A.jpg"), output, signer)
	require.NoError(t, err)
	require.NotEmpty(t, manifestBytes)

	// The manifest is not embedded; reading back fails against the
	// unreachable remote reference.
	_, err = NewReaderFromFile(nil, output)
	require.Error(t, err)
	require.True(t, IsRemoteError(err) || IsManifestNotFound(err))
}

func TestBuilderAddIngredient(t *testing.T) {
	certBytes, keyBytes := getPair(t, "es256")
	key, err := ParsePrivateKey(keyBytes)
	require.NoError(t, err)

	signer, err := NewKeySigner("es256", certBytes, "", key)
	require.NoError(t, err)
	defer signer.Close()

	b, err := NewBuilder(nil, testManifest)
	require.NoError(t, err)
	defer b.Close()

	err = b.AddIngredientFile(`{"title": "Parent", "relationship": "parentOf"}`, requireFixture(t, "C.jpg"))
	require.NoError(t, err)

	output := filepath.Join(t.TempDir(), "signed.jpg")
	_, err = b.SignFile(requireFixture(t, "A.jpg"), output, signer)
	require.NoError(t, err)

	manifest, err := ReadFile(output, "")
	require.NoError(t, err)
	require.Contains(t, manifest, "parentOf")
}

func TestBuilderAddAction(t *testing.T) {
	b, err := NewBuilder(nil, `{"title": "Image File"}`)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.AddAction(`{"action": "c2pa.color_adjustments", "parameters": {"name": "brightnesscontrast"}}`))
}

func TestDataHashedPlaceholderSizeMatchesSigned(t *testing.T) {
	certBytes, keyBytes := getPair(t, "es256")
	key, err := ParsePrivateKey(keyBytes)
	require.NoError(t, err)

	signer, err := NewKeySigner("es256", certBytes, "", key)
	require.NoError(t, err)
	defer signer.Close()

	reserve, err := signer.ReserveSize()
	require.NoError(t, err)

	b, err := NewBuilder(nil, testManifest)
	require.NoError(t, err)
	defer b.Close()

	placeholder, err := b.DataHashedPlaceholder(reserve, "image/jpeg")
	require.NoError(t, err)
	require.NotEmpty(t, placeholder)

	asset, err := os.Open(requireFixture(t, "A.jpg"))
	require.NoError(t, err)
	defer asset.Close()

	dataHash := fmt.Sprintf(`{
		"exclusions": [{"start": 20, "length": %d}],
		"name": "jumbf manifest",
		"alg": "sha256",
		"hash": "",
		"pad": " "
	}`, len(placeholder))

	manifest, err := b.SignDataHashedEmbeddable(signer, dataHash, "image/jpeg", asset)
	require.NoError(t, err)
	require.Equal(t, len(placeholder), len(manifest))
}

func TestFormatEmbeddable(t *testing.T) {
	certBytes, keyBytes := getPair(t, "es256")
	key, err := ParsePrivateKey(keyBytes)
	require.NoError(t, err)

	signer, err := NewKeySigner("es256", certBytes, "", key)
	require.NoError(t, err)
	defer signer.Close()

	reserve, err := signer.ReserveSize()
	require.NoError(t, err)

	b, err := NewBuilder(nil, testManifest)
	require.NoError(t, err)
	defer b.Close()

	placeholder, err := b.DataHashedPlaceholder(reserve, "application/c2pa")
	require.NoError(t, err)

	embeddable, err := FormatEmbeddable("image/jpeg", placeholder)
	require.NoError(t, err)
	require.Greater(t, len(embeddable), len(placeholder))
}

func TestReadIngredientFile(t *testing.T) {
	ingredient, err := ReadIngredientFile(requireFixture(t, "C.jpg"), "")
	require.NoError(t, err)
	require.Contains(t, ingredient, "title")
}

func TestSignerInfoBadAlgorithm(t *testing.T) {
	certBytes, keyBytes := getPair(t, "es256")
	_, err := NewSigner(&SignerInfo{
		Alg:        "es256",
		SignCert:   string(certBytes),
		PrivateKey: string(keyBytes),
	})
	require.NoError(t, err)

	_, err = NewKeySigner("rsa4096", certBytes, "", nil)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "not found"))
}

func TestReaderUseAfterClose(t *testing.T) {
	reader, err := NewReaderFromFile(nil, requireFixture(t, "C.jpg"))
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.NoError(t, reader.Close())

	_, err = reader.JSON()
	require.Error(t, err)
	require.Contains(t, err.Error(), "reader already closed")

	_, err = reader.IsEmbedded()
	require.Error(t, err)
	_, err = reader.RemoteURL()
	require.Error(t, err)
	_, err = reader.ResourceToFile("self#jumbf=thumbnail", filepath.Join(t.TempDir(), "out.bin"))
	require.Error(t, err)
}

func TestBuilderUseAfterClose(t *testing.T) {
	b, err := NewBuilder(nil, testManifest)
	require.NoError(t, err)
	b.Close()
	b.Close()

	err = b.WithDefinition(`{}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "builder already closed")

	b.SetNoEmbed()
	require.Error(t, b.SetRemoteURL("http://example.com/m.c2pa"))
	require.Error(t, b.AddAction(`{"action": "c2pa.published"}`))
	require.Error(t, b.ToArchiveFile(filepath.Join(t.TempDir(), "b.zip")))
	_, err = b.DataHashedPlaceholder(1024, "image/jpeg")
	require.Error(t, err)
	_, err = b.SignFile(filepath.Join(t.TempDir(), "in.jpg"), filepath.Join(t.TempDir(), "out.jpg"), nil)
	require.Error(t, err)
}

func TestReaderNonASCIIPath(t *testing.T) {
	data, err := os.ReadFile(requireFixture(t, "C.jpg"))
	require.NoError(t, err)

	dir := t.TempDir()
	asciiPath := filepath.Join(dir, "twin.jpg")
	utf8Path := filepath.Join(dir, "фото-写真.jpg")
	require.NoError(t, os.WriteFile(asciiPath, data, 0o644))
	require.NoError(t, os.WriteFile(utf8Path, data, 0o644))

	asciiReader, err := NewReaderFromFile(nil, asciiPath)
	require.NoError(t, err)
	defer asciiReader.Close()

	utf8Reader, err := NewReaderFromFile(nil, utf8Path)
	require.NoError(t, err)
	defer utf8Reader.Close()

	asciiJSON, err := asciiReader.JSON()
	require.NoError(t, err)
	utf8JSON, err := utf8Reader.JSON()
	require.NoError(t, err)
	require.Equal(t, asciiJSON, utf8JSON)
}

func TestReaderResourceUnknownURI(t *testing.T) {
	reader, err := NewReaderFromFile(nil, requireFixture(t, "C.jpg"))
	require.NoError(t, err)
	defer reader.Close()

	dest, err := os.Create(filepath.Join(t.TempDir(), "out.bin"))
	require.NoError(t, err)
	defer dest.Close()

	_, err = reader.ResourceToStream("self#jumbf=/c2pa/does_not_exist", dest)
	require.Error(t, err)
}

func TestStreamRoundTripInMemory(t *testing.T) {
	data, err := os.ReadFile(requireFixture(t, "C.jpg"))
	require.NoError(t, err)

	reader, err := NewReader(nil, "image/jpeg", bytes.NewReader(data))
	require.NoError(t, err)
	defer reader.Close()

	report, err := reader.JSON()
	require.NoError(t, err)
	require.Contains(t, report, "active_manifest")
}
