//go:build (darwin && cgo) || (dragonfly && cgo) || (freebsd && cgo) || (linux && cgo) || (netbsd && cgo) || (openbsd && cgo)

package c2pa

import (
	"io"
	"os"
	"path/filepath"

	"github.com/contentauth/c2pa-go/internal/ffi"
)

// Builder constructs a manifest and signs it into assets. Unlike Reader it
// holds no long-lived stream; each operation adapts its arguments for the
// duration of the native call only.
type Builder struct {
	ffi *ffi.Builder
	ctx *Context
}

// NewBuilder creates a builder from a manifest definition in JSON. A nil ctx
// uses process-global settings.
func NewBuilder(ctx *Context, manifestJSON string) (*Builder, error) {
	if ctx == nil {
		if manifestJSON == "" {
			manifestJSON = "{}"
		}
		fb, err := ffi.NewBuilderFromJSON(manifestJSON)
		if err != nil {
			return nil, err
		}
		return &Builder{ffi: fb}, nil
	}
	if err := ctx.retain(); err != nil {
		return nil, err
	}
	fb, err := ffi.NewBuilderFromContext(ctx.handle())
	if err != nil {
		ctx.release()
		return nil, err
	}
	if manifestJSON != "" {
		if err := fb.WithDefinition(manifestJSON); err != nil {
			fb.Close()
			ctx.release()
			return nil, err
		}
	}
	return &Builder{ffi: fb, ctx: ctx}, nil
}

// NewBuilderFromArchive restores a builder from an archive previously written
// with ToArchive. The archive carries the manifest definition and attached
// resources but no signing state.
func NewBuilderFromArchive(ctx *Context, archive io.ReadSeeker) (*Builder, error) {
	stream, err := ffi.NewReadStream(archive)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	fb, err := ffi.NewBuilderFromArchive(stream)
	if err != nil {
		return nil, err
	}
	b := &Builder{ffi: fb}
	if ctx != nil {
		if err := ctx.retain(); err != nil {
			fb.Close()
			return nil, err
		}
		b.ctx = ctx
	}
	return b, nil
}

// NewBuilderFromArchiveFile restores a builder from an archive file.
func NewBuilderFromArchiveFile(ctx *Context, path string) (*Builder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Message: "FileNotFound: " + path}
	}
	defer f.Close()
	return NewBuilderFromArchive(ctx, f)
}

func (b *Builder) live() error {
	if b.ffi == nil {
		return &Error{Message: "builder already closed"}
	}
	return nil
}

// WithDefinition replaces the manifest definition with manifestJSON.
func (b *Builder) WithDefinition(manifestJSON string) error {
	if err := b.live(); err != nil {
		return err
	}
	return b.ffi.WithDefinition(manifestJSON)
}

// SetNoEmbed configures signing to leave the asset bytes unchanged; the
// returned manifest must be delivered as a sidecar or hosted remotely.
func (b *Builder) SetNoEmbed() {
	if b.ffi != nil {
		b.ffi.SetNoEmbed()
	}
}

// SetRemoteURL records the URL where the manifest will be hosted. Signed
// assets reference it instead of, or in addition to, an embedded manifest.
func (b *Builder) SetRemoteURL(url string) error {
	if err := b.live(); err != nil {
		return err
	}
	return b.ffi.SetRemoteURL(url)
}

// SetBasePath sets the directory against which relative resource references
// in the manifest definition are resolved.
func (b *Builder) SetBasePath(path string) error {
	if err := b.live(); err != nil {
		return err
	}
	return b.ffi.SetBasePath(path)
}

// AddResource attaches a named binary resource, such as a thumbnail, read
// from source.
func (b *Builder) AddResource(uri string, source io.ReadSeeker) error {
	if err := b.live(); err != nil {
		return err
	}
	stream, err := ffi.NewReadStream(source)
	if err != nil {
		return err
	}
	defer stream.Close()
	return b.ffi.AddResource(uri, stream)
}

// AddResourceFile attaches the contents of path as a named resource.
func (b *Builder) AddResourceFile(uri string, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &Error{Message: "FileNotFound: " + path}
	}
	defer f.Close()
	return b.AddResource(uri, f)
}

// AddIngredient attaches a parent or component asset described by
// ingredientJSON, reading the asset from source.
func (b *Builder) AddIngredient(ingredientJSON string, format string, source io.ReadSeeker) error {
	if err := b.live(); err != nil {
		return err
	}
	stream, err := ffi.NewReadStream(source)
	if err != nil {
		return err
	}
	defer stream.Close()
	return b.ffi.AddIngredient(ingredientJSON, format, stream)
}

// AddIngredientFile attaches the asset at path as an ingredient, deriving the
// format from the file extension.
func (b *Builder) AddIngredientFile(ingredientJSON string, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &Error{Message: "FileNotFound: " + path}
	}
	defer f.Close()
	return b.AddIngredient(ingredientJSON, formatFromPath(path), f)
}

// AddAction appends an action assertion from JSON to the manifest's actions
// list.
func (b *Builder) AddAction(actionJSON string) error {
	if err := b.live(); err != nil {
		return err
	}
	return b.ffi.AddAction(actionJSON)
}

// ToArchive serializes the builder's state to dest. The builder remains
// usable afterwards.
func (b *Builder) ToArchive(dest io.WriteSeeker) error {
	if err := b.live(); err != nil {
		return err
	}
	stream, err := ffi.NewWriteStream(dest)
	if err != nil {
		return err
	}
	defer stream.Close()
	return b.ffi.ToArchive(stream)
}

// ToArchiveFile serializes the builder's state to a new file at path.
func (b *Builder) ToArchiveFile(path string) error {
	if err := b.live(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.ToArchive(f)
}

// Sign reads the asset from source, embeds and signs the manifest, and
// writes the signed asset to dest. It returns the manifest store bytes that
// were embedded.
func (b *Builder) Sign(format string, source io.ReadSeeker, dest io.ReadWriteSeeker, signer *Signer) ([]byte, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	src, err := ffi.NewReadStream(source)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	dst, err := ffi.NewReadWriteStream(dest)
	if err != nil {
		return nil, err
	}
	defer dst.Close()
	return b.ffi.Sign(format, src, dst, signer.ffi)
}

// SignFile signs the asset at sourcePath and writes the result to destPath,
// creating parent directories as needed. The format comes from destPath's
// extension.
func (b *Builder) SignFile(sourcePath, destPath string, signer *Signer) ([]byte, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	src, err := os.Open(sourcePath)
	if err != nil {
		return nil, &Error{Message: "FileNotFound: " + sourcePath}
	}
	defer src.Close()
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return nil, err
	}
	dst, err := os.OpenFile(destPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	defer dst.Close()
	return b.Sign(formatFromPath(destPath), src, dst, signer)
}

// DataHashedPlaceholder returns a placeholder manifest sized exactly like the
// manifest SignDataHashedEmbeddable will later produce for the same builder,
// signer reserve size, and format. Callers reserve that many bytes in the
// asset and patch the signed manifest over the placeholder.
func (b *Builder) DataHashedPlaceholder(reservedSize uint64, format string) ([]byte, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	return b.ffi.DataHashedPlaceholder(reservedSize, format)
}

// SignDataHashedEmbeddable signs a manifest against a data-hash descriptor in
// dataHashJSON. When asset is non-nil the hash is computed by streaming the
// asset with the descriptor's exclusions; when nil the descriptor must carry
// the hash already.
func (b *Builder) SignDataHashedEmbeddable(signer *Signer, dataHashJSON string, format string, asset io.ReadSeeker) ([]byte, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	var stream *ffi.Stream
	if asset != nil {
		s, err := ffi.NewReadStream(asset)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		stream = s
	}
	return b.ffi.SignDataHashedEmbeddable(signer.ffi, dataHashJSON, format, stream)
}

// Close frees the native builder. Safe to call more than once.
func (b *Builder) Close() {
	if b.ffi != nil {
		b.ffi.Close()
		b.ffi = nil
	}
	if b.ctx != nil {
		b.ctx.release()
		b.ctx = nil
	}
}
