package parse

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"code.sajari.com/docconv"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/igovsol/extract/internal/digest"
	"github.com/igovsol/extract/pkg/types"
)

// Container content types the engine recognizes and walks.
const (
	TypeZip  = "application/zip"
	TypeGzip = "application/gzip"
	TypeZstd = "application/zstd"
	TypeTar  = "application/x-tar"
)

// Engine parses composite document streams. It detects container formats
// by magic bytes, walks their entries depth-first, and hands every
// embedded sub-stream to the caller-supplied EmbeddedHandler. Leaf text
// extraction is delegated to docconv.
type Engine struct {
	digester *digest.Digester
}

// Option configures an Engine.
type Option func(*Engine)

// WithDigester makes the engine record a content digest for every
// document node it builds, under the digester's metadata key, and use the
// digest as the node's identifier.
func WithDigester(d digest.Digester) Option {
	return func(e *Engine) {
		e.digester = &d
	}
}

// NewEngine creates a parse engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse drives a full parse of a container stream, invoking handler once
// per embedded sub-stream in depth-first order. The handler decides
// whether to recurse into nested containers (see ParseEmbedded).
//
// Structural container errors propagate. A non-container stream parses
// successfully with zero handler invocations.
func (e *Engine) Parse(r io.Reader, meta *types.Metadata, handler EmbeddedHandler) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read container stream: %w", err)
	}
	if meta.Get(types.MetaContentType) == "" {
		meta.Set(types.MetaContentType, detectType(meta.Get(types.MetaResourceName), data))
	}
	return e.walk(data, handler)
}

// ParseEmbedded applies the engine's default recursive handling to one
// embedded sub-stream: if the stream is itself a container, its entries
// are handed to handler; otherwise nothing happens. Handlers that do not
// consume a sub-stream delegate here so deeper embeds are still visited.
func (e *Engine) ParseEmbedded(r io.Reader, meta *types.Metadata, handler EmbeddedHandler) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read embedded stream: %w", err)
	}
	return e.walk(data, handler)
}

// walk dispatches on the container format and invokes handler once per
// immediate entry. Recursion into nested containers is the handler's
// responsibility.
func (e *Engine) walk(data []byte, handler EmbeddedHandler) error {
	switch containerType(data) {
	case TypeZip:
		return e.walkZip(data, handler)
	case TypeGzip:
		return e.walkGzip(data, handler)
	case TypeZstd:
		return e.walkZstd(data, handler)
	case TypeTar:
		return e.walkTar(data, handler)
	default:
		return nil
	}
}

func (e *Engine) walkZip(data []byte, handler EmbeddedHandler) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("parse zip: %w", err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %q: %w", f.Name, err)
		}
		entry, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("read zip entry %q: %w", f.Name, err)
		}
		if err := e.emit(f.Name, entry, handler); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) walkGzip(data []byte, handler EmbeddedHandler) error {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse gzip: %w", err)
	}
	entry, err := io.ReadAll(gr)
	if err != nil {
		return fmt.Errorf("read gzip member: %w", err)
	}
	if err := gr.Close(); err != nil {
		return fmt.Errorf("close gzip member: %w", err)
	}
	return e.emit(gr.Name, entry, handler)
}

func (e *Engine) walkZstd(data []byte, handler EmbeddedHandler) error {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse zstd: %w", err)
	}
	defer dec.Close()

	entry, err := io.ReadAll(dec)
	if err != nil {
		return fmt.Errorf("read zstd frame: %w", err)
	}
	return e.emit("", entry, handler)
}

func (e *Engine) walkTar(data []byte, handler EmbeddedHandler) error {
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		entry, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("read tar entry %q: %w", hdr.Name, err)
		}
		if err := e.emit(hdr.Name, entry, handler); err != nil {
			return err
		}
	}
}

// emit builds the per-entry metadata and invokes the handler.
func (e *Engine) emit(name string, entry []byte, handler EmbeddedHandler) error {
	meta := types.NewMetadata()
	if name != "" {
		meta.Set(types.MetaResourceName, name)
	}
	contentType := detectType(name, entry)
	meta.Set(types.MetaContentType, contentType)
	return handler.HandleEmbedded(bytes.NewReader(entry), meta, isMarkup(contentType))
}

// containerType identifies a container format from magic bytes, or ""
// for leaf content.
func containerType(data []byte) string {
	switch {
	case len(data) >= 4 && bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return TypeZip
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return TypeGzip
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x28, 0xb5, 0x2f, 0xfd}):
		return TypeZstd
	case len(data) >= 262 && bytes.Equal(data[257:262], []byte("ustar")):
		return TypeTar
	default:
		return ""
	}
}

// detectType resolves a content type from the entry name's extension,
// falling back to content sniffing. Container formats win over both so a
// nested archive is always recognized.
func detectType(name string, data []byte) string {
	if ct := containerType(data); ct != "" {
		return ct
	}
	if name != "" {
		if ct := docconv.MimeTypeByExtension(path.Base(name)); ct != "application/octet-stream" {
			return ct
		}
	}
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

func isMarkup(contentType string) bool {
	switch contentType {
	case "text/html", "application/xhtml+xml", "text/xml", "application/xml":
		return true
	default:
		return false
	}
}
