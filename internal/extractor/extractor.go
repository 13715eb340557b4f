package extractor

import (
	"bytes"
	"errors"
	"io"

	"github.com/igovsol/extract/internal/digest"
	"github.com/igovsol/extract/internal/parse"
	"github.com/igovsol/extract/pkg/types"
)

// ErrNoMatch is returned when no embedded sub-stream in the container has
// the target digest. It is a result, not a failure of the parse.
var ErrNoMatch = errors.New("no embedded document matches the target digest")

// Extractor recovers a single embedded document from a composite container
// stream by content digest, without materializing the rest of the tree.
type Extractor struct {
	engine   *parse.Engine
	digester digest.Digester
}

// New creates an extractor that digests embedded sub-streams with the
// given digester and walks containers with the given engine.
func New(engine *parse.Engine, digester digest.Digester) *Extractor {
	return &Extractor{engine: engine, digester: digester}
}

// Extract drives a parse over the container and returns the one embedded
// document whose content digest equals targetDigest: an exact copy of its
// raw bytes plus its metadata.
//
// The parse runs to completion even after a match is found; only the
// digesting work stops. Structural parse errors propagate; an absent
// digest yields ErrNoMatch.
func (x *Extractor) Extract(container io.Reader, targetDigest string) (*types.Source, error) {
	h := &digestHandler{
		engine:   x.engine,
		digester: x.digester,
		target:   targetDigest,
	}

	if err := x.engine.Parse(container, types.NewMetadata(), h); err != nil {
		return nil, err
	}
	if h.captured == nil {
		return nil, ErrNoMatch
	}
	return h.captured, nil
}

// digestHandler hunts for one embedded sub-stream by digest. On a miss it
// delegates to the engine's default recursive handling so digests nested
// inside nested containers are still visited. Once a capture is made,
// later sub-streams return immediately without being digested.
type digestHandler struct {
	engine   *parse.Engine
	digester digest.Digester
	target   string
	captured *types.Source
	digested int
}

func (h *digestHandler) HandleEmbedded(r io.Reader, meta *types.Metadata, _ bool) error {
	if h.captured != nil {
		return nil
	}

	// Digesting consumes the stream, so tee it into a buffer: a match
	// needs the exact bytes, a miss needs them again for recursion.
	var buf bytes.Buffer
	sum, err := h.digester.Digest(io.TeeReader(r, &buf))
	if err != nil {
		return err
	}
	h.digested++
	meta.Set(h.digester.Key(), sum)

	if sum == h.target {
		h.captured = &types.Source{Metadata: meta, Content: buf.Bytes()}
		// The matched stream's own embeds are not visited.
		return nil
	}
	return h.engine.ParseEmbedded(bytes.NewReader(buf.Bytes()), meta, h)
}
