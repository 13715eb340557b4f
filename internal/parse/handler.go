package parse

import (
	"io"

	"github.com/igovsol/extract/pkg/types"
)

// EmbeddedHandler receives each embedded sub-stream encountered during a
// parse, in the engine's depth-first traversal order.
//
// The handler may consume the stream itself, or delegate to the engine's
// default recursive behavior via Engine.ParseEmbedded so that sub-streams
// nested inside this one are still visited. markup reports whether the
// sub-stream's content type renders as markup.
type EmbeddedHandler interface {
	HandleEmbedded(r io.Reader, meta *types.Metadata, markup bool) error
}

// EmbeddedHandlerFunc adapts a function to the EmbeddedHandler interface.
type EmbeddedHandlerFunc func(r io.Reader, meta *types.Metadata, markup bool) error

// HandleEmbedded calls f.
func (f EmbeddedHandlerFunc) HandleEmbedded(r io.Reader, meta *types.Metadata, markup bool) error {
	return f(r, meta, markup)
}
