// Package parse drives content parsing of composite document streams.
//
// The engine detects container formats (zip, gzip, zstd, tar) by magic
// bytes and walks their entries depth-first, handing each embedded
// sub-stream to a caller-supplied EmbeddedHandler. The handler decides
// whether to consume the stream or delegate back to the engine's default
// recursive handling, so arbitrarily nested containers are traversed.
//
// Two consumers exist today: the digest-targeted extractor, which hunts
// for a single embedded document by content digest, and ParseDocument,
// which materializes the full document tree for indexing. Leaf text
// extraction is delegated to docconv.
package parse
