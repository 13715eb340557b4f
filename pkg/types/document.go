package types

import (
	"bytes"
	"io"
)

// Document is one node of a parsed document tree: extracted metadata, a
// text source, and the embedded documents found inside it. A parent owns
// its embeds exclusively for the duration of mapping.
type Document struct {
	// ID identifies the document in the index. Optional; when the parse
	// engine runs with a digester the content digest is used.
	ID string

	// Path is the hierarchical path of the document. For embedded
	// documents this is the parent path joined with the resource name.
	Path string

	// Metadata holds the names and values the parse produced.
	Metadata *Metadata

	// Reader supplies the extracted text. Consumed once, by mapping.
	Reader io.Reader

	// Embeds are the documents nested inside this one, in the parser's
	// depth-first traversal order.
	Embeds []*Document
}

// String identifies the document for error and log messages.
func (d *Document) String() string {
	if d.Path != "" {
		return d.Path
	}
	return d.ID
}

// Source is an embedded document recovered from a container stream: its
// parse metadata and an exact, unmodified copy of its raw bytes.
type Source struct {
	Metadata *Metadata
	Content  []byte
}

// Reader returns a fresh reader over the recovered bytes.
func (s *Source) Reader() io.Reader {
	return bytes.NewReader(s.Content)
}
