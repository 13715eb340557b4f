// Package types provides the shared data model for extraction and indexing.
//
// This package defines the domain types used across the extract components:
// documents, metadata, and recovered embedded sources.
//
// # Core Types
//
// Document is one node of a parsed document tree. Embedded documents are
// attached as children, in the parser's depth-first traversal order:
//
//	doc := &types.Document{
//	    ID:       digest,
//	    Path:     "reports/q3.zip",
//	    Metadata: meta,
//	    Reader:   strings.NewReader(text),
//	    Embeds:   []*types.Document{attachment},
//	}
//
// Metadata maps names to one or more string values. Multi-valuedness is a
// property of the name as recorded by the parser, not of the current value
// count:
//
//	meta := types.NewMetadata()
//	meta.Set(types.MetaContentType, "application/zip")
//	meta.Add("dc:creator", "alice")
//	meta.Add("dc:creator", "bob")
//	meta.IsMultiValued("dc:creator") // true
//
// Source is an embedded document recovered from a container by digest: its
// metadata plus an exact copy of the original embedded bytes.
package types
