// Package extractor recovers embedded documents from composite containers
// by content digest.
//
// Given a container stream and a target digest, the extractor drives a
// parse over the container, digests each embedded sub-stream in traversal
// order, and captures the first one whose digest matches: its exact raw
// bytes and metadata. Sub-streams that don't match are recursed into, so
// a document nested several containers deep is still found. At most one
// document is captured per call.
package extractor
