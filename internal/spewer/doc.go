// Package spewer writes parsed document trees to a Solr core.
//
// The mapper flattens one document tree into a single input document,
// with embedded children attached as nested child documents. The spewer
// sends mapped documents to the index and coordinates batched auto-commit
// across concurrent writers: a shared pending counter, a configurable
// threshold, and a single-permit gate so only one commit runs at a time.
//
// Failure handling is asymmetric on purpose. A failed add is fatal to
// that write and surfaces to the caller as a *WriteError. A failed commit
// is logged and absorbed: the documents were already written durably, so
// the commit is simply retried at the next threshold crossing or at
// Close.
package spewer
