// Package ingest runs the extraction pipeline over many files at once:
// a bounded worker pool parses each file into a document tree, writes it
// through a shared index writer, and records the outcome so unchanged
// files are skipped on subsequent runs.
package ingest
