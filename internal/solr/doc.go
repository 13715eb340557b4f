// Package solr is a minimal JSON client for a Solr core's update handler:
// add (optionally with commitWithin), commit, close. Query and schema
// operations are out of scope.
package solr
