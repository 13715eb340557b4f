package spewer

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/igovsol/extract/internal/solr"
	"github.com/igovsol/extract/pkg/types"
)

// Metadata names holding dates that some parsers emit without a timezone.
// With date fixing enabled, values lacking a trailing UTC marker get one
// appended so the index's date field type accepts them.
var dateFieldNames = map[string]bool{
	"dcterms:created":    true,
	"dcterms:modified":   true,
	"meta:save-date":     true,
	"meta:creation-date": true,
	"modified":           true,
	"date":               true,
	"Last-Modified":      true,
	"Last-Save-Date":     true,
	"Creation-Date":      true,
}

// Mapper converts a hierarchical document into a flat index input
// document, with embedded children attached as nested child documents.
type Mapper struct {
	fields FieldNames
	tags   map[string]string
	logger *slog.Logger

	outputMetadata bool
	atomicWrites   bool
	fixDates       bool
}

// NewMapper creates a mapper with metadata output enabled and date fixing
// on, matching the writer defaults.
func NewMapper(fields FieldNames) *Mapper {
	return &Mapper{
		fields:         fields,
		tags:           make(map[string]string),
		logger:         slog.Default(),
		outputMetadata: true,
		fixDates:       true,
	}
}

// SetTags replaces the caller-supplied tags written with every document.
func (m *Mapper) SetTags(tags map[string]string) {
	m.tags = make(map[string]string, len(tags))
	for k, v := range tags {
		m.tags[k] = v
	}
}

// Map produces the input document for one node and, recursively, all of
// its embedded children. It is pure aside from consuming each node's text
// reader: every call returns a fresh record.
func (m *Mapper) Map(doc *types.Document) (solr.InputDocument, error) {
	rec := solr.InputDocument{}

	if m.outputMetadata && doc.Metadata != nil {
		m.mapMetadata(doc.Metadata, rec)
	}

	for name, value := range m.tags {
		m.setField(rec, m.fields.TagPrefix+name, value)
	}

	// The identifier is always a direct value, even under atomic writes.
	if m.fields.ID != "" && doc.ID != "" {
		rec[m.fields.ID] = doc.ID
	}

	if m.fields.BaseType != "" && doc.Metadata != nil {
		if bases := baseTypes(doc.Metadata.Values(types.MetaContentType), m.logger); len(bases) > 0 {
			m.setFieldValues(rec, m.fields.BaseType, bases)
		}
	}

	if m.fields.Path != "" && doc.Path != "" {
		m.setField(rec, m.fields.Path, doc.Path)
	}
	if m.fields.ParentPath != "" {
		if parent := parentPath(doc.Path); parent != "" {
			m.setField(rec, m.fields.ParentPath, parent)
		}
	}

	if doc.Reader != nil {
		text, err := io.ReadAll(doc.Reader)
		if err != nil {
			return nil, fmt.Errorf("read text of %s: %w", doc, err)
		}
		m.setField(rec, m.fields.Text, string(text))
	}

	if len(doc.Embeds) > 0 {
		children := make([]solr.InputDocument, 0, len(doc.Embeds))
		for _, embed := range doc.Embeds {
			child, err := m.Map(embed)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		rec[solr.ChildDocumentsField] = children
	}

	return rec, nil
}

func (m *Mapper) mapMetadata(meta *types.Metadata, rec solr.InputDocument) {
	for _, name := range meta.Names() {
		normalized := m.fields.Metadata(name)

		// Bad HTML can carry many titles; keep only the first.
		if meta.IsMultiValued(name) && name != types.MetaTitle {
			values := meta.Values(name)

			filtered := values[:0:0]
			for _, v := range values {
				if v != "" {
					filtered = append(filtered, v)
				}
			}

			// Some parsers record the content type twice.
			if name == types.MetaContentType && len(values) > 1 {
				filtered = dedupe(filtered)
			}

			if len(filtered) > 0 {
				m.setFieldValues(rec, normalized, filtered)
			}
			continue
		}

		value := meta.Get(name)
		if value != "" && m.fixDates && dateFieldNames[name] && !strings.HasSuffix(value, "Z") {
			value += "Z"
		}
		if value != "" {
			m.setField(rec, normalized, value)
		}
	}
}

// setField writes a single-valued field, wrapped as an atomic "set"
// operation when atomic writes are on.
func (m *Mapper) setField(rec solr.InputDocument, name, value string) {
	if m.atomicWrites {
		rec[name] = map[string]any{"set": value}
	} else {
		rec[name] = value
	}
}

// setFieldValues writes a multi-valued field.
func (m *Mapper) setFieldValues(rec solr.InputDocument, name string, values []string) {
	if m.atomicWrites {
		rec[name] = map[string]any{"set": values}
	} else {
		rec[name] = values
	}
}

// baseTypes reduces raw content-type values to their de-duplicated
// media-type bases, discarding parameters. Unparseable values pass
// through as-is.
func baseTypes(raw []string, logger *slog.Logger) []string {
	var bases []string
	for _, value := range raw {
		base, _, err := mime.ParseMediaType(value)
		if err != nil {
			logger.Warn("content type could not be parsed", "type", value)
			base = value
		}
		bases = append(bases, base)
	}
	return dedupe(bases)
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// parentPath returns the parent segment of p, or "" when p has none.
func parentPath(p string) string {
	parent := path.Dir(p)
	if parent == "." || parent == "/" || parent == p {
		return ""
	}
	return parent
}
