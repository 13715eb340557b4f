package spewer

import "strings"

// FieldNames maps document properties to index field names. Zero-valued
// names disable the corresponding field.
type FieldNames struct {
	// ID is the unique-key field. Never written atomically.
	ID string

	// Text receives the full extracted text of a document.
	Text string

	// Path and ParentPath locate the document in its hierarchy.
	Path       string
	ParentPath string

	// BaseType receives the de-duplicated media-type bases of every raw
	// content-type value, to make faceting on type cheap.
	BaseType string

	// TagPrefix prefixes caller-supplied tag names.
	TagPrefix string

	// Metadata maps a raw metadata name to an index field name.
	Metadata func(name string) string
}

// DefaultFieldNames returns the standard field naming scheme.
func DefaultFieldNames() FieldNames {
	return FieldNames{
		ID:         "extract_id",
		Text:       "content",
		Path:       "path",
		ParentPath: "parent_path",
		BaseType:   "base_type",
		TagPrefix:  "tag_",
		Metadata:   PrefixedMetadataName("metadata_"),
	}
}

// PrefixedMetadataName returns a naming function that lowercases a
// metadata name, replaces anything outside [a-z0-9] with underscores, and
// prepends the prefix.
func PrefixedMetadataName(prefix string) func(string) string {
	return func(name string) string {
		var b strings.Builder
		b.WriteString(prefix)
		for _, r := range strings.ToLower(name) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
		return b.String()
	}
}
