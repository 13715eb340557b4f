package parse

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"code.sajari.com/docconv"

	"github.com/igovsol/extract/pkg/types"
)

// ParseDocument parses a stream into a full document tree: extracted text,
// metadata, and every embedded document as a recursively parsed child.
// When the engine carries a digester, each node's content digest is
// recorded in its metadata and used as the node identifier.
func (e *Engine) ParseDocument(docPath string, r io.Reader) (*types.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", docPath, err)
	}

	meta := types.NewMetadata()
	meta.Set(types.MetaResourceName, path.Base(docPath))
	meta.Set(types.MetaContentType, detectType(docPath, data))

	return e.buildDocument(docPath, meta, data)
}

// buildDocument assembles one node and recurses into its embeds.
func (e *Engine) buildDocument(docPath string, meta *types.Metadata, data []byte) (*types.Document, error) {
	doc := &types.Document{
		Path:     docPath,
		Metadata: meta,
	}

	if e.digester != nil {
		sum := e.digester.DigestBytes(data)
		meta.Set(e.digester.Key(), sum)
		doc.ID = sum
	}

	contentType := meta.Get(types.MetaContentType)
	if containerType(data) != "" {
		collector := &treeCollector{engine: e, parent: doc}
		if err := e.walk(data, collector); err != nil {
			return nil, err
		}
		doc.Reader = strings.NewReader("")
		return doc, nil
	}

	text, err := e.extractText(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", docPath, err)
	}
	doc.Reader = strings.NewReader(text)
	return doc, nil
}

// treeCollector is the default embedded handling for tree building: every
// sub-stream becomes a child document, parsed recursively.
type treeCollector struct {
	engine *Engine
	parent *types.Document
}

func (c *treeCollector) HandleEmbedded(r io.Reader, meta *types.Metadata, _ bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read embedded stream: %w", err)
	}

	childPath := c.parent.Path
	if name := meta.Get(types.MetaResourceName); name != "" {
		childPath = path.Join(childPath, name)
	}

	child, err := c.engine.buildDocument(childPath, meta, data)
	if err != nil {
		return err
	}
	c.parent.Embeds = append(c.parent.Embeds, child)
	return nil
}

// Content types docconv converts without shelling out to plain reads.
var convertibleTypes = map[string]bool{
	"text/html":            true,
	"application/xml":      true,
	"text/xml":             true,
	"application/pdf":      true,
	"application/rtf":      true,
	"application/msword":   true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.oasis.opendocument.text":                                 true,
}

// extractText pulls the text body out of leaf content. Plain text passes
// through untouched; richer formats go through docconv; binary content
// with no text representation yields the empty string.
func (e *Engine) extractText(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if convertibleTypes[contentType] {
		res, err := docconv.Convert(bytes.NewReader(data), contentType, false)
		if err != nil {
			return "", fmt.Errorf("convert %s: %w", contentType, err)
		}
		return res.Body, nil
	}
	if strings.HasPrefix(contentType, "text/") {
		return string(data), nil
	}
	return "", nil
}
