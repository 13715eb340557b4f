package parse

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igovsol/extract/internal/digest"
	"github.com/igovsol/extract/pkg/types"
)

func TestParseDocumentLeaf(t *testing.T) {
	engine := NewEngine()

	doc, err := engine.ParseDocument("notes/todo.txt", bytes.NewReader([]byte("buy milk")))
	require.NoError(t, err)

	assert.Equal(t, "notes/todo.txt", doc.Path)
	assert.Equal(t, "todo.txt", doc.Metadata.Get(types.MetaResourceName))
	assert.Equal(t, "text/plain", doc.Metadata.Get(types.MetaContentType))
	assert.Empty(t, doc.Embeds)

	text, err := io.ReadAll(doc.Reader)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", string(text))
}

func TestParseDocumentTree(t *testing.T) {
	inner := makeZip(t, []zipEntry{{"deep.txt", []byte("bottom")}})
	outer := makeZip(t, []zipEntry{
		{"readme.txt", []byte("top level")},
		{"nested.zip", inner},
	})

	engine := NewEngine()
	doc, err := engine.ParseDocument("archive.zip", bytes.NewReader(outer))
	require.NoError(t, err)

	assert.Equal(t, TypeZip, doc.Metadata.Get(types.MetaContentType))
	require.Len(t, doc.Embeds, 2)

	readme := doc.Embeds[0]
	assert.Equal(t, "archive.zip/readme.txt", readme.Path)
	text, err := io.ReadAll(readme.Reader)
	require.NoError(t, err)
	assert.Equal(t, "top level", string(text))

	nested := doc.Embeds[1]
	assert.Equal(t, TypeZip, nested.Metadata.Get(types.MetaContentType))
	require.Len(t, nested.Embeds, 1)
	assert.Equal(t, "archive.zip/nested.zip/deep.txt", nested.Embeds[0].Path)
}

func TestParseDocumentRecordsDigests(t *testing.T) {
	d, err := digest.New(digest.SHA256, "")
	require.NoError(t, err)

	container := makeZip(t, []zipEntry{{"body.txt", []byte("content")}})
	engine := NewEngine(WithDigester(d))

	doc, err := engine.ParseDocument("c.zip", bytes.NewReader(container))
	require.NoError(t, err)

	assert.Equal(t, d.DigestBytes(container), doc.ID)
	assert.Equal(t, doc.ID, doc.Metadata.Get(d.Key()))

	require.Len(t, doc.Embeds, 1)
	child := doc.Embeds[0]
	assert.Equal(t, d.DigestBytes([]byte("content")), child.ID)
	assert.Equal(t, child.ID, child.Metadata.Get(d.Key()))
}

func TestExtractTextBinaryLeaf(t *testing.T) {
	engine := NewEngine()

	text, err := engine.extractText([]byte{0x00, 0x01, 0x02, 0x03}, "application/octet-stream")
	require.NoError(t, err)
	assert.Empty(t, text, "binary content has no text representation")
}
